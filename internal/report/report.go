package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gridtrace/internal/fileutil"
	"gridtrace/internal/span"
	"gridtrace/internal/trial"
)

var (
	SpansHeader     = []string{"i", "from", "to", "from_sec", "to_sec", "dur_frames", "dur_seconds"}
	ClicksHeader    = []string{"i", "start", "end", "dur", "x", "y"}
	ReactionsHeader = []string{"i", "start", "end", "init_dur", "total_dur", "first_x", "first_y", "final_x", "final_y", "clicks"}
	ScoresHeader    = []string{"frame", "score", "match"}
)

// ErrMalformed marks a span table that cannot be read back.
var ErrMalformed = errors.New("malformed span report")

// Files holds the report locations of one recording.
type Files struct {
	Spans     string
	Clicks    string
	Reactions string
}

// PathsFor names the reports of videoPath inside outputDir.
func PathsFor(outputDir, videoPath string) Files {
	return PathsForStem(outputDir, Stem(videoPath))
}

// PathsForStem names the reports sharing stem inside outputDir.
func PathsForStem(outputDir, stem string) Files {
	return Files{
		Spans:     filepath.Join(outputDir, stem+".spans.csv"),
		Clicks:    filepath.Join(outputDir, stem+".clicks.csv"),
		Reactions: filepath.Join(outputDir, stem+".reaction.csv"),
	}
}

// Stem is the base name of a recording without its extension.
func Stem(videoPath string) string {
	return fileutil.ReplaceExt(filepath.Clean(videoPath), "")
}

// UniqueStems returns a report stem for each path such that no two paths
// share one. Stems used by more than one path gain parent directory names,
// nearest first, until they differ. Paths that still collide are numbered.
func UniqueStems(paths []string) []string {
	stems := make([]string, len(paths))
	parents := make([][]string, len(paths))
	for i, p := range paths {
		stems[i] = Stem(p)
		parents[i] = parentNames(p)
	}

	for {
		extended := false
		for _, group := range collisions(stems) {
			for _, i := range group {
				if len(parents[i]) == 0 {
					continue
				}
				stems[i] = parents[i][0] + "-" + stems[i]
				parents[i] = parents[i][1:]
				extended = true
			}
		}
		if !extended {
			break
		}
	}

	seen := make(map[string]bool, len(stems))
	for i, stem := range stems {
		candidate := stem
		for n := 2; seen[candidate]; n++ {
			candidate = stem + "-" + strconv.Itoa(n)
		}
		stems[i] = candidate
		seen[candidate] = true
	}
	return stems
}

// collisions groups the indexes of stems that occur more than once.
func collisions(stems []string) [][]int {
	byStem := make(map[string][]int, len(stems))
	var order []string
	for i, stem := range stems {
		if _, ok := byStem[stem]; !ok {
			order = append(order, stem)
		}
		byStem[stem] = append(byStem[stem], i)
	}
	var groups [][]int
	for _, stem := range order {
		if len(byStem[stem]) > 1 {
			groups = append(groups, byStem[stem])
		}
	}
	return groups
}

// parentNames lists the directories above path, nearest first.
func parentNames(path string) []string {
	dir := filepath.Dir(filepath.Clean(path))
	var names []string
	for _, part := range slices.Backward(strings.Split(filepath.ToSlash(dir), "/")) {
		switch part {
		case "", ".", "..":
			continue
		}
		names = append(names, part)
	}
	return names
}

// WriteSpans writes one row per span, numbered from zero, with times
// converted through fps.
func WriteSpans[T any](w io.Writer, spans []span.Span[T], fps float64) error {
	rows := make([][]string, 0, len(spans))
	for i, s := range spans {
		rows = append(rows, []string{
			itoa(i),
			itoa(s.From),
			itoa(s.To),
			seconds(s.From, fps),
			seconds(s.To, fps),
			itoa(s.Duration()),
			seconds(s.Duration(), fps),
		})
	}
	return writeTable(w, SpansHeader, rows)
}

// WriteClicks writes one row per dwell; i is the trial number.
func WriteClicks(w io.Writer, responses trial.Responses) error {
	var rows [][]string
	for _, r := range responses {
		for _, s := range r.Spans {
			rows = append(rows, []string{
				itoa(r.Trial),
				itoa(s.From),
				itoa(s.To),
				itoa(s.Duration()),
				itoa(s.Value.X),
				itoa(s.Value.Y),
			})
		}
	}
	return writeTable(w, ClicksHeader, rows)
}

// WriteReactions writes one row per trial.
func WriteReactions(w io.Writer, reactions []trial.Reaction) error {
	rows := make([][]string, 0, len(reactions))
	for _, r := range reactions {
		rows = append(rows, []string{
			itoa(r.Trial),
			itoa(r.Start),
			itoa(r.End),
			itoa(r.InitDur),
			itoa(r.TotalDur),
			itoa(r.FirstChoice.X),
			itoa(r.FirstChoice.Y),
			itoa(r.FinalChoice.X),
			itoa(r.FinalChoice.Y),
			itoa(r.Clicks),
		})
	}
	return writeTable(w, ReactionsHeader, rows)
}

// WriteScores writes the classifier score of every frame and whether it
// falls below threshold.
func WriteScores(w io.Writer, scores []float64, threshold float64) error {
	rows := make([][]string, 0, len(scores))
	for i, score := range scores {
		rows = append(rows, []string{
			itoa(i),
			strconv.FormatFloat(score, 'g', -1, 64),
			strconv.FormatBool(score < threshold),
		})
	}
	return writeTable(w, ScoresHeader, rows)
}

// ReadSpans parses a table written by WriteSpans.
func ReadSpans(r io.Reader) ([]span.Span[struct{}], error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(SpansHeader)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !slices.Equal(header, SpansHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformed, header)
	}

	var out []span.Span[struct{}]
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		from, errFrom := strconv.Atoi(record[1])
		to, errTo := strconv.Atoi(record[2])
		if err := errors.Join(errFrom, errTo); err != nil {
			return nil, fmt.Errorf("%w: row %s: %w", ErrMalformed, record[0], err)
		}
		if from > to {
			return nil, fmt.Errorf("%w: row %s: from %d after to %d", ErrMalformed, record[0], from, to)
		}
		out = append(out, span.Span[struct{}]{From: from, To: to})
	}
}

// WriteFile writes a table to path atomically.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := fileutil.WriteAtomic(path, write); err != nil {
		return fmt.Errorf("write report %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func seconds(frames int, fps float64) string {
	return strconv.FormatFloat(span.Seconds(frames, fps), 'f', 3, 64)
}
