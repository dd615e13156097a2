package report_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gridtrace/internal/grid"
	"gridtrace/internal/report"
	"gridtrace/internal/span"
	"gridtrace/internal/trial"
)

func TestWriteSpansFormat(t *testing.T) {
	var buf bytes.Buffer
	spans := span.Segment([]bool{false, true, true, false, true})
	if err := report.WriteSpans(&buf, spans, 30); err != nil {
		t.Fatalf("WriteSpans failed: %v", err)
	}
	want := "i,from,to,from_sec,to_sec,dur_frames,dur_seconds\n" +
		"0,1,2,0.033,0.067,1,0.033\n" +
		"1,4,4,0.133,0.133,0,0.000\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestSpanReportRoundTrip(t *testing.T) {
	spans := span.Segment([]bool{true, true, false, false, true, false, true, true, true})
	var buf bytes.Buffer
	if err := report.WriteSpans(&buf, spans, 29.97); err != nil {
		t.Fatalf("WriteSpans failed: %v", err)
	}
	got, err := report.ReadSpans(&buf)
	if err != nil {
		t.Fatalf("ReadSpans failed: %v", err)
	}
	if !reflect.DeepEqual(got, spans) {
		t.Fatalf("round trip = %v, want %v", got, spans)
	}
}

func TestReadSpansRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad header":  "a,b,c,d,e,f,g\n",
		"short row":   "i,from,to,from_sec,to_sec,dur_frames,dur_seconds\n0,1\n",
		"non numeric": "i,from,to,from_sec,to_sec,dur_frames,dur_seconds\n0,x,2,0,0,0,0\n",
		"reversed":    "i,from,to,from_sec,to_sec,dur_frames,dur_seconds\n0,5,2,0,0,0,0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := report.ReadSpans(strings.NewReader(input)); !errors.Is(err, report.ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func sampleResponses() trial.Responses {
	return trial.Responses{
		{Trial: 1, Start: 0, End: 2, Spans: []span.Span[grid.Cell]{
			{Value: grid.Cell{X: 0, Y: 0}, From: 0, To: 1},
			{Value: grid.Cell{X: 3, Y: 4}, From: 2, To: 2},
		}},
		{Trial: 2, Start: 10, End: 10, Spans: []span.Span[grid.Cell]{
			{Value: grid.Cell{X: 0, Y: 0}, From: 10, To: 10},
		}},
	}
}

func TestWriteClicks(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteClicks(&buf, sampleResponses()); err != nil {
		t.Fatalf("WriteClicks failed: %v", err)
	}
	want := "i,start,end,dur,x,y\n1,0,1,1,0,0\n1,2,2,0,3,4\n2,10,10,0,0,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteReactions(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteReactions(&buf, trial.SummarizeAll(sampleResponses())); err != nil {
		t.Fatalf("WriteReactions failed: %v", err)
	}
	want := "i,start,end,init_dur,total_dur,first_x,first_y,final_x,final_y,clicks\n" +
		"1,0,2,1,2,3,4,3,4,1\n" +
		"2,10,10,0,0,0,0,0,0,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteScores(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteScores(&buf, []float64{15300, 0, 0.0042, 12750}, 12750); err != nil {
		t.Fatalf("WriteScores failed: %v", err)
	}
	want := "frame,score,match\n0,15300,false\n1,0,true\n2,0.0042,true\n3,12750,false\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPathsForAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	files := report.PathsFor(dir, "/videos/participant-07.mp4")
	if files.Spans != filepath.Join(dir, "participant-07.spans.csv") ||
		files.Clicks != filepath.Join(dir, "participant-07.clicks.csv") ||
		files.Reactions != filepath.Join(dir, "participant-07.reaction.csv") {
		t.Fatalf("unexpected paths %+v", files)
	}

	err := report.WriteFile(files.Clicks, func(w io.Writer) error {
		return report.WriteClicks(w, sampleResponses())
	})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	content, err := os.ReadFile(files.Clicks)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(content), "i,start,end,dur,x,y\n") {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestUniqueStems(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"distinct", []string{"/data/p01.mp4", "/data/p02.mp4"}, []string{"p01", "p02"}},
		{"same base name", []string{"/data/siteA/p01.mp4", "/data/siteB/p01.mp4", "/data/siteB/p02.mp4"},
			[]string{"siteA-p01", "siteB-p01", "p02"}},
		{"shared parent", []string{"/x/day1/p01", "/y/day1/p01"}, []string{"x-day1-p01", "y-day1-p01"}},
		{"extension only differs", []string{"/data/p01.mp4", "/data/p01.mkv"}, []string{"data-p01", "data-p01-2"}},
		{"relative without parent", []string{"p01.mp4", "siteA/p01.mp4"}, []string{"p01", "siteA-p01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := report.UniqueStems(tc.paths); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("UniqueStems = %v, want %v", got, tc.want)
			}
		})
	}
}
