package span_test

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"gridtrace/internal/span"
)

func pairs[T any](spans []span.Span[T]) [][2]int {
	out := make([][2]int, 0, len(spans))
	for _, s := range spans {
		out = append(out, [2]int{s.From, s.To})
	}
	return out
}

func TestSegmentExamples(t *testing.T) {
	cases := []struct {
		name  string
		input []bool
		want  [][2]int
	}{
		{"empty", nil, [][2]int{}},
		{"single true", []bool{true}, [][2]int{{0, 0}}},
		{"single false", []bool{false}, [][2]int{}},
		{"mixed", []bool{false, true, true, false, true}, [][2]int{{1, 2}, {4, 4}}},
		{"all true", []bool{true, true, true}, [][2]int{{0, 2}}},
		{"leading run", []bool{true, true, false, false}, [][2]int{{0, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pairs(span.Segment(tc.input))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Segment(%v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestSegmentCoversExactlyTrueIndices(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 500; iter++ {
		n := rng.IntN(40)
		input := make([]bool, n)
		for i := range input {
			input[i] = rng.IntN(3) > 0
		}
		spans := span.Segment(input)

		covered := make([]bool, n)
		prevTo := -2
		for _, s := range spans {
			if s.From > s.To {
				t.Fatalf("span %v has From > To", s)
			}
			if s.From <= prevTo+1 {
				t.Fatalf("spans %v overlap or touch the previous span ending at %d", spans, prevTo)
			}
			for i := s.From; i <= s.To; i++ {
				covered[i] = true
			}
			prevTo = s.To
		}
		if !reflect.DeepEqual(covered, input) && n > 0 {
			t.Fatalf("union of %v does not equal true indices of %v", spans, input)
		}
	}
}

func TestSegmentValues(t *testing.T) {
	values := []string{"a", "a", "b", "a", "a", "a"}
	got := span.SegmentValues(values)
	want := []span.Span[string]{
		{Value: "a", From: 0, To: 1},
		{Value: "b", From: 2, To: 2},
		{Value: "a", From: 3, To: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SegmentValues = %v, want %v", got, want)
	}
	if len(span.SegmentValues([]int{})) != 0 {
		t.Fatal("expected no spans for empty input")
	}
}

func TestGroupByKeepsFinalGroup(t *testing.T) {
	type obs struct{ trial, frame int }
	items := []obs{{1, 0}, {1, 1}, {2, 5}, {2, 6}, {3, 9}}
	groups := span.GroupBy(items, func(o obs) int { return o.trial })
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %v", len(groups), groups)
	}
	if len(groups[2]) != 1 || groups[2][0].frame != 9 {
		t.Fatalf("expected final singleton group, got %v", groups[2])
	}
	if span.GroupBy([]obs{}, func(o obs) int { return o.trial }) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestGroupByDoesNotMergeNonAdjacentKeys(t *testing.T) {
	groups := span.GroupBy([]int{1, 1, 2, 1}, func(v int) int { return v })
	want := [][]int{{1, 1}, {2}, {1}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("GroupBy = %v, want %v", groups, want)
	}
}

func TestSpanHelpers(t *testing.T) {
	s := span.Span[int]{Value: 3, From: 10, To: 14}
	if s.Duration() != 4 {
		t.Fatalf("Duration = %d", s.Duration())
	}
	if s.Frames() != 5 {
		t.Fatalf("Frames = %d", s.Frames())
	}
	if !s.Contains(14) || s.Contains(15) {
		t.Fatal("Contains boundary mismatch")
	}
	if got := span.Seconds(45, 30); got != 1.5 {
		t.Fatalf("Seconds = %v", got)
	}
	if got := span.Seconds(45, 0); got != 0 {
		t.Fatalf("Seconds with zero fps = %v", got)
	}
}
