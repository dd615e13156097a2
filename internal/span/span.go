package span

import "fmt"

// Span is a maximal frame interval [From, To] during which Value held.
type Span[T any] struct {
	Value T
	From  int
	To    int
}

// Duration returns To - From.
func (s Span[T]) Duration() int {
	return s.To - s.From
}

// Frames returns the number of frames covered, To - From + 1.
func (s Span[T]) Frames() int {
	return s.To - s.From + 1
}

// Contains reports whether frame lies inside the span.
func (s Span[T]) Contains(frame int) bool {
	return frame >= s.From && frame <= s.To
}

func (s Span[T]) String() string {
	return fmt.Sprintf("%v[%d..%d]", s.Value, s.From, s.To)
}

// Seconds converts a frame count to seconds at fps.
func Seconds(frames int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}

// Segment returns the spans of consecutive true values. A run still open at the
// end of the input closes at len(bools)-1.
func Segment(bools []bool) []Span[struct{}] {
	var out []Span[struct{}]
	open := false
	from := 0
	for i, b := range bools {
		switch {
		case b && !open:
			open = true
			from = i
		case !b && open:
			open = false
			out = append(out, Span[struct{}]{From: from, To: i - 1})
		}
	}
	if open {
		out = append(out, Span[struct{}]{From: from, To: len(bools) - 1})
	}
	return out
}

// SegmentValues returns one span per maximal run of equal values.
func SegmentValues[T comparable](values []T) []Span[T] {
	groups := GroupBy(indexed(values), func(v indexedValue[T]) T { return v.value })
	out := make([]Span[T], 0, len(groups))
	for _, g := range groups {
		out = append(out, Span[T]{Value: g[0].value, From: g[0].index, To: g[len(g)-1].index})
	}
	return out
}

// GroupBy partitions items into maximal runs whose key is equal, preserving order.
// Every returned group is non-empty.
func GroupBy[T any, K comparable](items []T, key func(T) K) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	current := []T{items[0]}
	last := key(items[0])
	for _, item := range items[1:] {
		k := key(item)
		if k == last {
			current = append(current, item)
			continue
		}
		out = append(out, current)
		current = []T{item}
		last = k
	}
	return append(out, current)
}

type indexedValue[T any] struct {
	index int
	value T
}

func indexed[T any](values []T) []indexedValue[T] {
	out := make([]indexedValue[T], len(values))
	for i, v := range values {
		out[i] = indexedValue[T]{index: i, value: v}
	}
	return out
}
