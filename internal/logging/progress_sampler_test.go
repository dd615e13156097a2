package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		done int
		want bool
	}{
		{0, true},
		{10, false},
		{25, true},
		{30, false},
		{75, true},
		{100, true},
		{120, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.done, 100); got != step.want {
			t.Fatalf("ShouldLog(%d) = %v, want %v", step.done, got, step.want)
		}
	}
	s.Reset()
	if !s.ShouldLog(5, 100) {
		t.Fatal("expected log after reset")
	}
}

func TestProgressSamplerUnknownTotal(t *testing.T) {
	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v", s.bucketSize)
	}
	if s.ShouldLog(50, 0) {
		t.Fatal("unknown total should not log")
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler always logs")
	}
}
