package logging

// ProgressSampler thins out per-frame progress so a log line is emitted only
// when the completed percentage enters a new bucket.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler returns a sampler with the given bucket width in
// percent. Non-positive widths default to 10.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether done of total crosses into a new bucket. An
// unknown total (<= 0) never logs.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		return false
	}
	bucket := int(Percent(done, total) / s.bucketSize)
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Percent returns done as a percentage of total, capped at 100.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := 100 * float64(done) / float64(total)
	if p > 100 {
		return 100
	}
	return p
}

// Reset clears the sampler state before a new recording.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
