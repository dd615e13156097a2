package imageops

import (
	"math"

	"gocv.io/x/gocv"
)

// huEpsilon matches the cutoff below which a Hu invariant is treated as zero
// and skipped when comparing shapes.
const huEpsilon = 1e-5

// Moments holds the intensity-weighted spatial moments of a grayscale image.
type Moments struct {
	M00 float64
	// Normalized central moments.
	Nu20, Nu11, Nu02, Nu30, Nu21, Nu12, Nu03 float64
}

// ComputeMoments treats pixel luminance as mass. An all-black image has zero
// mass and zero normalized moments.
func ComputeMoments(m gocv.Mat) Moments {
	raw := gocv.Moments(m, false)
	if raw["m00"] == 0 {
		return Moments{}
	}
	return Moments{
		M00:  raw["m00"],
		Nu20: raw["nu20"],
		Nu11: raw["nu11"],
		Nu02: raw["nu02"],
		Nu30: raw["nu30"],
		Nu21: raw["nu21"],
		Nu12: raw["nu12"],
		Nu03: raw["nu03"],
	}
}

// Hu returns the seven Hu invariants of the moments.
func (m Moments) Hu() [7]float64 {
	n20, n11, n02 := m.Nu20, m.Nu11, m.Nu02
	n30, n21, n12, n03 := m.Nu30, m.Nu21, m.Nu12, m.Nu03

	t0 := n30 + n12
	t1 := n21 + n03
	q0 := t0 * t0
	q1 := t1 * t1
	n4 := 4 * n11
	s := n20 + n02
	d := n20 - n02

	var hu [7]float64
	hu[0] = s
	hu[1] = d*d + n4*n11
	hu[3] = q0 + q1
	hu[5] = d*(q0-q1) + n4*t0*t1

	t0 *= q0 - 3*q1
	t1 *= 3*q0 - q1

	q0 = n30 - 3*n12
	q1 = 3*n21 - n03

	hu[2] = q0*q0 + q1*q1
	hu[4] = q0*t0 + q1*t1
	hu[6] = q1*t0 - q0*t1
	return hu
}

// Distance compares the log-scaled Hu invariants of m and other and sums
// their absolute differences. Identical shapes score 0. Invariants that are
// effectively zero on either side are skipped. When exactly one side has no
// mass the distance is +Inf.
func (m Moments) Distance(other Moments) float64 {
	if (m.M00 == 0) != (other.M00 == 0) {
		return math.Inf(1)
	}
	ha, hb := m.Hu(), other.Hu()
	var result float64
	for i := range ha {
		ama := math.Abs(ha[i])
		amb := math.Abs(hb[i])
		if ama <= huEpsilon || amb <= huEpsilon {
			continue
		}
		la := sign(ha[i]) * math.Log10(ama)
		lb := sign(hb[i]) * math.Log10(amb)
		result += math.Abs(lb - la)
	}
	return result
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
