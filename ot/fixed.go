package ot

import (
	"fmt"
	"math"
)

// Fixed is a signed 16.16 fixed-point number. All variation arithmetic
// (normalization, region scalars, delta blending) is carried out in Fixed.
type Fixed int32

// F2Dot14 is a signed 2.14 fixed-point number, used by OpenType to store
// normalized coordinates compactly.
type F2Dot14 int16

const (
	FixedOne   Fixed   = 1 << 16
	FixedMax   Fixed   = math.MaxInt32
	FixedMin   Fixed   = math.MinInt32
	F2Dot14One F2Dot14 = 1 << 14
)

func saturateFixed(v int64) Fixed {
	if v > math.MaxInt32 {
		return FixedMax
	}
	if v < math.MinInt32 {
		return FixedMin
	}
	return Fixed(v)
}

// roundShift divides v by 2^shift, rounding half away from zero.
func roundShift(v int64, shift uint) int64 {
	half := int64(1) << (shift - 1)
	if v < 0 {
		return -((-v + half) >> shift)
	}
	return (v + half) >> shift
}

// FixedMul multiplies two 16.16 numbers, rounding to nearest and saturating
// on overflow.
func FixedMul(a, b Fixed) Fixed {
	return saturateFixed(roundShift(int64(a)*int64(b), 16))
}

// FixedDiv divides a by b, rounding to nearest and saturating on overflow.
// Division by zero saturates towards the sign of a (0/0 is 0).
func FixedDiv(a, b Fixed) Fixed {
	if b == 0 {
		switch {
		case a > 0:
			return FixedMax
		case a < 0:
			return FixedMin
		}
		return 0
	}
	return fixedRatio(int64(a), int64(b))
}

// fixedRatio returns num/den as 16.16, rounding to nearest and saturating.
// num and den are plain integers of equal scale and may exceed the 16.16
// range; den must not be 0.
func fixedRatio(num, den int64) Fixed {
	num <<= 16
	neg := (num < 0) != (den < 0)
	if num < 0 {
		num = -num
	}
	if den < 0 {
		den = -den
	}
	q := (num + den/2) / den
	if neg {
		q = -q
	}
	return saturateFixed(q)
}

// IntToFixed converts an integer to 16.16, saturating.
func IntToFixed(n int32) Fixed {
	return saturateFixed(int64(n) << 16)
}

// Round rounds f to the nearest integer, halves rounding up (towards +∞).
func (f Fixed) Round() int32 {
	return int32((int64(f) + 0x8000) >> 16)
}

// Float returns f as a floating point number.
func (f Fixed) Float() float64 {
	return float64(f) / 65536
}

func (f Fixed) String() string {
	return fmt.Sprintf("%.5g", f.Float())
}

// FixedFromFloat converts x to 16.16, rounding to nearest and saturating.
func FixedFromFloat(x float64) Fixed {
	v := math.Round(x * 65536)
	if v >= math.MaxInt32 {
		return FixedMax
	}
	if v <= math.MinInt32 {
		return FixedMin
	}
	return Fixed(v)
}

// Fixed converts a 2.14 number to 16.16. The conversion is exact.
func (f F2Dot14) Fixed() Fixed {
	return Fixed(int32(f) << 2)
}

// Float returns f as a floating point number.
func (f F2Dot14) Float() float64 {
	return float64(f) / 16384
}

// F2Dot14FromFixed converts a 16.16 number to 2.14, rounding to nearest and
// clamping to the representable range [-2, 2).
func F2Dot14FromFixed(f Fixed) F2Dot14 {
	v := roundShift(int64(f), 2)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return F2Dot14(v)
}
