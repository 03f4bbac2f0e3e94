package affine

import (
	"fmt"
	"math"
)

// Interval is an inclusive range of integers [Lower, Upper].
type Interval struct {
	Lower, Upper int64
}

// FullInterval returns the interval covering every int64.
func FullInterval() Interval {
	return Interval{Lower: math.MinInt64, Upper: math.MaxInt64}
}

// Point returns the degenerate interval [value, value].
func Point(value int64) Interval {
	return Interval{Lower: value, Upper: value}
}

// AtLeast returns the interval [value, +inf).
func AtLeast(value int64) Interval {
	return Interval{Lower: value, Upper: math.MaxInt64}
}

// AtMost returns the interval (-inf, value].
func AtMost(value int64) Interval {
	return Interval{Lower: math.MinInt64, Upper: value}
}

// Contains reports whether value lies within the interval.
func (in Interval) Contains(value int64) bool {
	return value >= in.Lower && value <= in.Upper
}

// IsPoint reports whether the interval holds exactly one value.
func (in Interval) IsPoint() bool { return in.Lower == in.Upper }

// IsEmpty reports whether the interval holds no value.
func (in Interval) IsEmpty() bool { return in.Lower > in.Upper }

// String renders the interval; open ends are printed as -inf / +inf.
func (in Interval) String() string {
	lower, upper := "-inf", "+inf"
	if in.Lower != math.MinInt64 {
		lower = fmt.Sprintf("%d", in.Lower)
	}
	if in.Upper != math.MaxInt64 {
		upper = fmt.Sprintf("%d", in.Upper)
	}
	return fmt.Sprintf("[%s, %s]", lower, upper)
}
