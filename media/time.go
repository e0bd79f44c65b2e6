// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// Time is a position in seconds, split into whole seconds and a fraction in
// [0,1).
type Time struct {
	Seconds uint64
	Frac    float64
}

// TimeFromSeconds splits s. Negative values yield zero.
func TimeFromSeconds(s float64) Time {
	if s <= 0 {
		return Time{}
	}
	whole, frac := math.Modf(s)
	return Time{Seconds: uint64(whole), Frac: frac}
}

// Duration converts t, saturating on overflow.
func (t Time) Duration() time.Duration {
	if t.Seconds >= uint64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(t.Seconds)*time.Second + time.Duration(t.Frac*float64(time.Second))
}

func (t Time) String() string {
	return fmt.Sprintf("%.3fs", float64(t.Seconds)+t.Frac)
}

// TimeBase is the length in seconds of one timestamp tick, Numer/Denom.
type TimeBase struct {
	Numer uint32
	Denom uint32
}

// NewTimeBase panics if either part is zero.
func NewTimeBase(numer, denom uint32) TimeBase {
	if numer == 0 || denom == 0 {
		panic("media: time base numerator and denominator must be non-zero")
	}
	return TimeBase{Numer: numer, Denom: denom}
}

// IsZero reports whether tb is unset.
func (tb TimeBase) IsZero() bool {
	return tb.Numer == 0 || tb.Denom == 0
}

// CalcTime converts a timestamp into seconds.
func (tb TimeBase) CalcTime(ts uint64) Time {
	if tb.IsZero() {
		return Time{}
	}

	hi, lo := bits.Mul64(ts, uint64(tb.Numer))
	secs, rem := div128(hi, lo, uint64(tb.Denom))

	return Time{Seconds: secs, Frac: float64(rem) / float64(tb.Denom)}
}

// CalcTimestamp converts a time into timestamp ticks, rounding down.
func (tb TimeBase) CalcTimestamp(t Time) uint64 {
	if tb.IsZero() {
		return 0
	}

	hi, lo := bits.Mul64(t.Seconds, uint64(tb.Denom))
	whole, rem := div128(hi, lo, uint64(tb.Numer))

	frac := (float64(rem) + t.Frac*float64(tb.Denom)) / float64(tb.Numer)
	if frac >= float64(math.MaxUint64-whole) {
		return math.MaxUint64
	}

	return whole + uint64(frac)
}

func (tb TimeBase) String() string {
	return fmt.Sprintf("%d/%d", tb.Numer, tb.Denom)
}

// div128 divides the 128-bit value hi:lo by d, saturating the quotient.
func div128(hi, lo, d uint64) (q, r uint64) {
	if hi >= d {
		return math.MaxUint64, 0
	}
	return bits.Div64(hi, lo, d)
}
