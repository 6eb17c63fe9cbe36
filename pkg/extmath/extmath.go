package extmath

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// maxDuration is the largest value a time.Duration can hold.
const maxDuration = time.Duration(math.MaxInt64)

// ExtDuration is a duration that may also be infinite.
// The zero value is a finite duration of zero time.
type ExtDuration struct {
	d   time.Duration
	inf bool
}

// Finite creates a finite extended duration.
// Negative durations are clamped to zero.
func Finite(d time.Duration) ExtDuration {
	if d < 0 {
		d = 0
	}
	return ExtDuration{d: d}
}

// Infinite returns the infinite extended duration.
func Infinite() ExtDuration {
	return ExtDuration{inf: true}
}

// IsInfinite reports whether the duration is infinite.
func (e ExtDuration) IsInfinite() bool {
	return e.inf
}

// Duration returns the contained duration, saturating to the maximum
// representable time.Duration if infinite.
func (e ExtDuration) Duration() time.Duration {
	if e.inf {
		return maxDuration
	}
	return e.d
}

// Add computes e + other, saturating to infinite on overflow.
func (e ExtDuration) Add(other ExtDuration) ExtDuration {
	if e.inf || other.inf {
		return Infinite()
	}
	if e.d > maxDuration-other.d {
		return Infinite()
	}
	return Finite(e.d + other.d)
}

// Sub computes e - other, saturating at zero.
// Infinite - finite stays infinite; anything minus infinite is zero.
func (e ExtDuration) Sub(other ExtDuration) ExtDuration {
	switch {
	case other.inf:
		return Finite(0)
	case e.inf:
		return Infinite()
	case e.d <= other.d:
		return Finite(0)
	default:
		return Finite(e.d - other.d)
	}
}

// Mul computes e × f, saturating to infinite on overflow.
func (e ExtDuration) Mul(f NonNegF64) ExtDuration {
	if e.inf || f.IsInfinite() {
		return Infinite()
	}
	secs := e.d.Seconds() * f.Get()
	if secs > maxDuration.Seconds() {
		return Infinite()
	}
	return Finite(time.Duration(secs * float64(time.Second)))
}

// Div computes e ÷ f, saturating to infinite on overflow (including f = 0).
func (e ExtDuration) Div(f NonNegF64) ExtDuration {
	if f.IsInfinite() {
		return Finite(0)
	}
	if e.inf || f.Get() == 0 {
		return Infinite()
	}
	secs := e.d.Seconds() / f.Get()
	if secs > maxDuration.Seconds() {
		return Infinite()
	}
	return Finite(time.Duration(secs * float64(time.Second)))
}

// Cmp compares two extended durations, infinite ordering after all finite
// values. It returns -1, 0 or +1.
func (e ExtDuration) Cmp(other ExtDuration) int {
	switch {
	case e.inf && other.inf:
		return 0
	case e.inf:
		return 1
	case other.inf:
		return -1
	case e.d < other.d:
		return -1
	case e.d > other.d:
		return 1
	default:
		return 0
	}
}

// Max returns the larger of two extended durations.
func (e ExtDuration) Max(other ExtDuration) ExtDuration {
	if e.Cmp(other) >= 0 {
		return e
	}
	return other
}

// Min returns the smaller of two extended durations.
func (e ExtDuration) Min(other ExtDuration) ExtDuration {
	if e.Cmp(other) <= 0 {
		return e
	}
	return other
}

// Seconds returns the duration in seconds as an extended non-negative float.
func (e ExtDuration) Seconds() NonNegF64 {
	if e.inf {
		return InfF64()
	}
	return NonNegF64{v: e.d.Seconds()}
}

// Hertz returns how many one-unit steps fit in a second given this duration
// per step.
func (e ExtDuration) Hertz() NonNegF64 {
	return e.Seconds().Recip()
}

// String formats the duration, "inf" if infinite.
func (e ExtDuration) String() string {
	if e.inf {
		return "inf"
	}
	return e.d.String()
}

// MarshalJSON encodes the duration as integer nanoseconds, or the string
// "inf". The encoding is canonical: equal values produce equal bytes.
func (e ExtDuration) MarshalJSON() ([]byte, error) {
	if e.inf {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(int64(e.d))
}

// UnmarshalJSON decodes an ExtDuration from its MarshalJSON form.
func (e *ExtDuration) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*e = Infinite()
		return nil
	}
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("invalid extended duration: %w", err)
	}
	*e = Finite(time.Duration(ns))
	return nil
}

// NonNegF64 is a float64 known to be in the range +0.0 ≤ v ≤ +∞.
// NaN is excluded and negative zero is normalized, so the type has a total
// order. The zero value is +0.0.
type NonNegF64 struct {
	v float64
}

// NewNonNegF64 creates a non-negative float. It reports false for NaN and
// negative values.
func NewNonNegF64(v float64) (NonNegF64, bool) {
	if math.IsNaN(v) || v < 0 {
		return NonNegF64{}, false
	}
	if v == 0 {
		v = 0 // drop a negative-zero sign bit
	}
	return NonNegF64{v: v}, true
}

// MustNonNegF64 is like NewNonNegF64 but panics on invalid input.
// Intended for constants.
func MustNonNegF64(v float64) NonNegF64 {
	f, ok := NewNonNegF64(v)
	if !ok {
		panic(fmt.Sprintf("extmath: value %v is not a non-negative float", v))
	}
	return f
}

// InfF64 returns positive infinity.
func InfF64() NonNegF64 {
	return NonNegF64{v: math.Inf(1)}
}

// Get returns the contained value.
func (f NonNegF64) Get() float64 {
	return f.v
}

// IsInfinite reports whether the value is +∞.
func (f NonNegF64) IsInfinite() bool {
	return math.IsInf(f.v, 1)
}

// Add computes f + other.
func (f NonNegF64) Add(other NonNegF64) NonNegF64 {
	return NonNegF64{v: f.v + other.v}
}

// SaturatingSub computes max(f − other, 0).
func (f NonNegF64) SaturatingSub(other NonNegF64) NonNegF64 {
	r := f.v - other.v
	if r <= 0 || math.IsNaN(r) {
		return NonNegF64{}
	}
	return NonNegF64{v: r}
}

// Recip returns 1/f. The reciprocal of zero is infinity and vice versa.
func (f NonNegF64) Recip() NonNegF64 {
	if f.v == 0 {
		return InfF64()
	}
	if f.IsInfinite() {
		return NonNegF64{}
	}
	return NonNegF64{v: 1 / f.v}
}

// Cmp compares two non-negative floats, returning -1, 0 or +1.
func (f NonNegF64) Cmp(other NonNegF64) int {
	switch {
	case f.v < other.v:
		return -1
	case f.v > other.v:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes the value as a number, or the string "inf".
func (f NonNegF64) MarshalJSON() ([]byte, error) {
	if f.IsInfinite() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(f.v)
}

// UnmarshalJSON decodes a NonNegF64 from its MarshalJSON form.
func (f *NonNegF64) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*f = InfF64()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid non-negative float: %w", err)
	}
	nf, ok := NewNonNegF64(v)
	if !ok {
		return fmt.Errorf("invalid non-negative float: %v", v)
	}
	*f = nf
	return nil
}
