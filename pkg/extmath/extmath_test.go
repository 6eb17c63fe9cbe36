package extmath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtDurationAddSaturates(t *testing.T) {
	tests := []struct {
		name string
		a, b ExtDuration
		want ExtDuration
	}{
		{"finite plus finite", Finite(time.Second), Finite(2 * time.Second), Finite(3 * time.Second)},
		{"finite plus infinite", Finite(time.Second), Infinite(), Infinite()},
		{"overflow saturates", Finite(maxDuration - 1), Finite(time.Hour), Infinite()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Add(tt.b))
		})
	}
}

func TestExtDurationSub(t *testing.T) {
	tests := []struct {
		name string
		a, b ExtDuration
		want ExtDuration
	}{
		{"finite minus finite", Finite(3 * time.Second), Finite(time.Second), Finite(2 * time.Second)},
		{"underflow saturates at zero", Finite(time.Second), Finite(time.Minute), Finite(0)},
		{"infinite minus finite", Infinite(), Finite(time.Hour), Infinite()},
		{"finite minus infinite", Finite(time.Hour), Infinite(), Finite(0)},
		{"infinite minus infinite", Infinite(), Infinite(), Finite(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Sub(tt.b))
		})
	}
}

func TestExtDurationMulDiv(t *testing.T) {
	half := MustNonNegF64(0.5)
	assert.Equal(t, Finite(500*time.Millisecond), Finite(time.Second).Mul(half))
	assert.Equal(t, Finite(2*time.Second), Finite(time.Second).Div(half))

	// Division by zero and by infinity.
	assert.True(t, Finite(time.Second).Div(MustNonNegF64(0)).IsInfinite())
	assert.Equal(t, Finite(0), Finite(time.Second).Div(InfF64()))

	// Saturation past the representable maximum.
	assert.True(t, Finite(maxDuration).Mul(MustNonNegF64(2)).IsInfinite())
}

func TestExtDurationTotalOrder(t *testing.T) {
	assert.Equal(t, -1, Finite(time.Second).Cmp(Infinite()))
	assert.Equal(t, 1, Infinite().Cmp(Finite(time.Second)))
	assert.Equal(t, 0, Infinite().Cmp(Infinite()))
	assert.Equal(t, Infinite(), Finite(time.Second).Max(Infinite()))
	assert.Equal(t, Finite(time.Second), Finite(time.Second).Min(Infinite()))
}

func TestExtDurationJSONRoundTrip(t *testing.T) {
	for _, d := range []ExtDuration{Finite(0), Finite(1500 * time.Millisecond), Infinite()} {
		data, err := d.MarshalJSON()
		require.NoError(t, err)
		var back ExtDuration
		require.NoError(t, back.UnmarshalJSON(data))
		assert.Equal(t, d, back)
	}
}

func TestNonNegF64Construction(t *testing.T) {
	_, ok := NewNonNegF64(-1)
	assert.False(t, ok)

	neg0, ok := NewNonNegF64(negativeZero())
	require.True(t, ok)
	zero := MustNonNegF64(0)
	assert.Equal(t, 0, neg0.Cmp(zero))

	assert.Panics(t, func() { MustNonNegF64(-0.5) })
}

func TestNonNegF64Arithmetic(t *testing.T) {
	a := MustNonNegF64(1.5)
	b := MustNonNegF64(2.0)
	assert.InDelta(t, 3.5, a.Add(b).Get(), 1e-12)
	assert.InDelta(t, 0.5, b.SaturatingSub(a).Get(), 1e-12)
	assert.Equal(t, 0.0, a.SaturatingSub(b).Get())
	assert.InDelta(t, 0.5, b.Recip().Get(), 1e-12)
	assert.True(t, MustNonNegF64(0).Recip().IsInfinite())
	assert.Equal(t, 0.0, InfF64().Recip().Get())
}

func TestHertz(t *testing.T) {
	assert.InDelta(t, 2.0, Finite(500*time.Millisecond).Hertz().Get(), 1e-9)
	assert.Equal(t, 0.0, Infinite().Hertz().Get())
}

func negativeZero() float64 {
	z := 0.0
	return -z
}
