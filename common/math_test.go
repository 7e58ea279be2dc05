package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"positive", 2.5, 1},
		{"negative", -0.3, -1},
		{"zero", 0, 0},
		{"tiny", 1e-12, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Sign(c.in))
		})
	}
}

func TestSmoothStepEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, SmoothStep(-1))
	assert.Equal(t, 0.0, SmoothStep(0))
	assert.Equal(t, 0.5, SmoothStep(0.5))
	assert.Equal(t, 1.0, SmoothStep(1))
	assert.Equal(t, 1.0, SmoothStep(3))
}

func TestSmoothDampConvergesWithoutOvershoot(t *testing.T) {
	pos, vel := 0.0, 0.0
	for i := 0; i < 200; i++ {
		pos, vel = SmoothDamp(pos, 5, vel, 0.05, 1.0/60)
		assert.LessOrEqual(t, pos, 5.0)
	}
	assert.InDelta(t, 5.0, pos, 1e-6)
}

func TestSmoothDampHoldsAtTarget(t *testing.T) {
	pos, vel := SmoothDamp(-3, -3, 0, 0.1, 0.02)
	assert.Equal(t, -3.0, pos)
	assert.Equal(t, 0.0, vel)
}

func TestSafeNormalize(t *testing.T) {
	x, y := SafeNormalize(3, 4, 1, 0)
	assert.InDelta(t, 0.6, x, 1e-9)
	assert.InDelta(t, 0.8, y, 1e-9)

	x, y = SafeNormalize(0, 0, -2, 0)
	assert.Equal(t, -1.0, x)
	assert.Equal(t, 0.0, y)

	x, y = SafeNormalize(math.NaN(), 0, 0, 0)
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 0.0, y)
}
