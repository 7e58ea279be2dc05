package common

import "math"

// Epsilon is the length below which a direction vector is treated as zero.
const Epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Sign returns -1, 0 or 1. Values within Epsilon of zero report 0.
func Sign(v float64) float64 {
	switch {
	case v > Epsilon:
		return 1
	case v < -Epsilon:
		return -1
	default:
		return 0
	}
}

// SmoothStep is the cubic ease 3t^2 - 2t^3 over t clamped to [0,1].
func SmoothStep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// SmoothDamp moves current toward target with a critically damped spring.
// velocity is the caller-owned spring state; the updated value is returned
// alongside the new position.
func SmoothDamp(current, target, velocity, smoothTime, dt float64) (float64, float64) {
	if dt <= 0 {
		return current, velocity
	}
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	temp := (velocity + omega*change) * dt
	velocity = (velocity - omega*temp) * decay
	out := target + (change+temp)*decay

	// no overshoot
	if (target-current > 0) == (out > target) {
		out = target
		velocity = (out - target) / dt
	}
	return out, velocity
}

// SafeNormalize returns the unit vector of (x, y), or the fallback when the
// input is degenerate. A degenerate fallback yields (1, 0).
func SafeNormalize(x, y, fallbackX, fallbackY float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l > Epsilon && !math.IsNaN(l) && !math.IsInf(l, 0) {
		return x / l, y / l
	}
	l = math.Hypot(fallbackX, fallbackY)
	if l > Epsilon && !math.IsNaN(l) && !math.IsInf(l, 0) {
		return fallbackX / l, fallbackY / l
	}
	return 1, 0
}
