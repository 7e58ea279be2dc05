package system

import (
	"image/color"

	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"golang.org/x/image/colornames"
)

// FeedbackSystem derives the render feedback of stressed actors: facing
// flip, stress tint, hit flash, hide alpha and wobble amplitude.
type FeedbackSystem struct{}

func NewFeedbackSystem() *FeedbackSystem {
	return &FeedbackSystem{}
}

func (s *FeedbackSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.FeedbackComponent.Kind(), component.FeedbackParamsComponent.Kind(), func(e ecs.Entity, fb *component.Feedback, params *component.FeedbackParams) {
		if actor, ok := ecs.Get(w, e, component.ActorComponent.Kind()); ok {
			fb.FlipX = actor.Facing < 0
		}
		stress := 0.0
		if st, ok := ecs.Get(w, e, component.StressComponent.Kind()); ok {
			stress = st.Value
		}

		if fb.PendingHit {
			fb.PendingHit = false
			s.flash(w, fb, params.FlashDuration)
		}

		fb.Tint = StressTint(stress, params.TintFullAt)
		flashColor := params.FlashColor
		if flashColor == (color.NRGBA{}) {
			flashColor = color.NRGBA(colornames.Red)
		}
		fb.Color = lerpColor(fb.Tint, flashColor, fb.Flash)
		fb.Color.A = uint8(common.Clamp01(fb.Alpha)*255 + 0.5)
		fb.Wobble = WobbleAmplitude(stress, *params)
	})
}

// flash restarts the hit flash; a flash already running is stopped first.
func (s *FeedbackSystem) flash(w *ecs.World, fb *component.Feedback, duration float64) {
	component.CancelTask(fb.FlashTask)
	fb.Flash = 1
	fb.FlashTask = w.FrameTasks().Schedule(duration, func(p float64) {
		fb.Flash = 1 - p
	}, func() {
		fb.Flash = 0
		fb.FlashTask = nil
	})
}

// StressTint fades green and blue out as stress approaches fullAt.
func StressTint(stress, fullAt float64) color.NRGBA {
	r := 0.0
	if fullAt > 0 {
		r = common.Clamp01(stress / fullAt)
	}
	gb := uint8((1-r)*255 + 0.5)
	return color.NRGBA{R: 255, G: gb, B: gb, A: 255}
}

// WobbleAmplitude is zero up to the threshold, then ramps from half to
// double the base amplitude as stress approaches the max.
func WobbleAmplitude(stress float64, params component.FeedbackParams) float64 {
	if stress <= params.WobbleThreshold {
		return 0
	}
	t := 1.0
	if span := params.WobbleMaxStress - params.WobbleThreshold; span > 0 {
		t = common.Clamp01((stress - params.WobbleThreshold) / span)
	}
	a := params.WobbleAmplitude
	return common.Lerp(0.5*a, 2*a, t)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = common.Clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(common.Lerp(float64(x), float64(y), t) + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
