package component

import "image/color"

// Feedback is the render-facing state a renderer mirrors: facing flip,
// tint, hit flash, alpha and wobble amplitude.
type Feedback struct {
	FlipX  bool
	Tint   color.NRGBA
	Color  color.NRGBA
	Alpha  float64
	Wobble float64

	// Flash is 1 at the start of a hit flash and 0 when it has faded.
	Flash float64
	// PendingHit is raised by stress gain and consumed by the feedback
	// system on the next frame tick.
	PendingHit bool

	FlashTask TaskRef
	FadeTask  TaskRef
}

var FeedbackComponent = NewComponent[Feedback]()

type FeedbackParams struct {
	FlashColor      color.NRGBA
	FlashDuration   float64
	HiddenAlpha     float64
	FadeDuration    float64
	TintFullAt      float64
	WobbleThreshold float64
	WobbleMaxStress float64
	WobbleAmplitude float64
}

var FeedbackParamsComponent = NewComponent[FeedbackParams]()
