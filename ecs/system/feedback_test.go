package system

import (
	"image/color"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeedbackParams() component.FeedbackParams {
	return component.FeedbackParams{
		FlashDuration:   0.12,
		HiddenAlpha:     0.18,
		FadeDuration:    0.25,
		TintFullAt:      100,
		WobbleThreshold: 100,
		WobbleMaxStress: 110,
		WobbleAmplitude: 0.05,
	}
}

func TestStressTint(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, StressTint(0, 100))
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 128, A: 255}, StressTint(50, 100))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, StressTint(100, 100))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, StressTint(400, 100))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, StressTint(50, 0))
}

func TestWobbleAmplitude(t *testing.T) {
	params := testFeedbackParams()
	assert.Equal(t, 0.0, WobbleAmplitude(0, params))
	assert.Equal(t, 0.0, WobbleAmplitude(100, params))
	assert.InDelta(t, 0.0625, WobbleAmplitude(105, params), 1e-9)
	assert.InDelta(t, 0.1, WobbleAmplitude(110, params), 1e-9)
	assert.InDelta(t, 0.1, WobbleAmplitude(500, params), 1e-9)
}

func TestFeedbackFlashesOnHitAndFades(t *testing.T) {
	w := newTestWorld(t)
	e := addActor(t, w, cp.Vector{}, 0.4, 0.6, component.CategoryPlayer)
	actorOf(t, w, e).Facing = -1
	require.NoError(t, ecs.Add(w, e, component.StressComponent.Kind(), &component.Stress{DeathAt: 100, GuaranteedDeathAt: 110, Round: true}))
	fb := &component.Feedback{Alpha: 1}
	require.NoError(t, ecs.Add(w, e, component.FeedbackComponent.Kind(), fb))
	params := testFeedbackParams()
	require.NoError(t, ecs.Add(w, e, component.FeedbackParamsComponent.Kind(), &params))

	feedback := NewFeedbackSystem()
	feedback.Update(w, 1.0/60)
	assert.True(t, fb.FlipX)
	assert.Equal(t, 0.0, fb.Flash)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, fb.Color)

	stress := NewStressSystem(constSampler(0.999), nil, quietLogger())
	stress.AddStress(w, e, 50)
	feedback.Update(w, 1.0/60)
	assert.False(t, fb.PendingHit)
	assert.Equal(t, 1.0, fb.Flash)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, fb.Color)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 128, A: 255}, fb.Tint)

	w.FrameTasks().Advance(0.06)
	assert.InDelta(t, 0.5, fb.Flash, 1e-6)

	// a second hit restarts the flash instead of stacking
	stress.AddStress(w, e, 1)
	feedback.Update(w, 1.0/60)
	assert.Equal(t, 1.0, fb.Flash)
	assert.Equal(t, 1, w.FrameTasks().Len())

	w.FrameTasks().Advance(0.2)
	feedback.Update(w, 1.0/60)
	assert.Equal(t, 0.0, fb.Flash)
	assert.Equal(t, fb.Tint.G, fb.Color.G)
}

func TestFeedbackAlphaReachesColor(t *testing.T) {
	w := newTestWorld(t)
	e := ecs.CreateEntity(w)
	fb := &component.Feedback{Alpha: 0.18}
	require.NoError(t, ecs.Add(w, e, component.FeedbackComponent.Kind(), fb))
	params := testFeedbackParams()
	require.NoError(t, ecs.Add(w, e, component.FeedbackParamsComponent.Kind(), &params))

	NewFeedbackSystem().Update(w, 1.0/60)
	assert.Equal(t, uint8(46), fb.Color.A)
	assert.Equal(t, 0.0, fb.Wobble)
}

func TestAnimationParameters(t *testing.T) {
	w := newTestWorld(t)
	player := addPlayer(t, w, cp.Vector{})
	anim := &component.Animation{}
	require.NoError(t, ecs.Add(w, player, component.AnimationComponent.Kind(), anim))
	actor := actorOf(t, w, player)
	actor.Hanging = true

	animation := NewAnimationSystem()
	animation.Update(w, 1.0/60)
	assert.True(t, anim.Bool(component.ParamAirborne))
	assert.True(t, anim.Bool(component.ParamLedgeHang))
	assert.False(t, anim.Bool(component.ParamLedgeClimb))

	wl, _ := ecs.Get(w, player, component.WallLedgeComponent.Kind())
	wl.State = component.WallLedgeClimbing
	animation.Update(w, 1.0/60)
	assert.False(t, anim.Bool(component.ParamLedgeHang))
	assert.True(t, anim.Bool(component.ParamLedgeClimb))
}
