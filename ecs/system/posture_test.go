package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrouchHalvesColliderAndKeepsFeet(t *testing.T) {
	w := newTestWorld(t)
	player := addPlayer(t, w, cp.Vector{})
	posture := NewPostureSystem(quietLogger())
	pb, ok := bodyOf(w, player)
	require.True(t, ok)
	feet := pb.Feet()

	require.True(t, posture.SetCrouching(w, player, true))
	assert.True(t, actorOf(t, w, player).Crouching)
	assert.InDelta(t, 0.3, pb.Height, 1e-9)
	assert.InDelta(t, feet.Y, pb.Feet().Y, 1e-9)
	assert.InDelta(t, 0, pb.Top(), 1e-9)
	assert.Same(t, w.PhysicsWorld().Body(player), pb.Body)

	require.True(t, posture.SetCrouching(w, player, false))
	assert.InDelta(t, 0.6, pb.Height, 1e-9)
	assert.Equal(t, 0.0, pb.OffsetY)
}

func TestStandingUpBlockedByCeiling(t *testing.T) {
	w := newTestWorld(t)
	player := addPlayer(t, w, cp.Vector{})
	posture := NewPostureSystem(quietLogger())
	require.True(t, posture.SetCrouching(w, player, true))

	ceiling := addGround(t, w, cp.Vector{Y: 0.2}, 1, 0.1)
	assert.False(t, posture.CanStand(w, player))
	assert.False(t, posture.SetCrouching(w, player, false))
	assert.True(t, actorOf(t, w, player).Crouching)

	ecs.DestroyEntity(w, ceiling)
	assert.True(t, posture.CanStand(w, player))
	assert.True(t, posture.SetCrouching(w, player, false))
}

func TestRunAndCrouchExcludeEachOther(t *testing.T) {
	w := newTestWorld(t)
	player := addPlayer(t, w, cp.Vector{})
	actor := actorOf(t, w, player)
	posture := NewPostureSystem(quietLogger())

	require.True(t, posture.SetRunning(w, player, true))
	assert.False(t, posture.SetCrouching(w, player, true))
	assert.False(t, actor.Crouching)

	setIntent(t, w, player, component.Intent{CrouchHeld: true})
	posture.Update(w, testDt)
	assert.False(t, actor.Running)
	assert.True(t, actor.Crouching)

	setIntent(t, w, player, component.Intent{CrouchHeld: true, RunHeld: true})
	posture.Update(w, testDt)
	assert.False(t, actor.Running)
	assert.True(t, actor.Crouching)
}

func TestPostureSkipsHeldActors(t *testing.T) {
	w := newTestWorld(t)
	player := addPlayer(t, w, cp.Vector{})
	actor := actorOf(t, w, player)
	actor.Hanging = true

	setIntent(t, w, player, component.Intent{CrouchHeld: true})
	NewPostureSystem(quietLogger()).Update(w, testDt)
	assert.False(t, actor.Crouching)
}

func TestGroundSensing(t *testing.T) {
	w := newTestWorld(t)
	addGround(t, w, cp.Vector{Y: -0.35}, 4, 0.1)
	player := addPlayer(t, w, cp.Vector{})
	ground := NewGroundSystem(0, quietLogger())
	assert.Equal(t, defaultGroundRadius, ground.Radius)

	ground.Update(w, testDt)
	actor := actorOf(t, w, player)
	assert.True(t, actor.Grounded)

	actor.Dashing = true
	ground.Update(w, testDt)
	assert.False(t, actor.Grounded)

	actor.Dashing = false
	bodyFor(t, w, player).SetPosition(cp.Vector{Y: 2})
	ground.Update(w, testDt)
	assert.False(t, actor.Grounded)
}
