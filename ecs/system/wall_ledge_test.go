package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgeFixture is a player at the origin next to a wall whose face is
// 0.15 to the right of the collider edge and whose top is at y=0.5.
type ledgeFixture struct {
	w      *ecs.World
	player ecs.Entity
	wall   *WallLedgeSystem
	move   *MovementSystem
}

func newLedgeFixture(t *testing.T) ledgeFixture {
	t.Helper()
	w := newTestWorld(t)
	addGround(t, w, cp.Vector{X: 0.85, Y: -2.25}, 1, 5.5)
	player := addPlayer(t, w, cp.Vector{})
	return ledgeFixture{
		w:      w,
		player: player,
		wall:   NewWallLedgeSystem(quietLogger()),
		move:   NewMovementSystem(quietLogger()),
	}
}

// tick runs the wall machine and movement the way a fixed tick does,
// without stepping physics.
func (f ledgeFixture) tick(t *testing.T, in component.Intent) {
	t.Helper()
	setIntent(t, f.w, f.player, in)
	f.w.FixedTasks().Advance(testDt)
	f.wall.Update(f.w, testDt)
	f.move.Update(f.w, testDt)
}

func (f ledgeFixture) state(t *testing.T) *component.WallLedge {
	t.Helper()
	wl, ok := ecs.Get(f.w, f.player, component.WallLedgeComponent.Kind())
	require.True(t, ok)
	return wl
}

func TestFallingIntoWallStartsGrab(t *testing.T) {
	f := newLedgeFixture(t)
	bodyFor(t, f.w, f.player).SetVelocity(0, -2)

	f.tick(t, component.Intent{MoveX: 1})

	actor := actorOf(t, f.w, f.player)
	wl := f.state(t)
	assert.True(t, actor.WallGrabbing)
	assert.False(t, actor.Hanging)
	assert.Equal(t, component.WallLedgeGrab, wl.State)
	assert.Equal(t, 1.0, wl.WallSide)
	assert.InDelta(t, 0.15, wl.WallGap, 1e-6)
	assert.Equal(t, 0.0, f.w.PhysicsWorld().GravityScale(f.player))

	v := bodyFor(t, f.w, f.player).Velocity()
	assert.Equal(t, 0.0, v.X)
	assert.GreaterOrEqual(t, v.Y, -2.0)
	assert.InDelta(t, -0.5, v.Y, 1e-9)
}

func TestGrabRequiresFallingAndIntent(t *testing.T) {
	cases := []struct {
		name string
		vy   float64
		in   component.Intent
	}{
		{name: "rising", vy: 1, in: component.Intent{MoveX: 1}},
		{name: "no intent", vy: -2, in: component.Intent{}},
		{name: "away from wall", vy: -2, in: component.Intent{MoveX: -1}},
		{name: "inside deadzone", vy: -2, in: component.Intent{MoveX: 0.05}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgeFixture(t)
			bodyFor(t, f.w, f.player).SetVelocity(0, tc.vy)
			f.tick(t, tc.in)
			assert.False(t, actorOf(t, f.w, f.player).WallGrabbing)
			assert.Equal(t, component.WallLedgeFree, f.state(t).State)
		})
	}
}

func TestGrabThenLedgeHangThenClimb(t *testing.T) {
	f := newLedgeFixture(t)
	body := bodyFor(t, f.w, f.player)
	body.SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	require.True(t, actorOf(t, f.w, f.player).WallGrabbing)

	f.tick(t, component.Intent{MoveX: 1})
	actor := actorOf(t, f.w, f.player)
	wl := f.state(t)
	require.Equal(t, component.WallLedgeHanging, wl.State)
	assert.True(t, actor.Hanging)
	assert.False(t, actor.WallGrabbing)
	assert.InDelta(t, 0.0, wl.Anchor.X(), 1e-6)
	assert.InDelta(t, 0.2, wl.Anchor.Y(), 1e-6)
	assert.InDelta(t, 0.2, body.Position().Y, 1e-6)

	// releasing jump before the hold time gives no partial credit
	for i := 0; i < 5; i++ {
		f.tick(t, component.Intent{JumpHeld: true})
	}
	f.tick(t, component.Intent{})
	assert.Equal(t, 0.0, wl.ClimbHold)

	for i := 0; i < 13 && wl.State == component.WallLedgeHanging; i++ {
		f.tick(t, component.Intent{JumpHeld: true})
	}
	require.Equal(t, component.WallLedgeClimbing, wl.State)
	assert.True(t, actor.Hanging, "hang holds through the climb")
	assert.InDelta(t, 0.8, wl.ClimbTarget.Y(), 1e-6)
	assert.Equal(t, 0.0, f.w.PhysicsWorld().GravityScale(f.player))

	for i := 0; i < 9; i++ {
		f.tick(t, component.Intent{})
	}

	assert.Equal(t, component.WallLedgeFree, wl.State)
	assert.False(t, actor.Hanging)
	assert.False(t, actor.WallGrabbing)
	assert.InDelta(t, wl.ClimbTarget.X(), body.Position().X, 1e-9)
	assert.InDelta(t, wl.ClimbTarget.Y(), body.Position().Y, 1e-9)
	assert.Equal(t, 1.0, f.w.PhysicsWorld().GravityScale(f.player))
	gs, _ := ecs.Get(f.w, f.player, component.GravityScaleComponent.Kind())
	assert.Equal(t, 1.0, gs.Scale)
	assert.False(t, wl.CanGrab, "climb ends with the grab cooldown")
}

func TestCrouchReleasesHangWithCooldown(t *testing.T) {
	f := newLedgeFixture(t)
	bodyFor(t, f.w, f.player).SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	f.tick(t, component.Intent{MoveX: 1})
	wl := f.state(t)
	require.Equal(t, component.WallLedgeHanging, wl.State)

	f.tick(t, component.Intent{CrouchHeld: true})
	assert.Equal(t, component.WallLedgeFree, wl.State)
	assert.False(t, actorOf(t, f.w, f.player).Hanging)
	assert.False(t, wl.CanGrab)
	assert.InDelta(t, 0.2, wl.Cooldown, 1e-9)
	assert.Equal(t, 1.0, f.w.PhysicsWorld().GravityScale(f.player))

	// cooldown blocks an immediate regrab
	bodyFor(t, f.w, f.player).SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	assert.False(t, actorOf(t, f.w, f.player).WallGrabbing)
}

func TestWallJumpPushesAwayFromWall(t *testing.T) {
	w := newTestWorld(t)
	// wall face 0.15 right of the collider edge, far too tall to hang from
	addGround(t, w, cp.Vector{X: 0.85, Y: 0}, 1, 10)
	player := addPlayer(t, w, cp.Vector{})
	f := ledgeFixture{w: w, player: player, wall: NewWallLedgeSystem(quietLogger()), move: NewMovementSystem(quietLogger())}

	body := bodyFor(t, w, player)
	body.SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	require.True(t, actorOf(t, w, player).WallGrabbing)

	f.wall.Update(w, testDt)
	body.SetVelocity(0, 0)
	setIntent(t, w, player, component.Intent{JumpPressed: true})
	f.wall.Update(w, testDt)

	actor := actorOf(t, w, player)
	assert.False(t, actor.WallGrabbing)
	assert.Equal(t, -1.0, actor.Facing)
	v := body.Velocity()
	assert.InDelta(t, -4, v.X, 1e-9)
	assert.InDelta(t, 7, v.Y, 1e-9)
	assert.InDelta(t, -0.05, body.Position().X, 1e-9)
	assert.False(t, f.state(t).CanGrab)
}

func TestGrabTimesOutWithoutLedge(t *testing.T) {
	w := newTestWorld(t)
	addGround(t, w, cp.Vector{X: 0.85, Y: 0}, 1, 10)
	player := addPlayer(t, w, cp.Vector{})
	f := ledgeFixture{w: w, player: player, wall: NewWallLedgeSystem(quietLogger()), move: NewMovementSystem(quietLogger())}

	bodyFor(t, w, player).SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	wl := f.state(t)
	require.Equal(t, component.WallLedgeGrab, wl.State)

	ticks := 0
	for ; ticks < 50 && wl.State == component.WallLedgeGrab; ticks++ {
		f.tick(t, component.Intent{MoveX: 1})
	}
	assert.Equal(t, component.WallLedgeFree, wl.State)
	assert.InDelta(t, 13, ticks, 1)
	assert.False(t, wl.CanGrab)
}

func TestGroundedForcesReleaseAndCancelsClimb(t *testing.T) {
	f := newLedgeFixture(t)
	bodyFor(t, f.w, f.player).SetVelocity(0, -2)
	f.tick(t, component.Intent{MoveX: 1})
	f.tick(t, component.Intent{MoveX: 1})
	for i := 0; i < 13; i++ {
		f.tick(t, component.Intent{JumpHeld: true})
	}
	wl := f.state(t)
	require.Equal(t, component.WallLedgeClimbing, wl.State)
	task := wl.ClimbTask
	require.True(t, component.TaskActive(task))

	actor := actorOf(t, f.w, f.player)
	actor.Grounded = true
	f.tick(t, component.Intent{})

	assert.False(t, task.Active())
	assert.Equal(t, component.WallLedgeFree, wl.State)
	assert.False(t, actor.Hanging)
	assert.False(t, actor.WallGrabbing)
	assert.True(t, wl.CanGrab)
	assert.Equal(t, 1.0, f.w.PhysicsWorld().GravityScale(f.player))
}

func TestLedgeProbeRejectsBlockedHangSpace(t *testing.T) {
	f := newLedgeFixture(t)
	// ceiling right where the hang would put the actor's head
	addGround(t, f.w, cp.Vector{X: 0, Y: 0.45}, 0.3, 0.1)
	pb, ok := bodyOf(f.w, f.player)
	require.True(t, ok)

	_, found := LedgeProbe(f.w.PhysicsWorld(), pb, *testWallLedgeParams(), 1, 0.15)
	assert.False(t, found)
}

func TestDeathReleasesWallAndLedge(t *testing.T) {
	stages := []struct {
		name  string
		setup func(t *testing.T, f ledgeFixture)
		want  component.WallLedgeState
	}{
		{name: "grab", want: component.WallLedgeGrab, setup: func(t *testing.T, f ledgeFixture) {
			f.tick(t, component.Intent{MoveX: 1})
		}},
		{name: "hang", want: component.WallLedgeHanging, setup: func(t *testing.T, f ledgeFixture) {
			f.tick(t, component.Intent{MoveX: 1})
			f.tick(t, component.Intent{MoveX: 1})
		}},
		{name: "climb", want: component.WallLedgeClimbing, setup: func(t *testing.T, f ledgeFixture) {
			f.tick(t, component.Intent{MoveX: 1})
			f.tick(t, component.Intent{MoveX: 1})
			for i := 0; i < 13 && f.state(t).State == component.WallLedgeHanging; i++ {
				f.tick(t, component.Intent{JumpHeld: true})
			}
		}},
	}
	for _, stage := range stages {
		t.Run(stage.name, func(t *testing.T) {
			f := newLedgeFixture(t)
			bodyFor(t, f.w, f.player).SetVelocity(0, -2)
			stage.setup(t, f)
			require.Equal(t, stage.want, f.state(t).State)
			require.Equal(t, 0.0, f.w.PhysicsWorld().GravityScale(f.player))

			death := NewDeathSystem(ecs.NewRegistry(), quietLogger())
			require.True(t, death.Kill(f.w, f.player, ecs.DeathByStress))

			actor := actorOf(t, f.w, f.player)
			wl := f.state(t)
			assert.Equal(t, component.WallLedgeFree, wl.State)
			assert.Nil(t, wl.ClimbTask)
			assert.False(t, actor.WallGrabbing)
			assert.False(t, actor.Hanging)
			assert.Equal(t, 1.0, f.w.PhysicsWorld().GravityScale(f.player))
			gs, _ := ecs.Get(f.w, f.player, component.GravityScaleComponent.Kind())
			assert.Equal(t, 1.0, gs.Scale)
			assert.Equal(t, cp.Vector{}, bodyFor(t, f.w, f.player).Velocity())
		})
	}
}
