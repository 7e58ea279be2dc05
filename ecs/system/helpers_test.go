package system

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/stretchr/testify/require"
)

const testDt = 0.02

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// sequenceSampler replays values in order, repeating the last one.
type sequenceSampler struct {
	values []float64
	i      int
}

func (s *sequenceSampler) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[min(s.i, len(s.values)-1)]
	s.i++
	return v
}

func constSampler(v float64) *sequenceSampler {
	return &sequenceSampler{values: []float64{v}}
}

func newTestWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(-30, 10, quietLogger()))
	return w
}

func addGround(t *testing.T, w *ecs.World, center cp.Vector, width, height float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.StaticBoxComponent.Kind(), &component.StaticBox{X: center.X, Y: center.Y, Width: width, Height: height}))
	require.NotNil(t, w.PhysicsWorld().AddStaticBox(e, center, ecs.BoxSpec{Width: width, Height: height, Layer: ecs.LayerGround}))
	return e
}

func addSensor(t *testing.T, w *ecs.World, center cp.Vector, width, height float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NotNil(t, w.PhysicsWorld().AddStaticBox(e, center, ecs.BoxSpec{Width: width, Height: height, Layer: ecs.LayerSensor, Sensor: true}))
	return e
}

func addActor(t *testing.T, w *ecs.World, pos cp.Vector, width, height float64, category component.Category) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	layer := ecs.LayerActor
	if category == component.CategoryHazard {
		layer = ecs.LayerHazard
	}
	body, shape := w.PhysicsWorld().AddDynamicBox(e, pos, ecs.BoxSpec{Width: width, Height: height, Mass: 1, Layer: layer})
	require.NotNil(t, body)
	require.NoError(t, ecs.Add(w, e, component.ActorComponent.Kind(), &component.Actor{Category: category, Facing: 1}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Body: body, Shape: shape, Width: width, Height: height, Mass: 1, StandHeight: height,
	}))
	require.NoError(t, ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: 1}))
	require.NoError(t, ecs.Add(w, e, component.IntentComponent.Kind(), &component.Intent{}))
	require.NoError(t, ecs.Add(w, e, component.PendingIntentComponent.Kind(), &component.PendingIntent{}))
	return e
}

func testMovementParams() *component.MovementParams {
	return &component.MovementParams{
		WalkSpeed:         15,
		RunSpeed:          30,
		CrouchSpeed:       7.5,
		Smoothing:         0.05,
		SpeedScale:        10,
		JumpImpulse:       8,
		JumpFlagDuration:  0.5,
		WallProbeDistance: 0.2,
		SlideSpeed:        0.5,
	}
}

func testWallLedgeParams() *component.WallLedgeParams {
	return &component.WallLedgeParams{
		WallCheckDistance: 0.2,
		GrabHoldTime:      0.25,
		ReleaseCooldown:   0.2,
		WallJumpX:         4,
		WallJumpY:         7,
		WallJumpNudge:     0.05,
		LedgeProbeHeight:  0.6,
		LedgeProbeDepth:   1.0,
		LedgeMargin:       0.05,
		HangOffsetX:       0.4,
		HangOffsetY:       -0.3,
		ClimbHoldTime:     0.25,
		ClimbDuration:     0.18,
		ClimbOffsetY:      0.6,
	}
}

// addPlayer adds a player actor with movement, wall ledge and dash.
func addPlayer(t *testing.T, w *ecs.World, pos cp.Vector) ecs.Entity {
	t.Helper()
	e := addActor(t, w, pos, 0.4, 0.6, component.CategoryPlayer)
	require.NoError(t, ecs.Add(w, e, component.MovementParamsComponent.Kind(), testMovementParams()))
	require.NoError(t, ecs.Add(w, e, component.MovementComponent.Kind(), &component.Movement{}))
	require.NoError(t, ecs.Add(w, e, component.WallLedgeParamsComponent.Kind(), testWallLedgeParams()))
	require.NoError(t, ecs.Add(w, e, component.WallLedgeComponent.Kind(), &component.WallLedge{CanGrab: true}))
	require.NoError(t, ecs.Add(w, e, component.DashComponent.Kind(), &component.Dash{Force: 20, Duration: 0.2}))
	powers := &component.Powers{}
	powers.Unlock(component.PowerDash)
	require.NoError(t, ecs.Add(w, e, component.PowersComponent.Kind(), powers))
	return e
}

func actorOf(t *testing.T, w *ecs.World, e ecs.Entity) *component.Actor {
	t.Helper()
	a, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	require.True(t, ok)
	return a
}

func bodyFor(t *testing.T, w *ecs.World, e ecs.Entity) *cp.Body {
	t.Helper()
	pb, ok := bodyOf(w, e)
	require.True(t, ok)
	return pb.Body
}

func setIntent(t *testing.T, w *ecs.World, e ecs.Entity, in component.Intent) {
	t.Helper()
	intent, ok := ecs.Get(w, e, component.IntentComponent.Kind())
	require.True(t, ok)
	*intent = in
}

func drainEvents(w *ecs.World, kind ecs.EventKind) []ecs.Event {
	var out []ecs.Event
	for _, evt := range w.Events().Drain() {
		if evt.Kind() == kind {
			out = append(out, evt)
		}
	}
	return out
}
