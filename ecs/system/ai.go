package system

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// NextPatrolIndex returns the waypoint after index and the direction to
// keep walking. Without ping-pong the route wraps to 0; with it the
// direction flips at either end.
func NextPatrolIndex(index, dir, n int, pingPong bool) (int, int) {
	if n <= 1 {
		return 0, dir
	}
	if !pingPong {
		return (index + 1) % n, dir
	}
	if dir == 0 {
		dir = 1
	}
	next := index + dir
	if next >= n {
		dir = -1
		next = index - 1
	} else if next < 0 {
		dir = 1
		next = index + 1
	}
	return next, dir
}

// PatrolIntent returns the horizontal intent toward the current waypoint,
// advancing the route first when x has arrived at it.
func PatrolIntent(x float64, p *component.Patrol) float64 {
	if p == nil || len(p.Waypoints) == 0 {
		return 0
	}
	if p.Index < 0 || p.Index >= len(p.Waypoints) {
		p.Index = 0
	}
	if math.Abs(p.Waypoints[p.Index].X-x) <= p.ArriveDistance {
		p.Index, p.Dir = NextPatrolIndex(p.Index, p.Dir, len(p.Waypoints), p.PingPong)
	}
	return common.Sign(p.Waypoints[p.Index].X - x)
}

// AISystem decides AI intents once per frame tick. A custom behaviour goes
// first; otherwise a visible target in sight wins over the patrol route,
// which does not advance while overridden. Decisions are queued and applied
// on the next fixed tick.
type AISystem struct {
	logger   *log.Logger
	diag     diagnostics
	registry *ecs.Registry
	index    *SightIndex
	behavior Behavior
}

func NewAISystem(registry *ecs.Registry, behavior Behavior, logger *log.Logger) *AISystem {
	l := systemLogger(logger, "ai")
	return &AISystem{
		logger:   l,
		diag:     newDiagnostics(l),
		registry: registry,
		index:    NewSightIndex(),
		behavior: behavior,
	}
}

func (s *AISystem) Update(w *ecs.World, dt float64) {
	members := s.registry.Snapshot()
	if len(members) == 0 {
		return
	}
	s.index.Rebuild(w)
	for _, e := range members {
		s.decide(w, e)
	}
}

func (s *AISystem) decide(w *ecs.World, e ecs.Entity) {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Dead {
		return
	}
	pending, ok := ecs.Get(w, e, component.PendingIntentComponent.Kind())
	if !ok {
		s.diag.warnOnce(e, "ai actor has no pending intent; idle")
		return
	}
	pb, ok := bodyOf(w, e)
	if !ok {
		s.diag.warnOnce(e, "ai actor has no physics body; idle")
		pending.Queue(component.Intent{})
		return
	}
	pos := pb.Body.Position()

	var (
		target    cp.Vector
		hasTarget bool
	)
	if sight, ok := ecs.Get(w, e, component.SightComponent.Kind()); ok {
		var found ecs.Entity
		found, target, hasTarget = s.index.Nearest(pos, sight.Radius, e, sight.Filter)
		sight.HasTarget = hasTarget
		sight.Target = uint64(found)
	}
	patrol, hasPatrol := ecs.Get(w, e, component.PatrolComponent.Kind())

	if dec, ok := s.custom(w, e, actor, pb, target, hasTarget, patrol); ok {
		pending.Queue(component.Intent{MoveX: dec.MoveX, JumpPressed: dec.Jump})
		return
	}

	intent := component.Intent{}
	switch {
	case hasTarget:
		intent.MoveX = common.Sign(target.X - pos.X)
	case hasPatrol:
		intent.MoveX = PatrolIntent(pos.X, patrol)
	}
	pending.Queue(intent)
}

// custom runs the behaviour override. Faults are contained here and count
// as not handled.
func (s *AISystem) custom(w *ecs.World, e ecs.Entity, actor *component.Actor, pb *component.PhysicsBody, target cp.Vector, hasTarget bool, patrol *component.Patrol) (Decision, bool) {
	if s.behavior == nil {
		return Decision{}, false
	}
	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	if !ok || ai.Script == "" {
		return Decision{}, false
	}

	pos, vel := pb.Body.Position(), pb.Body.Velocity()
	in := Perception{
		Entity:    e,
		Script:    ai.Script,
		X:         pos.X,
		Y:         pos.Y,
		VX:        vel.X,
		VY:        vel.Y,
		Facing:    actor.Facing,
		Grounded:  actor.Grounded,
		HasTarget: hasTarget,
		TargetX:   target.X,
		TargetY:   target.Y,
	}
	if st, ok := ecs.Get(w, e, component.StressComponent.Kind()); ok {
		in.Stress = st.Value
	}
	if patrol != nil && len(patrol.Waypoints) > 0 && patrol.Index >= 0 && patrol.Index < len(patrol.Waypoints) {
		wp := patrol.Waypoints[patrol.Index]
		in.HasPatrol = true
		in.PatrolTargetX, in.PatrolTargetY = wp.X, wp.Y
	}

	dec, err := safeDecide(s.behavior, in)
	if err != nil {
		s.diag.warnOnce(e, "ai behaviour failed; falling back to patrol", "script", ai.Script, "err", err)
		return Decision{}, false
	}
	return dec, dec.Handled
}

func safeDecide(b Behavior, in Perception) (dec Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec, err = Decision{}, fmt.Errorf("ai behaviour panicked: %v", r)
		}
	}()
	return b.Decide(in)
}
