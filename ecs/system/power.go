package system

import (
	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// Power is an unlockable ability that temporarily overrides movement.
type Power interface {
	Kind() component.PowerKind
	// Activate reports whether the power started.
	Activate(w *ecs.World, e ecs.Entity) bool
	Deactivate(w *ecs.World, e ecs.Entity)
}

// DashPower throws the actor along its facing for a fixed window. The
// scheduled end zeroes velocity again and clears the dashing flag.
type DashPower struct {
	logger *log.Logger
	diag   diagnostics
}

func NewDashPower(logger *log.Logger) *DashPower {
	l := systemLogger(logger, "dash")
	return &DashPower{logger: l, diag: newDiagnostics(l)}
}

func (p *DashPower) Kind() component.PowerKind {
	return component.PowerDash
}

func (p *DashPower) Activate(w *ecs.World, e ecs.Entity) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Dead {
		return false
	}
	if actor.Dashing || actor.WallGrabbing || actor.Hanging {
		return false
	}
	dash, ok := ecs.Get(w, e, component.DashComponent.Kind())
	if !ok {
		p.diag.warnOnce(e, "dash activated without dash params")
		return false
	}
	pb, ok := bodyOf(w, e)
	if !ok {
		p.diag.warnOnce(e, "dash activated without physics body")
		return false
	}

	facing := actor.Facing
	if facing == 0 {
		facing = 1
	}
	actor.Dashing = true
	actor.Grounded = false
	body := pb.Body
	body.SetVelocity(0, 0)
	body.ApplyImpulseAtWorldPoint(cp.Vector{X: facing * dash.Force}, body.Position())

	component.CancelTask(dash.Task)
	dash.Task = w.FixedTasks().After(dash.Duration, func() {
		p.Deactivate(w, e)
	})
	p.logger.Debug("dash start", "entity", e, "facing", facing)
	return true
}

func (p *DashPower) Deactivate(w *ecs.World, e ecs.Entity) {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || !actor.Dashing {
		return
	}
	if dash, ok := ecs.Get(w, e, component.DashComponent.Kind()); ok {
		component.CancelTask(dash.Task)
		dash.Task = nil
	}
	if pb, ok := bodyOf(w, e); ok {
		pb.Body.SetVelocity(0, 0)
	}
	actor.Dashing = false
	p.logger.Debug("dash end", "entity", e)
}

// PowerSystem activates unlocked powers from the current intent.
type PowerSystem struct {
	powers map[component.PowerKind]Power
}

func NewPowerSystem(powers ...Power) *PowerSystem {
	s := &PowerSystem{powers: make(map[component.PowerKind]Power)}
	for _, p := range powers {
		if p != nil {
			s.powers[p.Kind()] = p
		}
	}
	return s
}

// Power returns the registered power of kind.
func (s *PowerSystem) Power(kind component.PowerKind) (Power, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.powers[kind]
	return p, ok
}

// Activate starts kind for e when e has unlocked it.
func (s *PowerSystem) Activate(w *ecs.World, e ecs.Entity, kind component.PowerKind) bool {
	powers, ok := ecs.Get(w, e, component.PowersComponent.Kind())
	if !ok || !powers.Has(kind) {
		return false
	}
	p, ok := s.Power(kind)
	if !ok {
		return false
	}
	return p.Activate(w, e)
}

func (s *PowerSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.IntentComponent.Kind(), component.PowersComponent.Kind(), func(e ecs.Entity, intent *component.Intent, _ *component.Powers) {
		if intent.DashPressed {
			s.Activate(w, e, component.PowerDash)
		}
	})
}
