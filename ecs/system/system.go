package system

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// ContactHandler consumes buffered physics contacts after a step.
type ContactHandler interface {
	HandleContact(w *ecs.World, c ecs.Contact)
}

func systemLogger(logger *log.Logger, name string) *log.Logger {
	if logger == nil {
		logger = log.Default()
	}
	return logger.With("system", name)
}

// diagnostics reports a missing dependency once per entity and reason so a
// broken actor does not flood the log every tick.
type diagnostics struct {
	logger *log.Logger
	seen   map[string]struct{}
}

func newDiagnostics(logger *log.Logger) diagnostics {
	return diagnostics{logger: logger, seen: make(map[string]struct{})}
}

func (d *diagnostics) warnOnce(e ecs.Entity, msg string, keyvals ...any) {
	key := fmt.Sprintf("%d/%s", uint64(e), msg)
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.logger.Warn(msg, append([]any{"entity", e}, keyvals...)...)
}

// bodyOf returns the physics body component of e when it has a live body.
func bodyOf(w *ecs.World, e ecs.Entity) (*component.PhysicsBody, bool) {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return nil, false
	}
	return pb, true
}

// setGravityScale writes the gravity scale component and pushes it to the
// body immediately.
func setGravityScale(w *ecs.World, e ecs.Entity, scale float64) {
	if gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
		gs.Scale = scale
	} else {
		_ = ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: scale})
	}
	w.PhysicsWorld().SetGravityScale(e, scale)
}

// edgeProbe casts a horizontal ray from the collider edge on side dir.
func edgeProbe(pw *ecs.PhysicsWorld, pb *component.PhysicsBody, dir, distance float64) (ecs.Hit, bool) {
	if pw == nil || pb == nil || dir == 0 || distance <= 0 {
		return ecs.Hit{}, false
	}
	c := pb.Center()
	origin := cp.Vector{X: c.X + dir*pb.Extents().X, Y: c.Y}
	return pw.Raycast(origin, cp.Vector{X: dir}, distance, ecs.LayerGround)
}
