package system

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// grabInputDeadzone is the horizontal intent needed to press into a wall.
const grabInputDeadzone = 0.1

// WallLedgeSystem runs the wall grab, ledge hang and climb state machine.
// While it holds an actor (grab, hang or climb) it owns that actor's
// gravity; the movement system only clamps velocity from the flags.
type WallLedgeSystem struct {
	logger *log.Logger
	diag   diagnostics
}

func NewWallLedgeSystem(logger *log.Logger) *WallLedgeSystem {
	l := systemLogger(logger, "wall_ledge")
	return &WallLedgeSystem{logger: l, diag: newDiagnostics(l)}
}

type wallLedgeCtx struct {
	w      *ecs.World
	e      ecs.Entity
	actor  *component.Actor
	wl     *component.WallLedge
	params *component.WallLedgeParams
	pb     *component.PhysicsBody
	intent component.Intent
}

func (s *WallLedgeSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.WallLedgeComponent.Kind(), component.ActorComponent.Kind(), func(e ecs.Entity, wl *component.WallLedge, actor *component.Actor) {
		if actor.Dead {
			return
		}
		params, ok := ecs.Get(w, e, component.WallLedgeParamsComponent.Kind())
		if !ok {
			s.diag.warnOnce(e, "wall ledge actor has no params; skipped")
			return
		}
		pb, ok := bodyOf(w, e)
		if !ok || w.PhysicsWorld() == nil {
			s.diag.warnOnce(e, "wall ledge actor has no physics body; skipped")
			return
		}
		ctx := &wallLedgeCtx{w: w, e: e, actor: actor, wl: wl, params: params, pb: pb}
		if intent, ok := ecs.Get(w, e, component.IntentComponent.Kind()); ok {
			ctx.intent = *intent
		}
		s.tick(ctx, dt)
	})
}

func (s *WallLedgeSystem) tick(ctx *wallLedgeCtx, dt float64) {
	wl := ctx.wl
	if ctx.actor.Grounded {
		s.releaseAll(ctx)
		wl.CanGrab = true
		wl.Cooldown = 0
		return
	}

	if !wl.CanGrab {
		wl.Cooldown -= dt
		if wl.Cooldown <= 0 {
			wl.Cooldown = 0
			wl.CanGrab = true
		}
	}

	switch wl.State {
	case component.WallLedgeClimbing:
		// the climb task drives position until it completes
	case component.WallLedgeHanging:
		s.tickHang(ctx, dt)
	case component.WallLedgeGrab:
		s.tickGrab(ctx, dt)
	default:
		s.tryGrab(ctx)
	}
}

func (s *WallLedgeSystem) tryGrab(ctx *wallLedgeCtx) {
	actor, wl := ctx.actor, ctx.wl
	if !wl.CanGrab || actor.Dashing || actor.Crouching {
		return
	}
	if ctx.pb.Body.Velocity().Y >= 0 {
		return
	}
	if math.Abs(ctx.intent.MoveX) <= grabInputDeadzone {
		return
	}
	dir := common.Sign(ctx.intent.MoveX)
	hit, ok := edgeProbe(ctx.w.PhysicsWorld(), ctx.pb, dir, ctx.params.WallCheckDistance)
	if !ok {
		return
	}

	wl.State = component.WallLedgeGrab
	wl.WallSide = dir
	wl.WallGap = hit.Distance
	wl.HoldTimer = ctx.params.GrabHoldTime
	wl.ClimbHold = 0
	actor.WallGrabbing = true
	actor.Hanging = false
	actor.Facing = dir
	ctx.pb.Body.SetVelocity(0, 0)
	setGravityScale(ctx.w, ctx.e, 0)
	s.logger.Debug("wall grab", "entity", ctx.e, "side", dir, "gap", hit.Distance)
}

func (s *WallLedgeSystem) tickGrab(ctx *wallLedgeCtx, dt float64) {
	wl := ctx.wl
	wl.HoldTimer -= dt
	if ctx.intent.JumpPressed {
		s.wallJump(ctx)
		return
	}
	if wl.HoldTimer <= 0 {
		s.releaseWithCooldown(ctx)
		return
	}
	s.tryLedge(ctx)
}

func (s *WallLedgeSystem) wallJump(ctx *wallLedgeCtx) {
	away := -ctx.wl.WallSide
	s.releaseAll(ctx)
	body := ctx.pb.Body
	pos := body.Position()
	body.ApplyImpulseAtWorldPoint(cp.Vector{X: away * ctx.params.WallJumpX, Y: ctx.params.WallJumpY}, pos)
	body.SetPosition(cp.Vector{X: pos.X + away*ctx.params.WallJumpNudge, Y: pos.Y})
	ctx.actor.Facing = away
	s.startCooldown(ctx)
	s.logger.Debug("wall jump", "entity", ctx.e, "dir", away)
}

// LedgeProbe looks for a ledge top beside the actor's upper corner on the
// wall side. It returns the hang position when the ledge is high enough
// and the space the actor would occupy while hanging is free.
func LedgeProbe(pw *ecs.PhysicsWorld, pb *component.PhysicsBody, params component.WallLedgeParams, side, gap float64) (mgl64.Vec3, bool) {
	if pw == nil || pb == nil || side == 0 {
		return mgl64.Vec3{}, false
	}
	c := pb.Center()
	ext := pb.Extents()
	cornerX := c.X + side*(ext.X+gap+params.LedgeMargin)
	topY := c.Y + ext.Y + params.LedgeMargin

	origin := cp.Vector{X: cornerX, Y: topY + params.LedgeProbeHeight}
	hit, ok := pw.Raycast(origin, cp.Vector{Y: -1}, params.LedgeProbeDepth, ecs.LayerGround)
	if !ok || hit.Point.Y <= topY+params.LedgeMargin {
		return mgl64.Vec3{}, false
	}

	hang := mgl64.Vec3{hit.Point.X - side*params.HangOffsetX, hit.Point.Y + params.HangOffsetY, 0}
	size := cp.Vector{X: pb.Width * 0.8, Y: pb.Height * 0.6}
	check := cp.Vector{X: hang.X(), Y: hang.Y() + size.Y/2}
	if pw.OverlapBox(check, size, ecs.LayerGround) {
		return mgl64.Vec3{}, false
	}
	return hang, true
}

func (s *WallLedgeSystem) tryLedge(ctx *wallLedgeCtx) {
	wl := ctx.wl
	hang, ok := LedgeProbe(ctx.w.PhysicsWorld(), ctx.pb, *ctx.params, wl.WallSide, wl.WallGap)
	if !ok {
		return
	}
	wl.State = component.WallLedgeHanging
	wl.Anchor = hang
	wl.ClimbHold = 0
	ctx.actor.WallGrabbing = false
	ctx.actor.Hanging = true
	body := ctx.pb.Body
	body.SetVelocity(0, 0)
	body.SetPosition(cp.Vector{X: hang.X(), Y: hang.Y()})
	setGravityScale(ctx.w, ctx.e, 0)
	s.logger.Debug("ledge hang", "entity", ctx.e, "anchor", hang)
}

func (s *WallLedgeSystem) tickHang(ctx *wallLedgeCtx, dt float64) {
	wl := ctx.wl
	ctx.pb.Body.SetVelocity(0, 0)
	if ctx.intent.CrouchHeld {
		wl.ClimbHold = 0
		s.releaseWithCooldown(ctx)
		return
	}
	if !ctx.intent.JumpHeld {
		wl.ClimbHold = 0
		return
	}
	wl.ClimbHold += dt
	if wl.ClimbHold >= ctx.params.ClimbHoldTime {
		wl.ClimbHold = 0
		s.startClimb(ctx)
	}
}

func (s *WallLedgeSystem) startClimb(ctx *wallLedgeCtx) {
	w, e, wl := ctx.w, ctx.e, ctx.wl
	body := ctx.pb.Body
	pos := body.Position()
	wl.State = component.WallLedgeClimbing
	wl.ClimbFrom = mgl64.Vec3{pos.X, pos.Y, 0}
	wl.ClimbTarget = wl.Anchor.Add(mgl64.Vec3{0, ctx.params.ClimbOffsetY, 0})
	body.SetVelocity(0, 0)
	setGravityScale(w, e, 0)

	component.CancelTask(wl.ClimbTask)
	from, target := wl.ClimbFrom, wl.ClimbTarget
	wl.ClimbTask = w.FixedTasks().Schedule(ctx.params.ClimbDuration, func(p float64) {
		pb, ok := bodyOf(w, e)
		if !ok {
			return
		}
		at := lerpVec3(from, target, common.SmoothStep(p))
		pb.Body.SetVelocity(0, 0)
		pb.Body.SetPosition(cp.Vector{X: at.X(), Y: at.Y()})
	}, func() {
		s.finishClimb(w, e)
	})
	s.logger.Debug("ledge climb", "entity", e, "target", target)
}

func (s *WallLedgeSystem) finishClimb(w *ecs.World, e ecs.Entity) {
	actor, okA := ecs.Get(w, e, component.ActorComponent.Kind())
	wl, okW := ecs.Get(w, e, component.WallLedgeComponent.Kind())
	if !okA || !okW {
		return
	}
	if pb, ok := bodyOf(w, e); ok {
		pb.Body.SetPosition(cp.Vector{X: wl.ClimbTarget.X(), Y: wl.ClimbTarget.Y()})
	}
	wl.ClimbTask = nil
	ctx := &wallLedgeCtx{w: w, e: e, actor: actor, wl: wl}
	if params, ok := ecs.Get(w, e, component.WallLedgeParamsComponent.Kind()); ok {
		ctx.params = params
	}
	s.releaseAll(ctx)
	s.startCooldown(ctx)
}

// releaseAll drops any grab, hang or climb, cancels an in-flight climb and
// restores gravity.
func (s *WallLedgeSystem) releaseAll(ctx *wallLedgeCtx) {
	releaseWallLedge(ctx.w, ctx.e, ctx.actor, ctx.wl)
}

func releaseWallLedge(w *ecs.World, e ecs.Entity, actor *component.Actor, wl *component.WallLedge) {
	held := wl.State != component.WallLedgeFree || actor.WallGrabbing || actor.Hanging
	component.CancelTask(wl.ClimbTask)
	wl.ClimbTask = nil
	wl.State = component.WallLedgeFree
	wl.HoldTimer = 0
	wl.ClimbHold = 0
	actor.WallGrabbing = false
	actor.Hanging = false
	if held && w.PhysicsWorld() != nil {
		setGravityScale(w, e, 1)
	}
}

func (s *WallLedgeSystem) releaseWithCooldown(ctx *wallLedgeCtx) {
	s.releaseAll(ctx)
	s.startCooldown(ctx)
	s.logger.Debug("wall release", "entity", ctx.e)
}

func (s *WallLedgeSystem) startCooldown(ctx *wallLedgeCtx) {
	ctx.wl.CanGrab = false
	if ctx.params != nil {
		ctx.wl.Cooldown = ctx.params.ReleaseCooldown
	}
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
