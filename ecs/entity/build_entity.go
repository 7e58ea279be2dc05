package entity

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/prefabs"
)

type buildContext struct {
	PrefabPath string
	X, Y       float64
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"actor":         addActor,
	"controller":    addController,
	"physics_body":  addPhysicsBody,
	"gravity_scale": addGravityScale,
	"movement":      addMovement,
	"wall_ledge":    addWallLedge,
	"dash":          addDash,
	"stress":        addStress,
	"encounter":     addEncounter,
	"death_effect":  addDeathEffect,
	"ai":            addAI,
	"patrol":        addPatrol,
	"sight":         addSight,
	"feedback":      addFeedback,
	"hideable":      addHideable,
	"inventory":     addInventory,
	"animation":     addAnimation,
	"collectible":   addCollectible,
	"dish_throw":    addDishThrow,
}

// physics_body reads the actor category to pick its layer, so actor comes
// first.
var componentBuildOrder = []string{
	"actor",
	"controller",
	"physics_body",
	"gravity_scale",
	"movement",
	"wall_ledge",
	"dash",
	"stress",
	"encounter",
	"death_effect",
	"ai",
	"patrol",
	"sight",
	"feedback",
	"hideable",
	"inventory",
	"animation",
	"collectible",
	"dish_throw",
}

// BuildEntity builds the prefab at prefabPath with its body centred at
// (x, y).
func BuildEntity(w *ecs.World, prefabPath string, x, y float64) (ecs.Entity, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec, x, y)
}

func BuildEntityFromSpec(w *ecs.World, prefabPath string, spec prefabs.EntityBuildSpec, x, y float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, X: x, Y: y}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string, raw any) error {
		builder, ok := componentRegistry[name]
		if !ok {
			return fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, raw, ctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		return nil
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := build(name, raw); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := build(name, remaining[name]); err != nil {
				ecs.DestroyEntity(w, e)
				return 0, err
			}
		}
	}

	return e, nil
}

type actorSpec = prefabs.ActorComponentSpec

func addActor(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[actorSpec](raw)
	if err != nil {
		return fmt.Errorf("decode actor spec: %w", err)
	}
	facing := 1.0
	if spec.Facing < 0 {
		facing = -1
	}
	category := component.ParseCategory(spec.Category)
	if category == component.CategoryPlayer {
		if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.ActorComponent.Kind(), &component.Actor{Category: category, Facing: facing})
}

type controllerSpec = prefabs.ControllerComponentSpec

func addController(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[controllerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode controller spec: %w", err)
	}
	var source component.IntentSource
	switch spec.Source {
	case "player":
		source = component.IntentSourcePlayer
	case "ai":
		source = component.IntentSourceAI
	case "", "none":
		source = component.IntentSourceNone
	default:
		return fmt.Errorf("unknown intent source %q", spec.Source)
	}
	if err := ecs.Add(w, e, component.ControllerComponent.Kind(), &component.Controller{Source: source}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.IntentComponent.Kind(), &component.Intent{}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.PendingIntentComponent.Kind(), &component.PendingIntent{})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("physics body needs a positive size, got %vx%v", spec.Width, spec.Height)
	}
	if spec.Mass <= 0 {
		spec.Mass = 1
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return fmt.Errorf("world has no physics world")
	}

	layer := ecs.LayerActor
	if actor, ok := ecs.Get(w, e, component.ActorComponent.Kind()); ok && actor.Category == component.CategoryHazard {
		layer = ecs.LayerHazard
	}
	switch spec.Layer {
	case "":
	case "actor":
		layer = ecs.LayerActor
	case "hazard":
		layer = ecs.LayerHazard
	default:
		return fmt.Errorf("unknown physics body layer %q", spec.Layer)
	}
	body, shape := pw.AddDynamicBox(e, cp.Vector{X: ctx.X, Y: ctx.Y}, ecs.BoxSpec{
		Width:  spec.Width,
		Height: spec.Height,
		Mass:   spec.Mass,
		Layer:  layer,
	})
	if body == nil {
		return fmt.Errorf("physics world rejected body")
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Body:        body,
		Shape:       shape,
		Width:       spec.Width,
		Height:      spec.Height,
		Mass:        spec.Mass,
		StandHeight: spec.Height,
	})
}

type gravityScaleSpec = prefabs.GravityScaleComponentSpec

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gravityScaleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity scale spec: %w", err)
	}
	scale := 1.0
	if spec.Scale != nil {
		scale = *spec.Scale
	}
	w.PhysicsWorld().SetGravityScale(e, scale)
	return ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: scale})
}

type movementSpec = prefabs.MovementComponentSpec

func addMovement(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[movementSpec](raw)
	if err != nil {
		return fmt.Errorf("decode movement spec: %w", err)
	}
	if spec.SpeedScale == 0 {
		spec.SpeedScale = 1
	}
	if err := ecs.Add(w, e, component.MovementParamsComponent.Kind(), &component.MovementParams{
		WalkSpeed:         spec.WalkSpeed,
		RunSpeed:          spec.RunSpeed,
		CrouchSpeed:       spec.CrouchSpeed,
		Smoothing:         spec.Smoothing,
		SpeedScale:        spec.SpeedScale,
		JumpImpulse:       spec.JumpImpulse,
		JumpFlagDuration:  spec.JumpFlagDuration,
		WallProbeDistance: spec.WallProbeDistance,
		SlideSpeed:        spec.SlideSpeed,
	}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.MovementComponent.Kind(), &component.Movement{})
}

type wallLedgeSpec = prefabs.WallLedgeComponentSpec

func addWallLedge(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[wallLedgeSpec](raw)
	if err != nil {
		return fmt.Errorf("decode wall ledge spec: %w", err)
	}
	if err := ecs.Add(w, e, component.WallLedgeParamsComponent.Kind(), &component.WallLedgeParams{
		WallCheckDistance: spec.WallCheckDistance,
		GrabHoldTime:      spec.GrabHoldTime,
		ReleaseCooldown:   spec.ReleaseCooldown,
		WallJumpX:         spec.WallJumpX,
		WallJumpY:         spec.WallJumpY,
		WallJumpNudge:     spec.WallJumpNudge,
		LedgeProbeHeight:  spec.LedgeProbeHeight,
		LedgeProbeDepth:   spec.LedgeProbeDepth,
		LedgeMargin:       spec.LedgeMargin,
		HangOffsetX:       spec.HangOffsetX,
		HangOffsetY:       spec.HangOffsetY,
		ClimbHoldTime:     spec.ClimbHoldTime,
		ClimbDuration:     spec.ClimbDuration,
		ClimbOffsetY:      spec.ClimbOffsetY,
	}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.WallLedgeComponent.Kind(), &component.WallLedge{CanGrab: true})
}

type dashSpec = prefabs.DashComponentSpec

func addDash(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[dashSpec](raw)
	if err != nil {
		return fmt.Errorf("decode dash spec: %w", err)
	}
	if err := ecs.Add(w, e, component.DashComponent.Kind(), &component.Dash{Force: spec.Force, Duration: spec.Duration}); err != nil {
		return err
	}
	powers, ok := ecs.Get(w, e, component.PowersComponent.Kind())
	if !ok {
		powers = &component.Powers{}
		if err := ecs.Add(w, e, component.PowersComponent.Kind(), powers); err != nil {
			return err
		}
	}
	if spec.Unlocked {
		powers.Unlock(component.PowerDash)
	}
	return nil
}

type stressSpec = prefabs.StressComponentSpec

func addStress(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[stressSpec](raw)
	if err != nil {
		return fmt.Errorf("decode stress spec: %w", err)
	}
	if spec.GuaranteedDeathAt < spec.DeathAt {
		return fmt.Errorf("guaranteed_death_at %v is below death_at %v", spec.GuaranteedDeathAt, spec.DeathAt)
	}
	return ecs.Add(w, e, component.StressComponent.Kind(), &component.Stress{
		Value:             max(0, spec.Value),
		DeathAt:           spec.DeathAt,
		GuaranteedDeathAt: spec.GuaranteedDeathAt,
		Round:             spec.Round,
		PassiveChance:     spec.PassiveChance,
	})
}

type encounterSpec = prefabs.EncounterComponentSpec

func addEncounter(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[encounterSpec](raw)
	if err != nil {
		return fmt.Errorf("decode encounter spec: %w", err)
	}
	return ecs.Add(w, e, component.EncounterComponent.Kind(), &component.Encounter{
		StompStress:      spec.StompStress,
		CollisionStress:  spec.CollisionStress,
		BounceVelocity:   spec.BounceVelocity,
		DamageInterval:   spec.DamageInterval,
		TopTolerance:     spec.TopTolerance,
		NormalThreshold:  spec.NormalThreshold,
		SideInset:        spec.SideInset,
		FallbackVelocity: spec.FallbackVelocity,
		FallbackOffset:   spec.FallbackOffset,
		LastDamage:       make(map[uint64]float64),
	})
}

type deathEffectSpec = prefabs.DeathEffectComponentSpec

func addDeathEffect(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[deathEffectSpec](raw)
	if err != nil {
		return fmt.Errorf("decode death effect spec: %w", err)
	}
	return ecs.Add(w, e, component.DeathEffectComponent.Kind(), &component.DeathEffect{
		Enabled:       spec.Enabled,
		HasParticles:  spec.HasParticles,
		Duration:      spec.Duration,
		StartLifetime: spec.StartLifetime,
		Fallback:      spec.Fallback,
	})
}

type aiSpec = prefabs.AIComponentSpec

func addAI(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[aiSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ai spec: %w", err)
	}
	return ecs.Add(w, e, component.AIComponent.Kind(), &component.AI{Script: spec.Script})
}

type patrolSpec = prefabs.PatrolComponentSpec

func addPatrol(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[patrolSpec](raw)
	if err != nil {
		return fmt.Errorf("decode patrol spec: %w", err)
	}
	return SetPatrol(w, e, spec)
}

// SetPatrol replaces the patrol route of e.
func SetPatrol(w *ecs.World, e ecs.Entity, spec prefabs.PatrolComponentSpec) error {
	waypoints := make([]cp.Vector, 0, len(spec.Waypoints))
	for _, p := range spec.Waypoints {
		waypoints = append(waypoints, cp.Vector{X: p.X, Y: p.Y})
	}
	arrive := spec.ArriveDistance
	if arrive <= 0 {
		arrive = 0.1
	}
	return ecs.Add(w, e, component.PatrolComponent.Kind(), &component.Patrol{
		Waypoints:      waypoints,
		Dir:            1,
		PingPong:       spec.PingPong,
		ArriveDistance: arrive,
	})
}

type sightSpec = prefabs.SightComponentSpec

func addSight(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[sightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode sight spec: %w", err)
	}
	if spec.Radius < 0 {
		return fmt.Errorf("sight radius must not be negative, got %v", spec.Radius)
	}
	return ecs.Add(w, e, component.SightComponent.Kind(), &component.Sight{
		Radius: spec.Radius,
		Filter: component.ParseCategory(spec.Filter),
	})
}

type feedbackSpec = prefabs.FeedbackComponentSpec

func addFeedback(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[feedbackSpec](raw)
	if err != nil {
		return fmt.Errorf("decode feedback spec: %w", err)
	}
	params := &component.FeedbackParams{
		FlashDuration:   spec.FlashDuration,
		HiddenAlpha:     spec.HiddenAlpha,
		FadeDuration:    spec.FadeDuration,
		TintFullAt:      spec.TintFullAt,
		WobbleThreshold: spec.WobbleThreshold,
		WobbleMaxStress: spec.WobbleMaxStress,
		WobbleAmplitude: spec.WobbleAmplitude,
	}
	if spec.FlashColor != nil {
		params.FlashColor = spec.FlashColor.NRGBA
	}
	if err := ecs.Add(w, e, component.FeedbackParamsComponent.Kind(), params); err != nil {
		return err
	}
	return ecs.Add(w, e, component.FeedbackComponent.Kind(), &component.Feedback{Alpha: 1})
}

func addHideable(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.HideableComponent.Kind(), &component.Hideable{Zones: make(map[uint64]bool)})
}

func addInventory(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InventoryComponent.Kind(), &component.Inventory{Items: make(map[string]int)})
}

func addAnimation(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AnimationComponent.Kind(), &component.Animation{Params: make(map[string]any)})
}

type collectibleSpec = prefabs.CollectibleComponentSpec

func addCollectible(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[collectibleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collectible spec: %w", err)
	}
	if spec.Kind == "" {
		return fmt.Errorf("collectible needs a kind")
	}
	return ecs.Add(w, e, component.CollectibleComponent.Kind(), &component.Collectible{Kind: spec.Kind, Value: spec.Value})
}

type dishThrowSpec = prefabs.DishThrowComponentSpec

const (
	defaultDishSpeed  = 8
	defaultDishStress = 120
	defaultDishFade   = 0.5
)

func addDishThrow(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[dishThrowSpec](raw)
	if err != nil {
		return fmt.Errorf("decode dish throw spec: %w", err)
	}
	dish := &component.DishThrow{
		Speed:        spec.Speed,
		Stress:       spec.Stress,
		FadeDuration: spec.FadeDuration,
		MaxFlight:    spec.MaxFlight,
		AutoLaunch:   spec.AutoLaunch,
		DirX:         1,
	}
	if dish.Speed <= 0 {
		dish.Speed = defaultDishSpeed
	}
	if dish.Stress <= 0 {
		dish.Stress = defaultDishStress
	}
	if dish.FadeDuration <= 0 {
		dish.FadeDuration = defaultDishFade
	}
	if spec.Direction != nil {
		dish.DirX, dish.DirY = spec.Direction.X, spec.Direction.Y
	}
	return ecs.Add(w, e, component.DishThrowComponent.Kind(), dish)
}
