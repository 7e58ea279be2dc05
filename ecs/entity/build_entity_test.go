package entity

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld() *ecs.World {
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(-30, 10, log.New(io.Discard)))
	return w
}

func TestBuildPlayerPrefab(t *testing.T) {
	w := newWorld()
	e, err := BuildEntity(w, "player.yaml", 1, 2)
	require.NoError(t, err)

	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.CategoryPlayer, actor.Category)
	assert.Equal(t, 1.0, actor.Facing)
	assert.True(t, ecs.Has(w, e, component.PlayerTagComponent.Kind()))

	ctrl, ok := ecs.Get(w, e, component.ControllerComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.IntentSourcePlayer, ctrl.Source)
	assert.True(t, ecs.Has(w, e, component.IntentComponent.Kind()))
	assert.True(t, ecs.Has(w, e, component.PendingIntentComponent.Kind()))

	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, pb.Body)
	assert.Equal(t, 1.0, pb.Body.Position().X)
	assert.Equal(t, 2.0, pb.Body.Position().Y)
	assert.Equal(t, 0.6, pb.StandHeight)
	assert.Same(t, pb.Body, w.PhysicsWorld().Body(e))

	powers, ok := ecs.Get(w, e, component.PowersComponent.Kind())
	require.True(t, ok)
	assert.True(t, powers.Has(component.PowerDash))

	wl, ok := ecs.Get(w, e, component.WallLedgeComponent.Kind())
	require.True(t, ok)
	assert.True(t, wl.CanGrab)

	fb, ok := ecs.Get(w, e, component.FeedbackComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 1.0, fb.Alpha)
	params, ok := ecs.Get(w, e, component.FeedbackParamsComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, uint8(255), params.FlashColor.R)

	for _, has := range []bool{
		ecs.Has(w, e, component.HideableComponent.Kind()),
		ecs.Has(w, e, component.InventoryComponent.Kind()),
		ecs.Has(w, e, component.AnimationComponent.Kind()),
		ecs.Has(w, e, component.StressComponent.Kind()),
	} {
		assert.True(t, has)
	}
	assert.False(t, ecs.Has(w, e, component.AIComponent.Kind()))
}

func TestBuildHazardPrefabs(t *testing.T) {
	w := newWorld()
	hazard, err := BuildEntity(w, "hazard.yaml", 0, 0)
	require.NoError(t, err)
	stalker, err := BuildEntity(w, "stalker.yaml", 3, 0)
	require.NoError(t, err)

	for _, e := range []ecs.Entity{hazard, stalker} {
		actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
		require.True(t, ok)
		assert.Equal(t, component.CategoryHazard, actor.Category)
		assert.Equal(t, -1.0, actor.Facing)
		assert.True(t, ecs.Has(w, e, component.EncounterComponent.Kind()))
		assert.True(t, ecs.Has(w, e, component.PatrolComponent.Kind()))

		sight, ok := ecs.Get(w, e, component.SightComponent.Kind())
		require.True(t, ok)
		assert.Equal(t, component.CategoryPlayer, sight.Filter)
	}

	ai, ok := ecs.Get(w, stalker, component.AIComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, "stalker.tengo", ai.Script)

	fx, ok := ecs.Get(w, stalker, component.DeathEffectComponent.Kind())
	require.True(t, ok)
	assert.True(t, fx.HasParticles)
	assert.InDelta(t, 0.6+0.4+0.25, fx.Lifetime(), 1e-9)

	fx, ok = ecs.Get(w, hazard, component.DeathEffectComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 5.0, fx.Lifetime())
}

func TestBuildEntityErrors(t *testing.T) {
	w := newWorld()

	_, err := BuildEntity(w, "missing.yaml", 0, 0)
	assert.ErrorContains(t, err, `build entity: load "missing.yaml"`)

	_, err = BuildEntityFromSpec(w, "empty", prefabs.EntityBuildSpec{}, 0, 0)
	assert.ErrorContains(t, err, "does not define components")

	_, err = BuildEntityFromSpec(nil, "x", prefabs.EntityBuildSpec{}, 0, 0)
	assert.Error(t, err)

	before := len(ecs.Entities(w))
	_, err = BuildEntityFromSpec(w, "odd", prefabs.EntityBuildSpec{Components: map[string]any{
		"actor":   map[string]any{"category": "player"},
		"jetpack": map[string]any{},
	}}, 0, 0)
	assert.ErrorContains(t, err, `no builder for component "jetpack"`)
	assert.Len(t, ecs.Entities(w), before, "failed builds leave nothing behind")

	_, err = BuildEntityFromSpec(w, "bad", prefabs.EntityBuildSpec{Components: map[string]any{
		"stress": map[string]any{"death_at": 100, "guaranteed_death_at": 50},
	}}, 0, 0)
	assert.ErrorContains(t, err, `add "stress"`)

	_, err = BuildEntityFromSpec(w, "bad", prefabs.EntityBuildSpec{Components: map[string]any{
		"controller": map[string]any{"source": "telepathy"},
	}}, 0, 0)
	assert.ErrorContains(t, err, "unknown intent source")
}

func TestPhysicsBodyLayerFollowsCategory(t *testing.T) {
	w := newWorld()
	e, err := BuildEntityFromSpec(w, "inline", prefabs.EntityBuildSpec{Components: map[string]any{
		"actor":        map[string]any{"category": "hazard"},
		"physics_body": map[string]any{"width": 0.5, "height": 0.5},
	}}, 0, 0)
	require.NoError(t, err)

	hit, ok := w.PhysicsWorld().Raycast(cp.Vector{X: -2, Y: 0}, cp.Vector{X: 1, Y: 0}, 5, ecs.LayerHazard)
	require.True(t, ok)
	assert.Equal(t, e, hit.Entity)

	_, ok = w.PhysicsWorld().Raycast(cp.Vector{X: -2, Y: 0}, cp.Vector{X: 1, Y: 0}, 5, ecs.LayerActor)
	assert.False(t, ok)
}

func TestBuildArena(t *testing.T) {
	w := newWorld()
	spec, err := prefabs.LoadArenaSpec("")
	require.NoError(t, err)

	arena, err := BuildArena(w, *spec)
	require.NoError(t, err)
	assert.Len(t, arena.Solids, len(spec.Solids))
	assert.Len(t, arena.KillZones, len(spec.KillZones))
	assert.Len(t, arena.HideZones, len(spec.HideZones))
	assert.Len(t, arena.Collectibles, len(spec.Collectibles))
	require.Len(t, arena.Actors, len(spec.Spawns))
	assert.Equal(t, arena.Actors[0], arena.Player)

	for _, e := range arena.Solids {
		assert.True(t, ecs.Has(w, e, component.SolidComponent.Kind()))
		assert.True(t, ecs.Has(w, e, component.StaticBoxComponent.Kind()))
	}
	for _, e := range arena.KillZones {
		assert.True(t, ecs.Has(w, e, component.KillZoneComponent.Kind()))
	}

	patrol, ok := ecs.Get(w, arena.Actors[1], component.PatrolComponent.Kind())
	require.True(t, ok)
	require.Len(t, patrol.Waypoints, 3)
	assert.Equal(t, 14.0, patrol.Waypoints[0].X)

	stalker, ok := ecs.Get(w, arena.Actors[2], component.PatrolComponent.Kind())
	require.True(t, ok)
	assert.True(t, stalker.PingPong)
}

func TestBuildArenaRejectsDegenerateBoxes(t *testing.T) {
	w := newWorld()
	_, err := BuildArena(w, prefabs.ArenaSpec{Name: "broken", Solids: []prefabs.BoxSpec{{Width: 0, Height: 1}}})
	assert.ErrorContains(t, err, `build arena "broken": solid 0`)

	_, err = BuildArena(ecs.NewWorld(), prefabs.ArenaSpec{})
	assert.Error(t, err)
}

func TestBuildCollectibleDefaults(t *testing.T) {
	w := newWorld()
	e, err := BuildCollectible(w, prefabs.CollectibleSpawnSpec{Kind: "coin", X: 1, Y: 1})
	require.NoError(t, err)
	box, ok := ecs.Get(w, e, component.StaticBoxComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, defaultCollectibleSize, box.Width)

	_, err = BuildCollectible(w, prefabs.CollectibleSpawnSpec{})
	assert.Error(t, err)
}

func TestBuildDishPrefab(t *testing.T) {
	w := newWorld()
	e, err := BuildEntity(w, "dish.yaml", 0, 0)
	require.NoError(t, err)

	dish, ok := ecs.Get(w, e, component.DishThrowComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 8.0, dish.Speed)
	assert.Equal(t, 120.0, dish.Stress)
	assert.Equal(t, 0.5, dish.FadeDuration)
	assert.False(t, dish.Launched)
	assert.Equal(t, 0.0, w.PhysicsWorld().GravityScale(e))
	assert.False(t, ecs.Has(w, e, component.ActorComponent.Kind()))

	hit, ok := w.PhysicsWorld().Raycast(cp.Vector{X: -2, Y: 0}, cp.Vector{X: 1, Y: 0}, 5, ecs.LayerHazard)
	require.True(t, ok, "dish sits on the hazard layer")
	assert.Equal(t, e, hit.Entity)
}

func TestBuildDishThrowDefaults(t *testing.T) {
	w := newWorld()
	e, err := BuildEntityFromSpec(w, "inline", prefabs.EntityBuildSpec{Components: map[string]any{
		"physics_body": map[string]any{"width": 0.3, "height": 0.15},
		"dish_throw":   nil,
	}}, 0, 0)
	require.NoError(t, err)
	dish, ok := ecs.Get(w, e, component.DishThrowComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.DishThrow{Speed: 8, Stress: 120, FadeDuration: 0.5, DirX: 1}, *dish)

	_, err = BuildEntityFromSpec(w, "inline", prefabs.EntityBuildSpec{Components: map[string]any{
		"physics_body": map[string]any{"width": 0.3, "height": 0.15, "layer": "ground"},
	}}, 0, 0)
	assert.ErrorContains(t, err, `unknown physics body layer "ground"`)
}

func TestBuildArenaDishTriggers(t *testing.T) {
	w := newWorld()
	spec, err := prefabs.LoadArenaSpec("")
	require.NoError(t, err)
	arena, err := BuildArena(w, *spec)
	require.NoError(t, err)
	require.Len(t, arena.DishTriggers, 2)

	thrower, ok := ecs.Get(w, arena.DishTriggers[0], component.DishTriggerComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.DishSpawnAndLaunch, thrower.Mode)
	assert.Equal(t, component.CategoryPlayer, thrower.Filter)
	assert.Equal(t, "dish.yaml", thrower.Prefab)
	assert.Equal(t, 12.5, thrower.SpawnX)
	assert.True(t, thrower.TowardEnterer)
	assert.True(t, thrower.Once)
	assert.Equal(t, uint64(arena.DishTriggers[1]), thrower.BreakZone)

	assert.True(t, ecs.Has(w, arena.DishTriggers[1], component.DishBreakComponent.Kind()))
	assert.False(t, ecs.Has(w, arena.DishTriggers[0], component.DishBreakComponent.Kind()))
}

func TestBuildDishTriggerValidation(t *testing.T) {
	w := newWorld()
	box := prefabs.BoxSpec{Width: 1, Height: 1}
	two := 2

	_, err := BuildDishTrigger(w, prefabs.DishTriggerSpawnSpec{Box: box}, nil)
	assert.ErrorContains(t, err, "needs a prefab")

	_, err = BuildDishTrigger(w, prefabs.DishTriggerSpawnSpec{Box: box, Mode: "existing", Dish: &two}, nil)
	assert.ErrorContains(t, err, "dish index")

	_, err = BuildDishTrigger(w, prefabs.DishTriggerSpawnSpec{Box: box, Mode: "juggle"}, nil)
	assert.ErrorContains(t, err, "unknown dish trigger mode")

	_, err = BuildDishTrigger(w, prefabs.DishTriggerSpawnSpec{Box: box, Prefab: "dish.yaml", Filter: "ghost"}, nil)
	assert.ErrorContains(t, err, "unknown trigger filter")

	dish, err := BuildEntity(w, "dish.yaml", 3, 0)
	require.NoError(t, err)
	zero := 0
	no := false
	e, err := BuildDishTrigger(w, prefabs.DishTriggerSpawnSpec{
		Box: box, Mode: "existing", Dish: &zero, Filter: "any", TowardEnterer: &no,
		Direction: &prefabs.PointSpec{X: -1}, Facing: -1, Once: &no,
	}, []ecs.Entity{dish})
	require.NoError(t, err)
	tr, ok := ecs.Get(w, e, component.DishTriggerComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, uint64(dish), tr.Dish)
	assert.Equal(t, component.CategoryNone, tr.Filter)
	assert.False(t, tr.TowardEnterer)
	assert.False(t, tr.Once)
	assert.Equal(t, -1.0, tr.DirX)
	assert.Equal(t, -1.0, tr.Facing)
}
