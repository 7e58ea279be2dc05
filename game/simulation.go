package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/ecs/entity"
	"github.com/milk9111/platformcore/ecs/system"
	"github.com/milk9111/platformcore/prefabs"
)

// accumulatorSlack absorbs float drift when the accumulator lands a hair
// under a whole fixed step.
const accumulatorSlack = 1e-9

// DeathSink is the scene-lifecycle hook notified of every death.
type DeathSink interface {
	OnDeath(evt ecs.DeathEvent)
}

// DeathSinkFunc adapts a function to DeathSink.
type DeathSinkFunc func(evt ecs.DeathEvent)

func (f DeathSinkFunc) OnDeath(evt ecs.DeathEvent) {
	f(evt)
}

// Stats counts what happened since the simulation started. Dishes counts
// broken dishes and DishHits the ones that broke on a player.
type Stats struct {
	FixedTicks uint64
	FrameTicks uint64
	Deaths     int
	Stomps     int
	Hides      int
	Dishes     int
	DishHits   int
	Collected  map[string]int
}

type Option func(*Simulation)

func WithLogger(logger *log.Logger) Option {
	return func(s *Simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInput(source system.InputSource) Option {
	return func(s *Simulation) { s.source = source }
}

func WithDeathSink(sink DeathSink) Option {
	return func(s *Simulation) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithSampler replaces the seeded PCG source used for death rolls.
func WithSampler(rng system.Sampler) Option {
	return func(s *Simulation) { s.rng = rng }
}

func WithScriptLoader(load system.ScriptLoader) Option {
	return func(s *Simulation) { s.loadScript = load }
}

// Simulation owns one world and drives its fixed and frame ticks.
type Simulation struct {
	cfg    Config
	logger *log.Logger

	world    *ecs.World
	physics  *ecs.PhysicsWorld
	registry *ecs.Registry
	fixed    *ecs.Scheduler
	frame    *ecs.Scheduler

	source     system.InputSource
	input      *system.InputSystem
	ground     *system.GroundSystem
	scripts    *system.ScriptBehavior
	loadScript system.ScriptLoader
	rng        system.Sampler
	sinks      []DeathSink

	accumulator float64
	stats       Stats
	player      ecs.Entity
}

func New(cfg Config, opts ...Option) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{
		cfg:        cfg,
		logger:     log.Default().WithPrefix("sim"),
		registry:   ecs.NewRegistry(),
		loadScript: prefabs.LoadScript,
		stats:      Stats{Collected: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}

	s.world = ecs.NewWorld()
	s.physics = ecs.NewPhysicsWorld(cfg.Gravity, cfg.Iterations, s.logger)
	s.world.SetPhysicsWorld(s.physics)

	death := system.NewDeathSystem(s.registry, s.logger)
	stress := system.NewStressSystem(s.rng, death, s.logger)
	hide := system.NewHideSystem(s.registry, s.logger)
	s.ground = system.NewGroundSystem(cfg.GroundRadius, s.logger)
	s.scripts = system.NewScriptBehavior(s.loadScript, s.logger)
	s.input = system.NewInputSystem(s.source)

	dishes := system.NewDishSystem(stress, s.spawnDish, s.logger)
	physics := system.NewPhysicsSystem(s.logger,
		system.NewEncounterSystem(stress, s.logger),
		system.NewKillZoneSystem(death),
		hide,
		system.NewPickupSystem(s.logger),
		dishes,
	)

	s.fixed = ecs.NewScheduler(
		ecs.SystemFunc(s.commit),
		ecs.SystemFunc(func(w *ecs.World, dt float64) { w.FixedTasks().Advance(dt) }),
		system.NewIntentSystem(),
		hide,
		s.ground,
		system.NewPostureSystem(s.logger),
		system.NewWallLedgeSystem(s.logger),
		system.NewPowerSystem(system.NewDashPower(s.logger)),
		system.NewMovementSystem(s.logger),
		dishes,
		physics,
	)
	s.frame = ecs.NewScheduler(
		ecs.SystemFunc(s.commit),
		s.input,
		system.NewAISystem(s.registry, s.scripts, s.logger),
		stress,
		ecs.SystemFunc(func(w *ecs.World, dt float64) { w.FrameTasks().Advance(dt) }),
		system.NewFeedbackSystem(),
		system.NewAnimationSystem(),
		system.NewTTLSystem(),
	)

	s.logger.Debug("simulation ready", "fixed_dt", cfg.FixedDt, "gravity", cfg.Gravity, "seed", cfg.Seed)
	return s
}

// NewFromArena builds a simulation and loads the arena into it.
func NewFromArena(cfg Config, arena prefabs.ArenaSpec, opts ...Option) (*Simulation, error) {
	s := New(cfg, opts...)
	if _, err := s.LoadArena(arena); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) commit(w *ecs.World, dt float64) {
	s.registry.Commit()
}

// LoadArena builds the arena and registers its AI actors. Registration
// takes effect at the next tick boundary.
func (s *Simulation) LoadArena(spec prefabs.ArenaSpec) (*entity.Arena, error) {
	arena, err := entity.BuildArena(s.world, spec)
	if err != nil {
		return nil, err
	}
	for _, e := range arena.Actors {
		s.track(e)
	}
	s.logger.Info("arena loaded", "name", spec.Name, "solids", len(arena.Solids), "actors", len(arena.Actors))
	return arena, nil
}

// Spawn builds a prefab at (x, y).
func (s *Simulation) Spawn(prefab string, x, y float64) (ecs.Entity, error) {
	e, err := entity.BuildEntity(s.world, prefab, x, y)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", prefab, err)
	}
	s.track(e)
	return e, nil
}

func (s *Simulation) spawnDish(w *ecs.World, prefab string, x, y float64) (ecs.Entity, error) {
	e, err := entity.BuildEntity(w, prefab, x, y)
	if err != nil {
		return 0, err
	}
	s.track(e)
	return e, nil
}

func (s *Simulation) track(e ecs.Entity) {
	if ecs.Has(s.world, e, component.AIComponent.Kind()) {
		s.registry.Register(e)
	}
	if s.player == 0 && ecs.Has(s.world, e, component.PlayerTagComponent.Kind()) {
		s.player = e
	}
}

// FixedTick runs one fixed step of every physics-coupled system.
func (s *Simulation) FixedTick(dt float64) {
	s.fixed.Update(s.world, dt)
	s.drain()
	s.stats.FixedTicks++
}

// FrameTick runs input, AI, passive stress and feedback for one frame.
func (s *Simulation) FrameTick(dt float64) {
	s.frame.Update(s.world, dt)
	s.drain()
	s.stats.FrameTicks++
}

// Advance runs one frame tick, then as many fixed ticks as the accumulated
// time allows, capped at MaxFixedSteps. Time beyond the cap is dropped. It
// returns the number of fixed ticks run.
func (s *Simulation) Advance(frameDt float64) int {
	if frameDt < 0 {
		frameDt = 0
	}
	s.FrameTick(frameDt)

	s.accumulator += frameDt
	steps := 0
	for s.accumulator+accumulatorSlack >= s.cfg.FixedDt && steps < s.cfg.MaxFixedSteps {
		s.FixedTick(s.cfg.FixedDt)
		s.accumulator -= s.cfg.FixedDt
		steps++
	}
	if s.accumulator+accumulatorSlack >= s.cfg.FixedDt {
		s.logger.Debug("dropping simulation time", "seconds", s.accumulator)
		s.accumulator = 0
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}
	return steps
}

func (s *Simulation) drain() {
	for _, evt := range s.world.Events().Drain() {
		switch evt := evt.(type) {
		case ecs.DeathEvent:
			s.stats.Deaths++
			s.scripts.Forget(evt.Entity)
			for _, sink := range s.sinks {
				sink.OnDeath(evt)
			}
		case ecs.StompEvent:
			s.stats.Stomps++
		case ecs.HideEvent:
			if evt.Hidden {
				s.stats.Hides++
			}
		case ecs.CollectEvent:
			s.stats.Collected[evt.ItemKind]++
		case ecs.DishEvent:
			s.stats.Dishes++
			if evt.Victim != 0 {
				s.stats.DishHits++
			}
		}
	}
}

// ApplyConfig swaps the tunables that can change on a live world. The
// solver iteration count is fixed at construction.
func (s *Simulation) ApplyConfig(cfg Config) {
	cfg = cfg.withDefaults()
	cfg.Iterations = s.cfg.Iterations
	s.cfg = cfg
	s.physics.SetGravity(cfg.Gravity)
	if cfg.GroundRadius > 0 {
		s.ground.Radius = cfg.GroundRadius
	}
	s.logger.Info("tuning applied", "fixed_dt", cfg.FixedDt, "gravity", cfg.Gravity, "ground_radius", s.ground.Radius)
}

// ReloadScript recompiles an AI script on its next use.
func (s *Simulation) ReloadScript(path string) {
	s.scripts.Reload(path)
}

// SetInput swaps the player input source.
func (s *Simulation) SetInput(source system.InputSource) {
	s.source = source
	s.input.SetSource(source)
}

func (s *Simulation) World() *ecs.World {
	return s.world
}

func (s *Simulation) Registry() *ecs.Registry {
	return s.registry
}

func (s *Simulation) Config() Config {
	return s.cfg
}

func (s *Simulation) Logger() *log.Logger {
	return s.logger
}

// Player is the first spawned player entity, or 0.
func (s *Simulation) Player() ecs.Entity {
	return s.player
}

func (s *Simulation) Stats() Stats {
	out := s.stats
	out.Collected = make(map[string]int, len(s.stats.Collected))
	for k, v := range s.stats.Collected {
		out.Collected[k] = v
	}
	return out
}
