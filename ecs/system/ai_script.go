package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/platformcore/ecs"
)

// Perception is what an AI behaviour sees on one frame tick.
type Perception struct {
	Entity ecs.Entity
	Script string

	X, Y     float64
	VX, VY   float64
	Facing   float64
	Grounded bool
	Stress   float64

	HasTarget        bool
	TargetX, TargetY float64

	HasPatrol     bool
	PatrolTargetX float64
	PatrolTargetY float64
}

// Decision is the intent a behaviour asks for. Handled false means the
// default sight and patrol logic decides instead.
type Decision struct {
	Handled bool
	MoveX   float64
	Jump    bool
}

// Behavior is a custom decision override for AI actors.
type Behavior interface {
	Decide(in Perception) (Decision, error)
}

// ScriptLoader returns the source of a named script.
type ScriptLoader func(path string) ([]byte, error)

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// decideDispatchScript is appended to every behaviour script; scripts define
// decide(self, target, state) and return a map.
const decideDispatchScript = `
__result := decide(__self, __target, __state)
`

// scriptDeadline bounds a single decide call. A script that loops past it
// is aborted and the entity falls back to patrol for that tick.
const scriptDeadline = 20 * time.Millisecond

// ScriptBehavior runs tengo scripts as AI behaviours. Each entity gets its
// own clone of the compiled script and a persistent state map.
type ScriptBehavior struct {
	load     ScriptLoader
	logger   *log.Logger
	compiled map[string]*tengo.Compiled
	failed   map[string]error
	runtimes map[ecs.Entity]*scriptRuntime
	deadline time.Duration
}

func NewScriptBehavior(load ScriptLoader, logger *log.Logger) *ScriptBehavior {
	return &ScriptBehavior{
		load:     load,
		logger:   systemLogger(logger, "ai_script"),
		compiled: map[string]*tengo.Compiled{},
		failed:   map[string]error{},
		runtimes: map[ecs.Entity]*scriptRuntime{},
		deadline: scriptDeadline,
	}
}

// Decide runs the entity's script. Compile errors, runtime errors and
// panics all come back as an error with an unhandled decision.
func (b *ScriptBehavior) Decide(in Perception) (dec Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec = Decision{}
			err = fmt.Errorf("ai script %q panicked: %v", in.Script, r)
		}
	}()

	rt, err := b.runtime(in.Entity, in.Script)
	if err != nil {
		return Decision{}, err
	}
	if err := rt.compiled.Set("__self", perceptionSelf(in)); err != nil {
		return Decision{}, err
	}
	if err := rt.compiled.Set("__target", perceptionTarget(in)); err != nil {
		return Decision{}, err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return Decision{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.deadline)
	defer cancel()
	if err := rt.compiled.RunContext(ctx); err != nil {
		return Decision{}, fmt.Errorf("ai script %q: %w", in.Script, err)
	}
	return decisionFromObject(rt.compiled.Get("__result").Object())
}

// Forget drops the runtime of a despawned entity.
func (b *ScriptBehavior) Forget(e ecs.Entity) {
	delete(b.runtimes, e)
}

// Reload drops the compiled copy of path, or its cached failure; entities
// running it recompile with fresh state on their next decision.
func (b *ScriptBehavior) Reload(path string) {
	path = strings.TrimSpace(path)
	delete(b.compiled, path)
	delete(b.failed, path)
	for e, rt := range b.runtimes {
		if rt.path == path {
			delete(b.runtimes, e)
		}
	}
	b.logger.Info("script reloaded", "path", path)
}

func (b *ScriptBehavior) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ai script: empty path")
	}
	if rt, ok := b.runtimes[e]; ok && rt.path == path {
		return rt, nil
	}

	if err, ok := b.failed[path]; ok {
		return nil, err
	}
	base, ok := b.compiled[path]
	if !ok {
		var err error
		base, err = b.compile(path)
		if err != nil {
			b.failed[path] = err
			b.logger.Warn("script failed to load", "path", path, "err", err)
			return nil, err
		}
		b.compiled[path] = base
		b.logger.Debug("script compiled", "path", path)
	}

	rt := &scriptRuntime{
		path:     path,
		compiled: base.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	b.runtimes[e] = rt
	return rt, nil
}

func (b *ScriptBehavior) compile(path string) (*tengo.Compiled, error) {
	if b.load == nil {
		return nil, fmt.Errorf("ai script %q: no loader", path)
	}
	src, err := b.load(path)
	if err != nil {
		return nil, err
	}
	script := tengo.NewScript([]byte(string(src) + "\n" + decideDispatchScript))
	_ = script.Add("__self", map[string]any{})
	_ = script.Add("__target", nil)
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("ai script %q: %w", path, err)
	}
	return compiled, nil
}

func perceptionSelf(in Perception) map[string]any {
	self := map[string]any{
		"entity":   int64(in.Entity),
		"x":        in.X,
		"y":        in.Y,
		"vx":       in.VX,
		"vy":       in.VY,
		"facing":   in.Facing,
		"grounded": in.Grounded,
		"stress":   in.Stress,
	}
	if in.HasPatrol {
		self["patrol_x"] = in.PatrolTargetX
		self["patrol_y"] = in.PatrolTargetY
	}
	return self
}

func perceptionTarget(in Perception) any {
	if !in.HasTarget {
		return nil
	}
	return map[string]any{"x": in.TargetX, "y": in.TargetY}
}

func decisionFromObject(obj tengo.Object) (Decision, error) {
	raw, ok := objectToAny(obj).(map[string]any)
	if !ok {
		return Decision{}, nil
	}
	dec := Decision{}
	dec.Handled, _ = raw["handled"].(bool)
	switch v := raw["move_x"].(type) {
	case float64:
		dec.MoveX = v
	case int:
		dec.MoveX = float64(v)
	}
	if dec.MoveX > 1 {
		dec.MoveX = 1
	} else if dec.MoveX < -1 {
		dec.MoveX = -1
	}
	dec.Jump, _ = raw["jump"].(bool)
	return dec, nil
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
