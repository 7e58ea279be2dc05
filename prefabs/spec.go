package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// TuningSpec holds the simulation-wide constants.
type TuningSpec struct {
	FixedDt       float64 `yaml:"fixed_dt"`
	MaxFixedSteps int     `yaml:"max_fixed_steps"`
	Gravity       float64 `yaml:"gravity"`
	Iterations    int     `yaml:"iterations"`
	GroundRadius  float64 `yaml:"ground_radius"`
	Seed          uint64  `yaml:"seed"`
	Arena         string  `yaml:"arena"`
}

const (
	defaultFixedDt       = 0.02
	defaultMaxFixedSteps = 5
	defaultGravity       = -30
	defaultIterations    = 10
)

// WithDefaults fills unset fields.
func (t TuningSpec) WithDefaults() TuningSpec {
	if t.FixedDt <= 0 {
		t.FixedDt = defaultFixedDt
	}
	if t.MaxFixedSteps <= 0 {
		t.MaxFixedSteps = defaultMaxFixedSteps
	}
	if t.Gravity == 0 {
		t.Gravity = defaultGravity
	}
	if t.Iterations <= 0 {
		t.Iterations = defaultIterations
	}
	return t
}

func LoadTuningSpec() (*TuningSpec, error) {
	spec, err := LoadSpec[TuningSpec]("tuning.yaml")
	if err != nil {
		return nil, err
	}
	spec = spec.WithDefaults()
	return &spec, nil
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BoxSpec is an axis-aligned box given by its centre and size.
type BoxSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SpawnSpec places an entity prefab. Patrol, when present, replaces the
// prefab's route.
type SpawnSpec struct {
	Prefab string               `yaml:"prefab"`
	X      float64              `yaml:"x"`
	Y      float64              `yaml:"y"`
	Patrol *PatrolComponentSpec `yaml:"patrol"`
}

type CollectibleSpawnSpec struct {
	Kind   string  `yaml:"kind"`
	Value  int     `yaml:"value"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DishTriggerSpawnSpec is a sensor box that throws a dish. Dish indexes the
// arena's placed dishes for mode "existing"; BreakZone indexes the arena's
// dish triggers and names the zone that breaks the thrown dish.
type DishTriggerSpawnSpec struct {
	Box           BoxSpec    `yaml:",inline"`
	Mode          string     `yaml:"mode"`
	Filter        string     `yaml:"filter"`
	Prefab        string     `yaml:"prefab"`
	Spawn         *PointSpec `yaml:"spawn"`
	Dish          *int       `yaml:"dish"`
	BreakZone     *int       `yaml:"break_zone"`
	TowardEnterer *bool      `yaml:"toward_enterer"`
	Direction     *PointSpec `yaml:"direction"`
	Facing        float64    `yaml:"facing"`
	Delay         float64    `yaml:"delay"`
	Once          *bool      `yaml:"once"`
}

// ArenaSpec is a test arena: solid boxes, sensor zones and spawns.
type ArenaSpec struct {
	Name         string                 `yaml:"name"`
	Solids       []BoxSpec              `yaml:"solids"`
	KillZones    []BoxSpec              `yaml:"kill_zones"`
	HideZones    []BoxSpec              `yaml:"hide_zones"`
	Collectibles []CollectibleSpawnSpec `yaml:"collectibles"`
	Dishes       []SpawnSpec            `yaml:"dishes"`
	DishTriggers []DishTriggerSpawnSpec `yaml:"dish_triggers"`
	Spawns       []SpawnSpec            `yaml:"spawns"`
}

func LoadArenaSpec(filename string) (*ArenaSpec, error) {
	if filename == "" {
		filename = "arena.yaml"
	}
	spec, err := LoadSpec[ArenaSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// InputStepSpec holds one input pattern for Frames frame ticks. Pressed
// edges fire on the first frame of the step only.
type InputStepSpec struct {
	Frames int     `yaml:"frames"`
	MoveX  float64 `yaml:"move_x"`
	MoveY  float64 `yaml:"move_y"`
	Jump   bool    `yaml:"jump"`
	Run    bool    `yaml:"run"`
	Crouch bool    `yaml:"crouch"`
	Dash   bool    `yaml:"dash"`
	Up     bool    `yaml:"up"`
}

type InputScriptSpec struct {
	Name  string          `yaml:"name"`
	Loop  bool            `yaml:"loop"`
	Steps []InputStepSpec `yaml:"steps"`
}

func LoadInputScriptSpec(filename string) (*InputScriptSpec, error) {
	spec, err := LoadSpec[InputScriptSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG colour name.
type YAMLColor struct {
	color.NRGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(value.Value))]; ok {
		c.NRGBA = color.NRGBA(named)
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.NRGBA = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
