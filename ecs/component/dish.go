package component

import (
	"fmt"
	"strings"
)

// DishTriggerMode is what a dish trigger zone does when a matching actor
// enters it.
type DishTriggerMode int

const (
	// DishSpawnAndLaunch builds a dish prefab at the spawn point and throws
	// it.
	DishSpawnAndLaunch DishTriggerMode = iota
	// DishLaunchExisting throws a dish already placed in the arena.
	DishLaunchExisting
	// DishBreakZone only breaks dishes that fly into it.
	DishBreakZone
)

func (m DishTriggerMode) String() string {
	switch m {
	case DishSpawnAndLaunch:
		return "spawn"
	case DishLaunchExisting:
		return "existing"
	case DishBreakZone:
		return "break_zone"
	default:
		return "unknown"
	}
}

func ParseDishTriggerMode(s string) (DishTriggerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spawn":
		return DishSpawnAndLaunch, nil
	case "existing":
		return DishLaunchExisting, nil
	case "break_zone":
		return DishBreakZone, nil
	default:
		return 0, fmt.Errorf("unknown dish trigger mode %q", s)
	}
}

// DishTrigger is a sensor zone that throws a dish at whoever walks in.
type DishTrigger struct {
	Mode DishTriggerMode
	// Filter limits who fires the trigger; CategoryNone accepts any actor.
	Filter Category

	Prefab         string
	SpawnX, SpawnY float64
	// Dish is the placed dish thrown in DishLaunchExisting mode.
	Dish uint64
	// BreakZone is handed to the thrown dish as the one zone that breaks it.
	BreakZone uint64

	TowardEnterer bool
	DirX, DirY    float64
	// Facing picks the fallback throw direction when the aim vector is zero.
	Facing float64
	Delay  float64
	Once   bool

	Fired bool
	Task  TaskRef
}

var DishTriggerComponent = NewComponent[DishTrigger]()

// DishThrow is a throwable dish. It hurts the first player it touches after
// launch and breaks on that hit or on reaching a break zone.
type DishThrow struct {
	Speed  float64
	Stress float64
	// FadeDuration is how long a broken dish fades before it is removed.
	FadeDuration float64
	// MaxFlight breaks a dish that is still flying after this many seconds;
	// zero lets it fly until something breaks it.
	MaxFlight float64

	AutoLaunch bool
	DirX, DirY float64

	// BreakZone, when set, is the only zone that breaks the dish. Otherwise
	// any zone tagged DishBreak does.
	BreakZone uint64

	Launched bool
	Broken   bool
	Task     TaskRef
}

var DishThrowComponent = NewComponent[DishThrow]()

// DishBreak tags a sensor zone that breaks dishes flying into it.
type DishBreak struct{}

var DishBreakComponent = NewComponent[DishBreak]()
