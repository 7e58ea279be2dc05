package component

import "github.com/jakecoffman/cp"

// AI marks an actor driven by the AI decision layer. Script names an
// optional tengo behaviour that may override patrol and sight.
type AI struct {
	Script string
}

var AIComponent = NewComponent[AI]()

// Patrol is an ordered waypoint route. Dir is +1 or -1 and only matters
// when PingPong is set.
type Patrol struct {
	Waypoints      []cp.Vector
	Index          int
	Dir            int
	PingPong       bool
	ArriveDistance float64
}

var PatrolComponent = NewComponent[Patrol]()

// Sight scans for targets within Radius each frame tick. A non-none
// Filter restricts targets to that category.
type Sight struct {
	Radius float64
	Filter Category

	Target    uint64
	HasTarget bool
}

var SightComponent = NewComponent[Sight]()
