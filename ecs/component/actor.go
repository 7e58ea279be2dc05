package component

// Category classifies an actor for targeting and contact routing.
type Category int

const (
	CategoryNone Category = iota
	CategoryPlayer
	CategoryHazard
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryHazard:
		return "hazard"
	default:
		return "none"
	}
}

// ParseCategory maps a prefab string to a Category. Unknown names map to
// CategoryNone.
func ParseCategory(s string) Category {
	switch s {
	case "player":
		return CategoryPlayer
	case "hazard":
		return CategoryHazard
	default:
		return CategoryNone
	}
}

// Actor holds the locomotion flags shared by the player and AI actors.
// At most one of WallGrabbing, Hanging and Dashing is set; Grounded clears
// all three.
type Actor struct {
	Category Category
	// Facing is +1 (right) or -1 (left).
	Facing float64

	Grounded     bool
	Jumping      bool
	Crouching    bool
	Running      bool
	Dashing      bool
	WallGrabbing bool
	Hanging      bool
	Hidden       bool
	Dead         bool
}

var ActorComponent = NewComponent[Actor]()

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()
