package component

type PowerKind string

const (
	PowerDash PowerKind = "dash"
)

// Powers is the set of abilities an actor has unlocked.
type Powers struct {
	Unlocked map[PowerKind]bool
}

func (p *Powers) Has(kind PowerKind) bool {
	return p != nil && p.Unlocked[kind]
}

func (p *Powers) Unlock(kind PowerKind) {
	if p == nil {
		return
	}
	if p.Unlocked == nil {
		p.Unlocked = make(map[PowerKind]bool)
	}
	p.Unlocked[kind] = true
}

var PowersComponent = NewComponent[Powers]()

// Dash is a timed impulse along the facing direction.
type Dash struct {
	Force    float64
	Duration float64
	Task     TaskRef
}

var DashComponent = NewComponent[Dash]()
