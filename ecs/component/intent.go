package component

// IntentSource selects which decision layer feeds an actor.
type IntentSource int

const (
	IntentSourceNone IntentSource = iota
	IntentSourcePlayer
	IntentSourceAI
)

// Controller binds an actor to exactly one intent source.
type Controller struct {
	Source IntentSource
}

var ControllerComponent = NewComponent[Controller]()

// Intent is the movement intent applied during one fixed tick. Pressed
// fields are edges; Held fields are levels.
type Intent struct {
	MoveX float64
	MoveY float64

	JumpPressed bool
	JumpHeld    bool
	RunHeld     bool
	CrouchHeld  bool
	DashPressed bool
	UpPressed   bool
}

var IntentComponent = NewComponent[Intent]()

// PendingIntent is written at frame rate and consumed by the next fixed
// tick. Edges accumulate until consumed so no press is lost between ticks.
type PendingIntent struct {
	Intent Intent
	Fresh  bool
}

var PendingIntentComponent = NewComponent[PendingIntent]()

// Queue merges next into the pending intent: levels are replaced, edges
// are or-ed.
func (p *PendingIntent) Queue(next Intent) {
	if p == nil {
		return
	}
	prev := p.Intent
	p.Intent = next
	if p.Fresh {
		p.Intent.JumpPressed = p.Intent.JumpPressed || prev.JumpPressed
		p.Intent.DashPressed = p.Intent.DashPressed || prev.DashPressed
		p.Intent.UpPressed = p.Intent.UpPressed || prev.UpPressed
	}
	p.Fresh = true
}

// Take returns the pending intent and clears its edges; levels persist so
// consecutive fixed ticks inside one frame keep moving.
func (p *PendingIntent) Take() Intent {
	if p == nil {
		return Intent{}
	}
	out := p.Intent
	p.Intent.JumpPressed = false
	p.Intent.DashPressed = false
	p.Intent.UpPressed = false
	p.Fresh = false
	return out
}
