package system

import (
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// InputFrame is one frame-tick sample of the player's controls. Pressed
// fields are edges since the previous sample; the rest are levels.
type InputFrame struct {
	MoveX float64
	MoveY float64

	JumpPressed bool
	JumpHeld    bool
	RunHeld     bool
	CrouchHeld  bool
	DashPressed bool
	UpPressed   bool
}

// InputSource delivers one InputFrame per frame tick.
type InputSource interface {
	Sample() InputFrame
}

// InputSystem samples the input source once per frame tick and queues the
// result for every player-controlled actor.
type InputSystem struct {
	source InputSource
}

func NewInputSystem(source InputSource) *InputSystem {
	return &InputSystem{source: source}
}

// SetSource swaps the input source, e.g. when a viewer takes over from a
// scripted timeline.
func (s *InputSystem) SetSource(source InputSource) {
	s.source = source
}

func (s *InputSystem) Update(w *ecs.World, dt float64) {
	if s.source == nil {
		return
	}
	frame := s.source.Sample()
	intent := component.Intent{
		MoveX:       common.Clamp(frame.MoveX, -1, 1),
		MoveY:       common.Clamp(frame.MoveY, -1, 1),
		JumpPressed: frame.JumpPressed,
		JumpHeld:    frame.JumpHeld || frame.JumpPressed,
		RunHeld:     frame.RunHeld,
		CrouchHeld:  frame.CrouchHeld,
		DashPressed: frame.DashPressed,
		UpPressed:   frame.UpPressed,
	}
	ecs.ForEach2(w, component.ControllerComponent.Kind(), component.PendingIntentComponent.Kind(), func(e ecs.Entity, ctrl *component.Controller, pending *component.PendingIntent) {
		if ctrl.Source == component.IntentSourcePlayer {
			pending.Queue(intent)
		}
	})
}
