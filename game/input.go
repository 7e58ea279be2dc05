package game

import (
	"github.com/milk9111/platformcore/ecs/system"
	"github.com/milk9111/platformcore/prefabs"
)

// InputFunc adapts a function to system.InputSource.
type InputFunc func() system.InputFrame

func (f InputFunc) Sample() system.InputFrame {
	return f()
}

// ScriptedInput replays an input timeline one step at a time. Each step
// holds its levels for all of its frames; press edges fire on the first
// frame only.
type ScriptedInput struct {
	steps []prefabs.InputStepSpec
	loop  bool
	step  int
	frame int
}

func NewScriptedInput(spec *prefabs.InputScriptSpec) *ScriptedInput {
	if spec == nil {
		return &ScriptedInput{}
	}
	return &ScriptedInput{steps: spec.Steps, loop: spec.Loop}
}

// LoadScriptedInput reads an input timeline spec.
func LoadScriptedInput(filename string) (*ScriptedInput, error) {
	spec, err := prefabs.LoadInputScriptSpec(filename)
	if err != nil {
		return nil, err
	}
	return NewScriptedInput(spec), nil
}

func (s *ScriptedInput) Sample() system.InputFrame {
	if s.Done() {
		return system.InputFrame{}
	}
	st := s.steps[s.step]
	first := s.frame == 0
	out := system.InputFrame{
		MoveX:       st.MoveX,
		MoveY:       st.MoveY,
		JumpPressed: st.Jump && first,
		JumpHeld:    st.Jump,
		RunHeld:     st.Run,
		CrouchHeld:  st.Crouch,
		DashPressed: st.Dash && first,
		UpPressed:   st.Up && first,
	}

	s.frame++
	if s.frame >= max(1, st.Frames) {
		s.frame = 0
		s.step++
		if s.step >= len(s.steps) && s.loop {
			s.step = 0
		}
	}
	return out
}

// Done reports whether a non-looping timeline has run out.
func (s *ScriptedInput) Done() bool {
	return s.step >= len(s.steps)
}

// Frames is the length of one pass through the timeline.
func (s *ScriptedInput) Frames() int {
	n := 0
	for _, st := range s.steps {
		n += max(1, st.Frames)
	}
	return n
}
