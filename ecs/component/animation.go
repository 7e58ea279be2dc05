package component

// Parameter names written by the simulation.
const (
	ParamVelocity   = "Velocity"
	ParamGrounded   = "Grounded"
	ParamAirborne   = "Airborne"
	ParamJumping    = "Jumping"
	ParamRunning    = "Running"
	ParamCrouching  = "Crouching"
	ParamWallGrab   = "WallGrab"
	ParamLedgeHang  = "LedgeHang"
	ParamLedgeClimb = "LedgeClimb"
)

// ParameterSink receives named animation parameter writes.
type ParameterSink interface {
	SetParameter(name string, value any)
}

// Animation records the latest value of each parameter and forwards writes
// to an optional external sink.
type Animation struct {
	Params map[string]any
	Sink   ParameterSink
}

var AnimationComponent = NewComponent[Animation]()

func (a *Animation) SetParameter(name string, value any) {
	if a == nil {
		return
	}
	if a.Params == nil {
		a.Params = make(map[string]any)
	}
	a.Params[name] = value
	if a.Sink != nil {
		a.Sink.SetParameter(name, value)
	}
}

func (a *Animation) Bool(name string) bool {
	if a == nil {
		return false
	}
	v, _ := a.Params[name].(bool)
	return v
}

func (a *Animation) Float(name string) float64 {
	if a == nil {
		return 0
	}
	v, _ := a.Params[name].(float64)
	return v
}
