package component

// MovementParams are the tunables of the movement controller.
type MovementParams struct {
	WalkSpeed   float64
	RunSpeed    float64
	CrouchSpeed float64
	// Smoothing is the SmoothDamp time constant for horizontal velocity.
	Smoothing float64
	// SpeedScale multiplies intent*speed*fixedDt into a velocity (the
	// original tuning was authored against 10 x fixed step).
	SpeedScale float64

	JumpImpulse      float64
	JumpFlagDuration float64

	// WallProbeDistance gates airborne horizontal intent toward a wall.
	WallProbeDistance float64
	// SlideSpeed is the maximum downward speed while wall grabbing.
	SlideSpeed float64
}

// Movement is per-actor runtime state for the movement controller.
type Movement struct {
	DampVelocity float64
	JumpTask     TaskRef
}

var MovementParamsComponent = NewComponent[MovementParams]()
var MovementComponent = NewComponent[Movement]()

// TaskRef is the cancel handle of a scheduled task stored on a component.
type TaskRef interface {
	Cancel()
	Active() bool
}

// CancelTask cancels t if it is set.
func CancelTask(t TaskRef) {
	if t != nil {
		t.Cancel()
	}
}

// TaskActive reports whether t is set and still pending.
func TaskActive(t TaskRef) bool {
	return t != nil && t.Active()
}
