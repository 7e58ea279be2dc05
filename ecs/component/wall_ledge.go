package component

import "github.com/go-gl/mathgl/mgl64"

type WallLedgeState int

const (
	// WallLedgeFree covers both grounded and falling.
	WallLedgeFree WallLedgeState = iota
	WallLedgeGrab
	WallLedgeHanging
	WallLedgeClimbing
)

func (s WallLedgeState) String() string {
	switch s {
	case WallLedgeGrab:
		return "wall_grab"
	case WallLedgeHanging:
		return "hanging"
	case WallLedgeClimbing:
		return "climbing"
	default:
		return "free"
	}
}

type WallLedgeParams struct {
	WallCheckDistance float64
	GrabHoldTime      float64
	ReleaseCooldown   float64

	WallJumpX     float64
	WallJumpY     float64
	WallJumpNudge float64

	// LedgeProbeHeight is how far above the corner the downward ledge ray
	// starts; LedgeProbeDepth is how far it travels.
	LedgeProbeHeight float64
	LedgeProbeDepth  float64
	LedgeMargin      float64
	HangOffsetX      float64
	HangOffsetY      float64

	ClimbHoldTime float64
	ClimbDuration float64
	ClimbOffsetY  float64
}

// WallLedge is the per-actor state of the wall/ledge machine.
type WallLedge struct {
	State   WallLedgeState
	CanGrab bool
	// Cooldown counts down once per fixed tick; CanGrab returns when it
	// reaches zero.
	Cooldown  float64
	HoldTimer float64
	ClimbHold float64

	// WallSide is +1 when the wall is to the right.
	WallSide float64
	// WallGap is the distance between the collider edge and the wall at
	// grab entry.
	WallGap float64

	Anchor      mgl64.Vec3
	ClimbFrom   mgl64.Vec3
	ClimbTarget mgl64.Vec3
	ClimbTask   TaskRef
}

var WallLedgeParamsComponent = NewComponent[WallLedgeParams]()
var WallLedgeComponent = NewComponent[WallLedge]()
