package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and the box collider
// configuration of a dynamic actor. Body position is the collider centre of
// the standing box; OffsetY shifts the live box (crouching keeps the feet in
// place).
type PhysicsBody struct {
	Body    *cp.Body
	Shape   *cp.Shape
	Width   float64
	Height  float64
	OffsetY float64
	Mass    float64

	StandHeight float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// Center returns the world centre of the live collider.
func (p *PhysicsBody) Center() cp.Vector {
	if p == nil || p.Body == nil {
		return cp.Vector{}
	}
	pos := p.Body.Position()
	return cp.Vector{X: pos.X, Y: pos.Y + p.OffsetY}
}

// Extents returns the half size of the live collider.
func (p *PhysicsBody) Extents() cp.Vector {
	if p == nil {
		return cp.Vector{}
	}
	return cp.Vector{X: p.Width / 2, Y: p.Height / 2}
}

// Feet is the bottom centre of the live collider.
func (p *PhysicsBody) Feet() cp.Vector {
	c := p.Center()
	return cp.Vector{X: c.X, Y: c.Y - p.Height/2}
}

// Top is the y of the upper edge of the live collider.
func (p *PhysicsBody) Top() float64 {
	return p.Center().Y + p.Height/2
}

// GravityScale scales world gravity for a dynamic physics body.
// 1.0 = normal gravity, 0.0 = no gravity.
type GravityScale struct {
	Scale float64
}

var GravityScaleComponent = NewComponent[GravityScale]()

// StaticBox is an immovable axis-aligned box: ground, walls and zones.
type StaticBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

var StaticBoxComponent = NewComponent[StaticBox]()

// Solid marks a StaticBox that blocks movement.
type Solid struct{}

var SolidComponent = NewComponent[Solid]()
