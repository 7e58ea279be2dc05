package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

// camera maps y-up world units onto y-down screen pixels.
type camera struct {
	PosX float64
	PosY float64

	screenW int
	screenH int
	// pixels per world unit
	zoom float64
	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
}

func newCamera(screenW, screenH int, zoom float64) *camera {
	return &camera{screenW: screenW, screenH: screenH, zoom: zoom, smooth: 0.15}
}

func (c *camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW = w
	c.screenH = h
}

func (c *camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

func (c *camera) Zoom() float64 {
	return c.zoom
}

// Update moves the camera toward the target world coordinate.
func (c *camera) Update(targetX, targetY float64) {
	if c.smooth <= 0 {
		c.PosX = targetX
		c.PosY = targetY
		return
	}
	c.PosX += (targetX - c.PosX) * c.smooth
	c.PosY += (targetY - c.PosY) * c.smooth
}

// Snap jumps straight to the target.
func (c *camera) Snap(targetX, targetY float64) {
	c.PosX = targetX
	c.PosY = targetY
}

// ToScreen converts a world point to screen pixels.
func (c *camera) ToScreen(p cp.Vector) (float32, float32) {
	x := (p.X-c.PosX)*c.zoom + float64(c.screenW)/2
	y := (c.PosY-p.Y)*c.zoom + float64(c.screenH)/2
	return float32(math.Round(x)), float32(math.Round(y))
}
