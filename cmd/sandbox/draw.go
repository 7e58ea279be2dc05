package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"golang.org/x/image/colornames"
)

// drawWorld fills static geometry and actors, then outlines every shape.
func drawWorld(screen *ebiten.Image, w *ecs.World, cam *camera, debug bool) {
	ecs.ForEach(w, component.StaticBoxComponent.Kind(), func(e ecs.Entity, box *component.StaticBox) {
		clr := color.Color(colornames.Slategray)
		switch {
		case ecs.Has(w, e, component.KillZoneComponent.Kind()):
			clr = color.NRGBA{R: 200, G: 40, B: 40, A: 60}
		case ecs.Has(w, e, component.HideZoneComponent.Kind()):
			clr = color.NRGBA{R: 40, G: 160, B: 60, A: 90}
		case ecs.Has(w, e, component.CollectibleComponent.Kind()):
			clr = colornames.Gold
		}
		fillBox(screen, cam, cp.Vector{X: box.X, Y: box.Y}, box.Width, box.Height, clr)
	})

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.FeedbackComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, fb *component.Feedback) {
		if pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		wobble := 0.0
		if fb.Wobble > 0 {
			wobble = fb.Wobble * math.Sin(w.Time()*40)
		}
		center := cp.Vector{X: pos.X + wobble, Y: pos.Y + pb.OffsetY}
		fillBox(screen, cam, center, pb.Width, pb.Height, fb.Color)

		// facing tick
		dir := 1.0
		if fb.FlipX {
			dir = -1
		}
		x0, y0 := cam.ToScreen(center)
		x1, y1 := cam.ToScreen(cp.Vector{X: center.X + dir*pb.Width/2, Y: center.Y})
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colornames.White, false)
	})

	ecs.ForEach(w, component.EffectComponent.Kind(), func(e ecs.Entity, fx *component.Effect) {
		x, y := cam.ToScreen(cp.Vector{X: fx.X, Y: fx.Y})
		vector.StrokeCircle(screen, x, y, float32(0.4*cam.Zoom()), 2, colornames.Orange, true)
	})

	if debug {
		if pw := w.PhysicsWorld(); pw != nil {
			cp.DrawSpace(pw.Space(), &chipmunkDrawer{screen: screen, cam: cam})
		}
	}
}

func fillBox(screen *ebiten.Image, cam *camera, center cp.Vector, width, height float64, clr color.Color) {
	x, y := cam.ToScreen(cp.Vector{X: center.X - width/2, Y: center.Y + height/2})
	vector.DrawFilledRect(screen, x, y, float32(width*cam.Zoom()), float32(height*cam.Zoom()), clr, false)
}

// chipmunkDrawer renders chipmunk shapes through the camera.
type chipmunkDrawer struct {
	screen *ebiten.Image
	cam    *camera
}

func (d *chipmunkDrawer) line(a, b cp.Vector, c color.Color) {
	x0, y0 := d.cam.ToScreen(a)
	x1, y1 := d.cam.ToScreen(b)
	vector.StrokeLine(d.screen, x0, y0, x1, y1, 1, c, false)
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	x, y := d.cam.ToScreen(pos)
	vector.StrokeCircle(d.screen, x, y, float32(radius*d.cam.Zoom()), 1, fcolorToRGBA(outline), false)
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, fcolorToRGBA(outline))
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.cam.ToScreen(pos)
	vector.DrawFilledCircle(d.screen, x, y, float32(size/2), fcolorToRGBA(fill), false)
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
