package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/game"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	baseWidth     = 1280
	baseHeight    = 720
	pixelsPerUnit = 32
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

// Game adapts a Simulation to ebiten's fixed-rate Update and Draw.
type Game struct {
	sim   *game.Simulation
	cam   *camera
	debug bool
	dt    float64

	deaths []ecs.DeathEvent
}

func NewGame(sim *game.Simulation, debug bool) *Game {
	g := &Game{
		sim:   sim,
		cam:   newCamera(baseWidth, baseHeight, pixelsPerUnit),
		debug: debug,
		dt:    1.0 / float64(ebiten.TPS()),
	}
	if x, y, ok := g.playerPos(); ok {
		g.cam.Snap(x, y)
	}
	return g
}

func (g *Game) OnDeath(evt ecs.DeathEvent) {
	g.deaths = append(g.deaths, evt)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}

	g.sim.Advance(g.dt)

	if x, y, ok := g.playerPos(); ok {
		g.cam.Update(x, y)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	drawWorld(screen, g.sim.World(), g.cam, g.debug)
	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	w := g.sim.World()
	stats := g.sim.Stats()

	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f  t=%.1fs", ebiten.ActualFPS(), ebiten.ActualTPS(), w.Time())
	if player := g.sim.Player(); ecs.IsAlive(w, player) {
		if st, ok := ecs.Get(w, player, component.StressComponent.Kind()); ok {
			msg += fmt.Sprintf("\nstress: %.0f", st.Value)
		}
		if actor, ok := ecs.Get(w, player, component.ActorComponent.Kind()); ok {
			msg += fmt.Sprintf("  grounded=%v grab=%v hang=%v hidden=%v", actor.Grounded, actor.WallGrabbing, actor.Hanging, actor.Hidden)
			if actor.Dead {
				msg += "\nDEAD"
			}
		}
	}
	msg += fmt.Sprintf("\nstomps: %d  deaths: %d  coins: %d  pages: %d  dishes: %d", stats.Stomps, stats.Deaths, stats.Collected["coin"], stats.Collected["page"], stats.Dishes)
	if n := len(g.deaths); n > 0 {
		last := g.deaths[n-1]
		msg += fmt.Sprintf("\nlast death: %s (%s)", last.Entity, last.Cause)
	}
	msg += "\n[A/D] move [Space] jump [Shift] run [S] crouch [W] climb/hide [X] dash [F1] debug"

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.LineSpacing = 16
	op.ColorScale.ScaleWithColor(colornames.White)
	text.Draw(screen, msg, hudFace, op)
}

func (g *Game) playerPos() (float64, float64, bool) {
	w := g.sim.World()
	pb, ok := ecs.Get(w, g.sim.Player(), component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return 0, 0, false
	}
	pos := pb.Body.Position()
	return pos.X, pos.Y, true
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
