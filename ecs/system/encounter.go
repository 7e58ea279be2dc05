package system

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// StompInput is the geometry of one hazard/player contact.
type StompInput struct {
	// Bounds of the hazard collider.
	Bounds cp.BB
	// PlayerBounds is the player's collider; zero when unknown.
	PlayerBounds cp.BB
	// Points carry normals oriented from the hazard toward the player.
	Points []ecs.ContactPoint

	HasVelocity     bool
	PlayerVelocityY float64
	PlayerY         float64
	HazardY         float64
}

// ClassifyStomp reports whether a contact is a top-down hit on the hazard.
// Contact geometry decides when present; without points the player's
// downward speed decides, or failing that its height above the hazard.
//
// A point counts when it sits on the hazard's top band with an upward
// normal and either the point or the player's horizontal overlap with the
// hazard reaches inside the side insets. Box contacts land on the corners
// of the overlap, so the overlap is what separates a landing from a
// clipped corner.
func ClassifyStomp(enc component.Encounter, in StompInput) bool {
	if len(in.Points) > 0 {
		inset := clampInset(enc.SideInset) * (in.Bounds.R - in.Bounds.L)
		minX, maxX := in.Bounds.L+inset, in.Bounds.R-inset
		overlapInBand := false
		if in.PlayerBounds != (cp.BB{}) {
			lo := math.Max(in.Bounds.L, in.PlayerBounds.L)
			hi := math.Min(in.Bounds.R, in.PlayerBounds.R)
			overlapInBand = lo <= hi && lo <= maxX && hi >= minX
		}
		for _, p := range in.Points {
			withinTop := p.Surface().Y > in.Bounds.T-enc.TopTolerance
			normalUp := p.Normal.Y >= enc.NormalThreshold
			withinX := p.Point.X >= minX && p.Point.X <= maxX
			if withinTop && normalUp && (withinX || overlapInBand) {
				return true
			}
		}
		return false
	}
	if in.HasVelocity {
		return in.PlayerVelocityY < enc.FallbackVelocity
	}
	return in.PlayerY > in.HazardY+enc.FallbackOffset
}

func clampInset(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 0.45:
		return 0.45
	default:
		return v
	}
}

// EncounterSystem routes solid hazard/player contacts into stress. Stomps
// only count on first contact; side hits repeat at most once per damage
// interval while the contact persists.
type EncounterSystem struct {
	logger *log.Logger
	stress *StressSystem
}

func NewEncounterSystem(stress *StressSystem, logger *log.Logger) *EncounterSystem {
	return &EncounterSystem{logger: systemLogger(logger, "encounter"), stress: stress}
}

func (s *EncounterSystem) HandleContact(w *ecs.World, c ecs.Contact) {
	if c.Sensor {
		return
	}
	hazard, player, ok := s.split(w, c)
	if !ok {
		return
	}
	enc, ok := ecs.Get(w, hazard, component.EncounterComponent.Kind())
	if !ok {
		return
	}

	switch c.Phase {
	case ecs.ContactExit:
		delete(enc.LastDamage, uint64(player))
	case ecs.ContactEnter:
		if ClassifyStomp(*enc, s.stompInput(w, hazard, player, c)) {
			s.stomp(w, enc, hazard, player)
			return
		}
		s.damage(w, enc, player)
	case ecs.ContactStay:
		if ClassifyStomp(*enc, s.stompInput(w, hazard, player, c)) {
			return
		}
		last, seen := enc.LastDamage[uint64(player)]
		if !seen || w.Time()-last >= enc.DamageInterval {
			s.damage(w, enc, player)
		}
	}
}

// split orders a contact as (hazard, player).
func (s *EncounterSystem) split(w *ecs.World, c ecs.Contact) (ecs.Entity, ecs.Entity, bool) {
	for _, pair := range [2][2]ecs.Entity{{c.A, c.B}, {c.B, c.A}} {
		h, p := pair[0], pair[1]
		if !ecs.Has(w, h, component.EncounterComponent.Kind()) {
			continue
		}
		ha, okH := ecs.Get(w, h, component.ActorComponent.Kind())
		pa, okP := ecs.Get(w, p, component.ActorComponent.Kind())
		if !okH || !okP || ha.Dead || pa.Dead {
			return 0, 0, false
		}
		if pa.Category != component.CategoryPlayer {
			return 0, 0, false
		}
		return h, p, true
	}
	return 0, 0, false
}

// stompInput prefers the collider boxes recorded with the contact points so
// both describe the same moment of the step.
func (s *EncounterSystem) stompInput(w *ecs.World, hazard, player ecs.Entity, c ecs.Contact) StompInput {
	in := StompInput{
		Points:       c.PointsFrom(hazard),
		Bounds:       c.BoundsOf(hazard),
		PlayerBounds: c.BoundsOf(player),
	}
	if pb, ok := bodyOf(w, hazard); ok {
		if in.Bounds == (cp.BB{}) {
			center, ext := pb.Center(), pb.Extents()
			in.Bounds = cp.BB{L: center.X - ext.X, B: center.Y - ext.Y, R: center.X + ext.X, T: center.Y + ext.Y}
		}
		in.HazardY = pb.Body.Position().Y
	}
	if pb, ok := bodyOf(w, player); ok {
		in.HasVelocity = true
		in.PlayerVelocityY = pb.Body.Velocity().Y
		in.PlayerY = pb.Body.Position().Y
	}
	return in
}

func (s *EncounterSystem) stomp(w *ecs.World, enc *component.Encounter, hazard, player ecs.Entity) {
	w.Events().Push(ecs.StompEvent{Hazard: hazard, Player: player})
	s.logger.Debug("stomp", "hazard", hazard, "player", player)
	s.stress.AddStress(w, hazard, enc.StompStress)
	if pb, ok := bodyOf(w, player); ok {
		v := pb.Body.Velocity()
		pb.Body.SetVelocity(v.X, enc.BounceVelocity)
	}
}

func (s *EncounterSystem) damage(w *ecs.World, enc *component.Encounter, player ecs.Entity) {
	if enc.LastDamage == nil {
		enc.LastDamage = make(map[uint64]float64)
	}
	enc.LastDamage[uint64(player)] = w.Time()
	s.logger.Debug("hazard hit player", "player", player, "stress", enc.CollisionStress)
	s.stress.AddStress(w, player, enc.CollisionStress)
}
