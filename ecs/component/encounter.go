package component

// Encounter configures how contacts between a hazard and the player are
// classified and scored.
type Encounter struct {
	StompStress     float64
	CollisionStress float64
	BounceVelocity  float64
	DamageInterval  float64

	// TopTolerance is the band below the hazard top that counts as a stomp
	// contact.
	TopTolerance float64
	// NormalThreshold is the minimum upward component of the contact normal
	// (oriented hazard -> player).
	NormalThreshold float64
	// SideInset is the fraction of the width excluded on each side.
	SideInset float64

	FallbackVelocity float64
	FallbackOffset   float64

	// LastDamage is the sim time of the last collision damage per player
	// entity; cleared on contact exit.
	LastDamage map[uint64]float64
}

var EncounterComponent = NewComponent[Encounter]()

// DeathEffect describes the visual spawned when a hazard dies.
type DeathEffect struct {
	Enabled       bool
	HasParticles  bool
	Duration      float64
	StartLifetime float64
	Fallback      float64
}

var DeathEffectComponent = NewComponent[DeathEffect]()

// Lifetime is how long the spawned effect lives.
func (d DeathEffect) Lifetime() float64 {
	if d.HasParticles {
		return d.Duration + max(0.1, d.StartLifetime) + 0.25
	}
	if d.Fallback > 0 {
		return d.Fallback
	}
	return 5
}

// Effect marks a spawned visual; X and Y are its world position.
type Effect struct {
	Name string
	X    float64
	Y    float64
}

var EffectComponent = NewComponent[Effect]()

// TTL destroys its entity after Seconds of frame time.
type TTL struct {
	Seconds float64
}

var TTLComponent = NewComponent[TTL]()
