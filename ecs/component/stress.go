package component

// Stress is an accumulating, never negative damage counter. Reaching
// GuaranteedDeathAt kills; values above DeathAt roll for death.
type Stress struct {
	Value             float64
	DeathAt           float64
	GuaranteedDeathAt float64
	// Round stores whole-number stress (the player meter is integral).
	Round bool
	// PassiveChance is the per-frame death chance inside the band; zero
	// disables the passive check.
	PassiveChance float64
}

var StressComponent = NewComponent[Stress]()

// InBand reports whether value lies in [DeathAt, GuaranteedDeathAt).
func (s *Stress) InBand() bool {
	return s != nil && s.Value >= s.DeathAt && s.Value < s.GuaranteedDeathAt
}
