package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type ActorComponentSpec struct {
	Category string  `yaml:"category"`
	Facing   float64 `yaml:"facing"`
}

type ControllerComponentSpec struct {
	Source string `yaml:"source"`
}

// PhysicsBodyComponentSpec sizes the collider. Layer overrides the layer
// picked from the actor category; "hazard" makes a body that hurts on touch.
type PhysicsBodyComponentSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mass   float64 `yaml:"mass"`
	Layer  string  `yaml:"layer"`
}

type GravityScaleComponentSpec struct {
	Scale *float64 `yaml:"scale"`
}

type MovementComponentSpec struct {
	WalkSpeed         float64 `yaml:"walk_speed"`
	RunSpeed          float64 `yaml:"run_speed"`
	CrouchSpeed       float64 `yaml:"crouch_speed"`
	Smoothing         float64 `yaml:"smoothing"`
	SpeedScale        float64 `yaml:"speed_scale"`
	JumpImpulse       float64 `yaml:"jump_impulse"`
	JumpFlagDuration  float64 `yaml:"jump_flag_duration"`
	WallProbeDistance float64 `yaml:"wall_probe_distance"`
	SlideSpeed        float64 `yaml:"slide_speed"`
}

type WallLedgeComponentSpec struct {
	WallCheckDistance float64 `yaml:"wall_check_distance"`
	GrabHoldTime      float64 `yaml:"grab_hold_time"`
	ReleaseCooldown   float64 `yaml:"release_cooldown"`
	WallJumpX         float64 `yaml:"wall_jump_x"`
	WallJumpY         float64 `yaml:"wall_jump_y"`
	WallJumpNudge     float64 `yaml:"wall_jump_nudge"`
	LedgeProbeHeight  float64 `yaml:"ledge_probe_height"`
	LedgeProbeDepth   float64 `yaml:"ledge_probe_depth"`
	LedgeMargin       float64 `yaml:"ledge_margin"`
	HangOffsetX       float64 `yaml:"hang_offset_x"`
	HangOffsetY       float64 `yaml:"hang_offset_y"`
	ClimbHoldTime     float64 `yaml:"climb_hold_time"`
	ClimbDuration     float64 `yaml:"climb_duration"`
	ClimbOffsetY      float64 `yaml:"climb_offset_y"`
}

type DashComponentSpec struct {
	Force    float64 `yaml:"force"`
	Duration float64 `yaml:"duration"`
	Unlocked bool    `yaml:"unlocked"`
}

type StressComponentSpec struct {
	Value             float64 `yaml:"value"`
	DeathAt           float64 `yaml:"death_at"`
	GuaranteedDeathAt float64 `yaml:"guaranteed_death_at"`
	Round             bool    `yaml:"round"`
	PassiveChance     float64 `yaml:"passive_chance"`
}

type EncounterComponentSpec struct {
	StompStress      float64 `yaml:"stomp_stress"`
	CollisionStress  float64 `yaml:"collision_stress"`
	BounceVelocity   float64 `yaml:"bounce_velocity"`
	DamageInterval   float64 `yaml:"damage_interval"`
	TopTolerance     float64 `yaml:"top_tolerance"`
	NormalThreshold  float64 `yaml:"normal_threshold"`
	SideInset        float64 `yaml:"side_inset"`
	FallbackVelocity float64 `yaml:"fallback_velocity"`
	FallbackOffset   float64 `yaml:"fallback_offset"`
}

type DeathEffectComponentSpec struct {
	Enabled       bool    `yaml:"enabled"`
	HasParticles  bool    `yaml:"has_particles"`
	Duration      float64 `yaml:"duration"`
	StartLifetime float64 `yaml:"start_lifetime"`
	Fallback      float64 `yaml:"fallback"`
}

type AIComponentSpec struct {
	Script string `yaml:"script"`
}

type PatrolComponentSpec struct {
	Waypoints      []PointSpec `yaml:"waypoints"`
	PingPong       bool        `yaml:"ping_pong"`
	ArriveDistance float64     `yaml:"arrive_distance"`
}

type SightComponentSpec struct {
	Radius float64 `yaml:"radius"`
	Filter string  `yaml:"filter"`
}

type FeedbackComponentSpec struct {
	FlashColor      *YAMLColor `yaml:"flash_color"`
	FlashDuration   float64    `yaml:"flash_duration"`
	HiddenAlpha     float64    `yaml:"hidden_alpha"`
	FadeDuration    float64    `yaml:"fade_duration"`
	TintFullAt      float64    `yaml:"tint_full_at"`
	WobbleThreshold float64    `yaml:"wobble_threshold"`
	WobbleMaxStress float64    `yaml:"wobble_max_stress"`
	WobbleAmplitude float64    `yaml:"wobble_amplitude"`
}

type CollectibleComponentSpec struct {
	Kind  string `yaml:"kind"`
	Value int    `yaml:"value"`
}

type DishThrowComponentSpec struct {
	Speed        float64    `yaml:"speed"`
	Stress       float64    `yaml:"stress"`
	FadeDuration float64    `yaml:"fade_duration"`
	MaxFlight    float64    `yaml:"max_flight"`
	AutoLaunch   bool       `yaml:"auto_launch"`
	Direction    *PointSpec `yaml:"direction"`
}
