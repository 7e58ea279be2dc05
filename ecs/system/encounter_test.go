package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncounter() component.Encounter {
	return component.Encounter{
		StompStress:      30,
		CollisionStress:  15,
		BounceVelocity:   8,
		DamageInterval:   0.5,
		TopTolerance:     0.08,
		NormalThreshold:  0.5,
		SideInset:        0.2,
		FallbackVelocity: -0.1,
		FallbackOffset:   0.1,
	}
}

func TestClassifyStomp(t *testing.T) {
	bounds := cp.BB{L: -0.5, B: -0.5, R: 0.5, T: 0.5}
	up := cp.Vector{Y: 1}
	cases := []struct {
		name string
		in   StompInput
		want bool
	}{
		{
			name: "top centre contact",
			in:   StompInput{Bounds: bounds, Points: []ecs.ContactPoint{{Point: cp.Vector{X: 0, Y: 0.5}, Normal: up}}},
			want: true,
		},
		{
			name: "corner contact excluded by inset",
			in:   StompInput{Bounds: bounds, Points: []ecs.ContactPoint{{Point: cp.Vector{X: 0.45, Y: 0.5}, Normal: up}}},
			want: false,
		},
		{
			name: "side contact below top band",
			in:   StompInput{Bounds: bounds, Points: []ecs.ContactPoint{{Point: cp.Vector{X: 0.5, Y: 0}, Normal: cp.Vector{X: 1}}}},
			want: false,
		},
		{
			name: "shallow normal",
			in:   StompInput{Bounds: bounds, Points: []ecs.ContactPoint{{Point: cp.Vector{X: 0, Y: 0.5}, Normal: cp.Vector{X: 0.9, Y: 0.4}}}},
			want: false,
		},
		{
			name: "points present ignore falling velocity",
			in: StompInput{
				Bounds:          bounds,
				Points:          []ecs.ContactPoint{{Point: cp.Vector{X: 0.5, Y: 0}, Normal: cp.Vector{X: 1}}},
				HasVelocity:     true,
				PlayerVelocityY: -5,
			},
			want: false,
		},
		{
			name: "landing corners outside inset but overlap inside",
			in: StompInput{
				Bounds:       bounds,
				PlayerBounds: cp.BB{L: -0.4, B: 0.4, R: 0.4, T: 1},
				Points: []ecs.ContactPoint{
					{Point: cp.Vector{X: -0.4, Y: 0.48}, Normal: up},
					{Point: cp.Vector{X: 0.4, Y: 0.48}, Normal: up},
				},
			},
			want: true,
		},
		{
			name: "clipped corner overlap stays outside inset",
			in: StompInput{
				Bounds:       bounds,
				PlayerBounds: cp.BB{L: 0.42, B: 0.45, R: 0.82, T: 1.05},
				Points: []ecs.ContactPoint{
					{Point: cp.Vector{X: 0.42, Y: 0.48}, Normal: up},
					{Point: cp.Vector{X: 0.5, Y: 0.48}, Normal: up},
				},
			},
			want: false,
		},
		{
			name: "deep landing measured on hazard surface",
			in: StompInput{Bounds: bounds, Points: []ecs.ContactPoint{
				{Point: cp.Vector{X: 0, Y: 0.38}, Normal: up, Depth: -0.24},
			}},
			want: true,
		},
		{
			name: "no points falling player",
			in:   StompInput{Bounds: bounds, HasVelocity: true, PlayerVelocityY: -0.2},
			want: true,
		},
		{
			name: "no points rising player",
			in:   StompInput{Bounds: bounds, HasVelocity: true, PlayerVelocityY: 0},
			want: false,
		},
		{
			name: "no velocity player above",
			in:   StompInput{Bounds: bounds, PlayerY: 0.2, HazardY: 0},
			want: true,
		},
		{
			name: "no velocity player level",
			in:   StompInput{Bounds: bounds, PlayerY: 0.05, HazardY: 0},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStomp(testEncounter(), tc.in))
		})
	}
}

func TestClassifyStompIndependentOfPointOrder(t *testing.T) {
	bounds := cp.BB{L: -0.5, B: -0.5, R: 0.5, T: 0.5}
	points := []ecs.ContactPoint{
		{Point: cp.Vector{X: 0.5, Y: 0}, Normal: cp.Vector{X: 1}},
		{Point: cp.Vector{X: 0.1, Y: 0.48}, Normal: cp.Vector{Y: 1}},
		{Point: cp.Vector{X: -0.49, Y: 0.5}, Normal: cp.Vector{Y: 1}},
	}
	want := ClassifyStomp(testEncounter(), StompInput{Bounds: bounds, Points: points})
	require.True(t, want)

	for i := range points {
		rotated := append(append([]ecs.ContactPoint(nil), points[i:]...), points[:i]...)
		for j := 0; j < 3; j++ {
			assert.Equal(t, want, ClassifyStomp(testEncounter(), StompInput{Bounds: bounds, Points: rotated}))
		}
	}
}

type encounterFixture struct {
	w       *ecs.World
	enc     *EncounterSystem
	hazard  ecs.Entity
	player  ecs.Entity
	hStress *component.Stress
	pStress *component.Stress
}

func newEncounterFixture(t *testing.T) encounterFixture {
	t.Helper()
	w := newTestWorld(t)
	hazard := addHazard(t, w, cp.Vector{}, 0)
	enc := testEncounter()
	require.NoError(t, ecs.Add(w, hazard, component.EncounterComponent.Kind(), &enc))

	player := addActor(t, w, cp.Vector{Y: 0.6}, 0.4, 0.6, component.CategoryPlayer)
	require.NoError(t, ecs.Add(w, player, component.StressComponent.Kind(), &component.Stress{DeathAt: 100, GuaranteedDeathAt: 110, Round: true}))

	stress := NewStressSystem(constSampler(0.999), NewDeathSystem(nil, quietLogger()), quietLogger())
	hs, _ := ecs.Get(w, hazard, component.StressComponent.Kind())
	ps, _ := ecs.Get(w, player, component.StressComponent.Kind())
	return encounterFixture{
		w:       w,
		enc:     NewEncounterSystem(stress, quietLogger()),
		hazard:  hazard,
		player:  player,
		hStress: hs,
		pStress: ps,
	}
}

func (f encounterFixture) contact(phase ecs.ContactPhase, points ...ecs.ContactPoint) ecs.Contact {
	// player is side A, so normals point player -> hazard
	return ecs.Contact{Phase: phase, A: f.player, B: f.hazard, LayerA: ecs.LayerActor, LayerB: ecs.LayerHazard, Points: points}
}

func TestStompAddsHazardStressAndBouncesPlayer(t *testing.T) {
	f := newEncounterFixture(t)
	bodyFor(t, f.w, f.player).SetVelocity(1.5, -4)

	f.enc.HandleContact(f.w, f.contact(ecs.ContactEnter, ecs.ContactPoint{Point: cp.Vector{X: 0, Y: 0.3}, Normal: cp.Vector{Y: -1}}))

	assert.Equal(t, 30.0, f.hStress.Value)
	assert.Equal(t, 0.0, f.pStress.Value)
	v := bodyFor(t, f.w, f.player).Velocity()
	assert.Equal(t, 1.5, v.X)
	assert.Equal(t, 8.0, v.Y)
	assert.Len(t, drainEvents(f.w, ecs.EventStomp), 1)

	// a stomp-shaped stay neither stomps again nor damages
	f.enc.HandleContact(f.w, f.contact(ecs.ContactStay, ecs.ContactPoint{Point: cp.Vector{X: 0, Y: 0.3}, Normal: cp.Vector{Y: -1}}))
	assert.Equal(t, 30.0, f.hStress.Value)
	assert.Equal(t, 0.0, f.pStress.Value)
}

func TestSideCollisionDamageRespectsInterval(t *testing.T) {
	f := newEncounterFixture(t)
	side := ecs.ContactPoint{Point: cp.Vector{X: 0.3, Y: 0}, Normal: cp.Vector{X: -1}}

	f.enc.HandleContact(f.w, f.contact(ecs.ContactEnter, side))
	assert.Equal(t, 15.0, f.pStress.Value)

	f.w.AdvanceTime(0.3)
	f.enc.HandleContact(f.w, f.contact(ecs.ContactStay, side))
	assert.Equal(t, 15.0, f.pStress.Value)

	f.w.AdvanceTime(0.25)
	f.enc.HandleContact(f.w, f.contact(ecs.ContactStay, side))
	assert.Equal(t, 30.0, f.pStress.Value)

	f.enc.HandleContact(f.w, f.contact(ecs.ContactExit))
	enc, _ := ecs.Get(f.w, f.hazard, component.EncounterComponent.Kind())
	assert.Empty(t, enc.LastDamage)

	f.enc.HandleContact(f.w, f.contact(ecs.ContactEnter, side))
	assert.Equal(t, 45.0, f.pStress.Value)
}

func TestEncounterIgnoresSensorsAndNonPlayers(t *testing.T) {
	f := newEncounterFixture(t)
	other := addHazard(t, f.w, cp.Vector{X: 3}, 0)

	c := f.contact(ecs.ContactEnter)
	c.Sensor = true
	f.enc.HandleContact(f.w, c)
	f.enc.HandleContact(f.w, ecs.Contact{Phase: ecs.ContactEnter, A: other, B: f.hazard})

	assert.Equal(t, 0.0, f.hStress.Value)
	assert.Equal(t, 0.0, f.pStress.Value)
}

func TestFourthStompThroughContactsKillsHazard(t *testing.T) {
	f := newEncounterFixture(t)
	top := ecs.ContactPoint{Point: cp.Vector{X: 0, Y: 0.3}, Normal: cp.Vector{Y: -1}}

	for i := 0; i < 3; i++ {
		f.enc.HandleContact(f.w, f.contact(ecs.ContactEnter, top))
		f.enc.HandleContact(f.w, f.contact(ecs.ContactExit))
	}
	require.True(t, ecs.IsAlive(f.w, f.hazard))
	assert.Equal(t, 90.0, f.hStress.Value)

	f.enc.HandleContact(f.w, f.contact(ecs.ContactEnter, top))
	assert.False(t, ecs.IsAlive(f.w, f.hazard))
}
