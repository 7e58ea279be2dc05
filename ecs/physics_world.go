package ecs

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/common"
)

// Layer is a collision category bit. Query masks combine layers.
type Layer uint

const (
	LayerGround Layer = 1 << iota
	LayerActor
	LayerHazard
	LayerSensor

	LayerNone Layer = 0
	LayerAll        = LayerGround | LayerActor | LayerHazard | LayerSensor
)

func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeActor
	collisionTypeHazard
	collisionTypeSensor
)

func collisionTypeFor(l Layer) cp.CollisionType {
	switch {
	case l.Has(LayerSensor):
		return collisionTypeSensor
	case l.Has(LayerHazard):
		return collisionTypeHazard
	case l.Has(LayerActor):
		return collisionTypeActor
	default:
		return collisionTypeGround
	}
}

// Hit is the result of a ray probe.
type Hit struct {
	Entity   Entity
	Layer    Layer
	Point    cp.Vector
	Normal   cp.Vector
	Distance float64
}

type ContactPhase int

const (
	ContactEnter ContactPhase = iota
	ContactStay
	ContactExit
)

func (p ContactPhase) String() string {
	switch p {
	case ContactEnter:
		return "enter"
	case ContactStay:
		return "stay"
	case ContactExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ContactPoint is a world-space contact. Normal points from Contact.A
// toward Contact.B.
type ContactPoint struct {
	Point  cp.Vector
	Normal cp.Vector
	// Depth is the signed separation along Normal; negative while the
	// shapes overlap.
	Depth float64
}

// Surface is the contact point on the surface of the side the normal
// points away from.
func (p ContactPoint) Surface() cp.Vector {
	return p.Point.Sub(p.Normal.Mult(p.Depth / 2))
}

// Contact is a buffered collision or trigger event between two entities.
type Contact struct {
	Phase  ContactPhase
	A, B   Entity
	LayerA Layer
	LayerB Layer
	Sensor bool
	Points []ContactPoint
	// BoundsA and BoundsB are the colliders' world boxes when the points
	// were recorded.
	BoundsA cp.BB
	BoundsB cp.BB
}

// Involves reports whether e is one side of the contact.
func (c Contact) Involves(e Entity) bool {
	return c.A == e || c.B == e
}

// Other returns the entity opposite e.
func (c Contact) Other(e Entity) Entity {
	if c.A == e {
		return c.B
	}
	return c.A
}

// LayerOf returns the layer of the side held by e.
func (c Contact) LayerOf(e Entity) Layer {
	if c.A == e {
		return c.LayerA
	}
	return c.LayerB
}

// BoundsOf returns the collider box of the side held by e.
func (c Contact) BoundsOf(e Entity) cp.BB {
	if c.A == e {
		return c.BoundsA
	}
	return c.BoundsB
}

// PointsFrom returns the contact points with normals oriented from e toward
// the other entity.
func (c Contact) PointsFrom(e Entity) []ContactPoint {
	if c.A == e {
		return c.Points
	}
	out := make([]ContactPoint, len(c.Points))
	for i, p := range c.Points {
		out[i] = ContactPoint{Point: p.Point, Normal: p.Normal.Neg(), Depth: p.Depth}
	}
	return out
}

// BoxSpec describes an axis-aligned box collider.
type BoxSpec struct {
	Width   float64
	Height  float64
	OffsetY float64
	Mass    float64
	Layer   Layer
	Sensor  bool
}

type shapeInfo struct {
	entity Entity
	layer  Layer
	sensor bool
	// local is the box in body space; static boxes are in world space.
	local cp.BB
}

type bodyInfo struct {
	body         *cp.Body
	shapes       []*cp.Shape
	static       bool
	gravityScale float64
}

type pairKey struct {
	a, b Entity
}

func makePairKey(a, b Entity) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

type activeContact struct {
	contact Contact
	entered bool
}

// PhysicsWorld owns the Chipmunk space, the shape to entity mapping and the
// contact buffer filled during Step.
type PhysicsWorld struct {
	space   *cp.Space
	gravity cp.Vector
	logger  *log.Logger

	shapes  map[*cp.Shape]shapeInfo
	bodies  map[Entity]*bodyInfo
	ignored map[pairKey]struct{}

	active  map[pairKey]*activeContact
	pending []Contact
}

// NewPhysicsWorld creates a space with the given gravity (negative Y pulls
// down) and solver iterations.
func NewPhysicsWorld(gravity float64, iterations int, logger *log.Logger) *PhysicsWorld {
	space := cp.NewSpace()
	if iterations > 0 {
		space.Iterations = uint(iterations)
	}
	g := cp.Vector{X: 0, Y: gravity}
	space.SetGravity(g)
	if logger == nil {
		logger = log.Default()
	}

	pw := &PhysicsWorld{
		space:   space,
		gravity: g,
		logger:  logger.With("system", "physics"),
		shapes:  make(map[*cp.Shape]shapeInfo),
		bodies:  make(map[Entity]*bodyInfo),
		ignored: make(map[pairKey]struct{}),
		active:  make(map[pairKey]*activeContact),
	}
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// Gravity returns the world gravity vector.
func (pw *PhysicsWorld) Gravity() cp.Vector {
	if pw == nil {
		return cp.Vector{}
	}
	return pw.gravity
}

// SetGravity replaces the world gravity; per-body scales still apply.
func (pw *PhysicsWorld) SetGravity(gravity float64) {
	if pw == nil || pw.space == nil {
		return
	}
	pw.gravity = cp.Vector{X: 0, Y: gravity}
	pw.space.SetGravity(pw.gravity)
}

// AddStaticBox adds an immovable box centred at center. Sensors report
// Enter/Exit contacts but never push bodies.
func (pw *PhysicsWorld) AddStaticBox(e Entity, center cp.Vector, spec BoxSpec) *cp.Shape {
	if pw == nil || pw.space == nil || spec.Width <= 0 || spec.Height <= 0 {
		return nil
	}
	hw, hh := spec.Width/2, spec.Height/2
	bb := cp.BB{L: center.X - hw, B: center.Y - hh + spec.OffsetY, R: center.X + hw, T: center.Y + hh + spec.OffsetY}
	shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
	pw.configureShape(shape, spec)
	pw.space.AddShape(shape)
	pw.shapes[shape] = shapeInfo{entity: e, layer: layerOrDefault(spec.Layer, LayerGround), sensor: spec.Sensor, local: bb}

	info := pw.bodies[e]
	if info == nil {
		info = &bodyInfo{body: pw.space.StaticBody, static: true, gravityScale: 1}
		pw.bodies[e] = info
	}
	info.shapes = append(info.shapes, shape)
	return shape
}

// AddDynamicBox creates a rotation-locked dynamic body with one box shape.
// Gravity applied to the body is scaled by SetGravityScale.
func (pw *PhysicsWorld) AddDynamicBox(e Entity, center cp.Vector, spec BoxSpec) (*cp.Body, *cp.Shape) {
	if pw == nil || pw.space == nil {
		return nil, nil
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		pw.logger.Warn("skipping body with degenerate size", "entity", e, "width", spec.Width, "height", spec.Height)
		return nil, nil
	}
	if old := pw.bodies[e]; old != nil {
		pw.RemoveEntity(e)
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}

	info := &bodyInfo{gravityScale: 1}
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(center)
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(b, gravity.Mult(info.gravityScale), damping, dt)
	})
	info.body = body
	pw.space.AddBody(body)

	shape := pw.newBodyBox(body, spec)
	pw.space.AddShape(shape)
	pw.shapes[shape] = shapeInfo{entity: e, layer: layerOrDefault(spec.Layer, LayerActor), sensor: spec.Sensor, local: localBox(spec)}
	info.shapes = []*cp.Shape{shape}
	pw.bodies[e] = info
	return body, shape
}

// ResizeBox replaces the first shape of a dynamic body, keeping its
// mapping and collision settings.
func (pw *PhysicsWorld) ResizeBox(e Entity, spec BoxSpec) *cp.Shape {
	if pw == nil || pw.space == nil || spec.Width <= 0 || spec.Height <= 0 {
		return nil
	}
	info := pw.bodies[e]
	if info == nil || info.static || len(info.shapes) == 0 {
		return nil
	}
	old := info.shapes[0]
	prev := pw.shapes[old]
	delete(pw.shapes, old)
	pw.space.RemoveShape(old)

	if spec.Layer == LayerNone {
		spec.Layer = prev.layer
	}
	shape := pw.newBodyBox(info.body, spec)
	pw.space.AddShape(shape)
	pw.shapes[shape] = shapeInfo{entity: e, layer: spec.Layer, sensor: spec.Sensor, local: localBox(spec)}
	info.shapes[0] = shape
	return shape
}

func localBox(spec BoxSpec) cp.BB {
	hw, hh := spec.Width/2, spec.Height/2
	return cp.BB{L: -hw, B: -hh + spec.OffsetY, R: hw, T: hh + spec.OffsetY}
}

func (pw *PhysicsWorld) newBodyBox(body *cp.Body, spec BoxSpec) *cp.Shape {
	shape := cp.NewBox2(body, localBox(spec), 0)
	pw.configureShape(shape, spec)
	return shape
}

func (pw *PhysicsWorld) configureShape(shape *cp.Shape, spec BoxSpec) {
	layer := spec.Layer
	if layer == LayerNone {
		layer = LayerGround
	}
	shape.SetFriction(0)
	shape.SetElasticity(0)
	shape.SetSensor(spec.Sensor)
	shape.SetCollisionType(collisionTypeFor(layer))
	shape.SetFilter(cp.ShapeFilter{Group: 0, Categories: uint(layer), Mask: uint(LayerAll)})
}

func layerOrDefault(l, def Layer) Layer {
	if l == LayerNone {
		return def
	}
	return l
}

// Body returns the dynamic body of e, or nil.
func (pw *PhysicsWorld) Body(e Entity) *cp.Body {
	if pw == nil {
		return nil
	}
	info := pw.bodies[e]
	if info == nil || info.static {
		return nil
	}
	return info.body
}

// SetGravityScale scales the gravity contribution for a dynamic body.
func (pw *PhysicsWorld) SetGravityScale(e Entity, scale float64) {
	if pw == nil {
		return
	}
	if info := pw.bodies[e]; info != nil && !info.static {
		info.gravityScale = scale
	}
}

func (pw *PhysicsWorld) GravityScale(e Entity) float64 {
	if pw == nil {
		return 0
	}
	if info := pw.bodies[e]; info != nil && !info.static {
		return info.gravityScale
	}
	return 0
}

// RemoveEntity removes every shape and the dynamic body owned by e and
// drops its active contacts without emitting Exit events.
func (pw *PhysicsWorld) RemoveEntity(e Entity) {
	if pw == nil || pw.space == nil {
		return
	}
	info := pw.bodies[e]
	if info == nil {
		return
	}
	delete(pw.bodies, e)
	for _, shape := range info.shapes {
		delete(pw.shapes, shape)
		pw.space.RemoveShape(shape)
	}
	if !info.static && info.body != nil {
		pw.space.RemoveBody(info.body)
	}
	for key := range pw.active {
		if key.a == e || key.b == e {
			delete(pw.active, key)
		}
	}
	for key := range pw.ignored {
		if key.a == e || key.b == e {
			delete(pw.ignored, key)
		}
	}
}

// IgnorePair toggles solving and contact reporting between a and b.
func (pw *PhysicsWorld) IgnorePair(a, b Entity, ignore bool) {
	if pw == nil || a == b {
		return
	}
	key := makePairKey(a, b)
	if ignore {
		pw.ignored[key] = struct{}{}
		return
	}
	delete(pw.ignored, key)
}

func (pw *PhysicsWorld) Ignored(a, b Entity) bool {
	if pw == nil {
		return false
	}
	_, ok := pw.ignored[makePairKey(a, b)]
	return ok
}

func queryFilter(mask Layer) cp.ShapeFilter {
	return cp.ShapeFilter{Group: 0, Categories: uint(LayerAll), Mask: uint(mask)}
}

// Raycast probes from origin along dir for at most maxDist against shapes
// in mask. Sensors never block a ray. A zero-length dir defaults to +X.
func (pw *PhysicsWorld) Raycast(origin, dir cp.Vector, maxDist float64, mask Layer) (Hit, bool) {
	if pw == nil || pw.space == nil || maxDist <= 0 || mask == LayerNone {
		return Hit{}, false
	}
	dx, dy := common.SafeNormalize(dir.X, dir.Y, 1, 0)
	end := cp.Vector{X: origin.X + dx*maxDist, Y: origin.Y + dy*maxDist}
	info := pw.space.SegmentQueryFirst(origin, end, 0, queryFilter(mask &^ LayerSensor))
	if info.Shape == nil {
		return Hit{}, false
	}
	si := pw.shapes[info.Shape]
	return Hit{
		Entity:   si.entity,
		Layer:    si.layer,
		Point:    info.Point,
		Normal:   info.Normal,
		Distance: info.Alpha * maxDist,
	}, true
}

// OverlapBox reports whether any solid shape in mask intersects the box.
func (pw *PhysicsWorld) OverlapBox(center, size cp.Vector, mask Layer) bool {
	if pw == nil || pw.space == nil || mask == LayerNone {
		return false
	}
	hw, hh := math.Abs(size.X)/2, math.Abs(size.Y)/2
	bb := cp.BB{L: center.X - hw, B: center.Y - hh, R: center.X + hw, T: center.Y + hh}
	found := false
	pw.space.BBQuery(bb, queryFilter(mask), func(shape *cp.Shape, data interface{}) {
		if si, ok := pw.shapes[shape]; ok && !si.sensor && mask.Has(si.layer) {
			found = true
		}
	}, nil)
	return found
}

// OverlapCircle reports whether any solid shape in mask lies within radius
// of center.
func (pw *PhysicsWorld) OverlapCircle(center cp.Vector, radius float64, mask Layer) bool {
	if pw == nil || pw.space == nil || mask == LayerNone || radius < 0 {
		return false
	}
	info := pw.space.PointQueryNearest(center, radius, queryFilter(mask&^LayerSensor))
	if info == nil || info.Shape == nil || info.Distance > radius {
		return false
	}
	si, ok := pw.shapes[info.Shape]
	return ok && !si.sensor && mask.Has(si.layer)
}

// Step advances the simulation. Contacts reported by Chipmunk during the
// step are buffered; read them with DrainContacts.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	for _, ac := range pw.active {
		ac.entered = false
	}
	pw.space.Step(dt)
}

// DrainContacts returns Enter and Exit events in callback order followed by
// one Stay event per persisting, non-ignored pair in entity order.
func (pw *PhysicsWorld) DrainContacts() []Contact {
	if pw == nil {
		return nil
	}
	out := pw.pending
	pw.pending = nil

	keys := make([]pairKey, 0, len(pw.active))
	for key, ac := range pw.active {
		if ac.entered {
			continue
		}
		if _, skip := pw.ignored[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(x, y pairKey) int {
		if x.a != y.a {
			return cmpEntity(x.a, y.a)
		}
		return cmpEntity(x.b, y.b)
	})
	for _, key := range keys {
		c := pw.active[key].contact
		c.Phase = ContactStay
		c.Points = slices.Clone(c.Points)
		out = append(out, c)
	}
	return out
}

func cmpEntity(a, b Entity) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (pw *PhysicsWorld) setupHandlers() {
	pairs := [][2]cp.CollisionType{
		{collisionTypeActor, collisionTypeActor},
		{collisionTypeActor, collisionTypeHazard},
		{collisionTypeHazard, collisionTypeHazard},
		{collisionTypeActor, collisionTypeSensor},
		{collisionTypeHazard, collisionTypeSensor},
	}
	for _, p := range pairs {
		h := pw.space.NewCollisionHandler(p[0], p[1])
		h.UserData = pw
		h.BeginFunc = beginContact
		h.PreSolveFunc = preSolveContact
		h.SeparateFunc = separateContact
	}
}

func (pw *PhysicsWorld) contactFromArbiter(arb *cp.Arbiter) (pairKey, Contact, bool) {
	shapeA, shapeB := arb.Shapes()
	infoA, okA := pw.shapes[shapeA]
	infoB, okB := pw.shapes[shapeB]
	if !okA || !okB || infoA.entity == infoB.entity {
		return pairKey{}, Contact{}, false
	}

	c := Contact{
		A:      infoA.entity,
		B:      infoB.entity,
		LayerA: infoA.layer,
		LayerB: infoB.layer,
		Sensor: infoA.sensor || infoB.sensor,
		BoundsA: worldBox(shapeA, infoA),
		BoundsB: worldBox(shapeB, infoB),
	}
	set := arb.ContactPointSet()
	for i := 0; i < set.Count; i++ {
		p := set.Points[i]
		c.Points = append(c.Points, ContactPoint{
			Point:  p.PointA.Add(p.PointB).Mult(0.5),
			Normal: set.Normal,
			Depth:  p.Distance,
		})
	}
	key := makePairKey(c.A, c.B)
	return key, c, true
}

func worldBox(shape *cp.Shape, si shapeInfo) cp.BB {
	body := shape.Body()
	if body == nil || body.GetType() == cp.BODY_STATIC {
		return si.local
	}
	pos := body.Position()
	return cp.BB{L: si.local.L + pos.X, B: si.local.B + pos.Y, R: si.local.R + pos.X, T: si.local.T + pos.Y}
}

func beginContact(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	pw, ok := userData.(*PhysicsWorld)
	if !ok || pw == nil {
		return true
	}
	key, c, ok := pw.contactFromArbiter(arb)
	if !ok {
		return true
	}
	if _, skip := pw.ignored[key]; skip {
		return false
	}
	if ac := pw.active[key]; ac != nil {
		// another shape of the same pair; the pair is already touching
		ac.contact.A, ac.contact.B = c.A, c.B
		ac.contact.LayerA, ac.contact.LayerB = c.LayerA, c.LayerB
		ac.contact.Points = c.Points
		ac.contact.BoundsA, ac.contact.BoundsB = c.BoundsA, c.BoundsB
		return true
	}
	c.Phase = ContactEnter
	pw.active[key] = &activeContact{contact: c, entered: true}
	pw.pending = append(pw.pending, c)
	return true
}

func preSolveContact(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	pw, ok := userData.(*PhysicsWorld)
	if !ok || pw == nil {
		return true
	}
	key, c, ok := pw.contactFromArbiter(arb)
	if !ok {
		return true
	}
	if _, skip := pw.ignored[key]; skip {
		return false
	}
	if ac := pw.active[key]; ac != nil && len(c.Points) > 0 {
		ac.contact.A, ac.contact.B = c.A, c.B
		ac.contact.LayerA, ac.contact.LayerB = c.LayerA, c.LayerB
		ac.contact.Points = c.Points
		ac.contact.BoundsA, ac.contact.BoundsB = c.BoundsA, c.BoundsB
	}
	return true
}

func separateContact(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
	pw, ok := userData.(*PhysicsWorld)
	if !ok || pw == nil {
		return
	}
	shapeA, shapeB := arb.Shapes()
	infoA, okA := pw.shapes[shapeA]
	infoB, okB := pw.shapes[shapeB]
	if !okA || !okB {
		return
	}
	key := makePairKey(infoA.entity, infoB.entity)
	ac := pw.active[key]
	if ac == nil {
		return
	}
	delete(pw.active, key)
	c := ac.contact
	c.Phase = ContactExit
	c.Points = nil
	pw.pending = append(pw.pending, c)
}
