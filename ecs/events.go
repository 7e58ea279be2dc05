package ecs

// EventKind identifies an event payload.
type EventKind string

const (
	EventDeath   EventKind = "death"
	EventStomp   EventKind = "stomp"
	EventStress  EventKind = "stress"
	EventCollect EventKind = "collect"
	EventHide    EventKind = "hide"
	EventDish    EventKind = "dish"
)

// Event is a typed payload pushed by systems and drained by the driver.
type Event interface {
	Kind() EventKind
}

// DeathCause records which rule ended an actor.
type DeathCause string

const (
	DeathByStress   DeathCause = "stress"
	DeathByKillZone DeathCause = "kill_zone"
)

type DeathEvent struct {
	Entity Entity
	Cause  DeathCause
	Stress float64
}

func (DeathEvent) Kind() EventKind { return EventDeath }

type StompEvent struct {
	Hazard Entity
	Player Entity
}

func (StompEvent) Kind() EventKind { return EventStomp }

type StressEvent struct {
	Entity Entity
	Amount float64
	Total  float64
}

func (StressEvent) Kind() EventKind { return EventStress }

type CollectEvent struct {
	Collector Entity
	Item      Entity
	ItemKind  string
}

func (CollectEvent) Kind() EventKind { return EventCollect }

type HideEvent struct {
	Entity Entity
	Hidden bool
}

func (HideEvent) Kind() EventKind { return EventHide }

// DishEvent reports a thrown dish breaking. Victim is the player it hit, or
// zero when it broke on a zone.
type DishEvent struct {
	Dish   Entity
	Victim Entity
}

func (DishEvent) Kind() EventKind { return EventDish }

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil || evt == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
