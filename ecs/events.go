package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type   EventType
	Entity Entity
	Data   any
}

type EventType string

const (
	EventPathFound    EventType = "path_found"
	EventPathFailed   EventType = "path_failed"
	EventArrived      EventType = "arrived"
	EventGoalAssigned EventType = "goal_assigned"
	EventGaveUp       EventType = "gave_up"
)

// EventQueue is a simple FIFO queue. Events pushed during a tick are
// visible to later systems in the same tick and dropped after it.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Peek returns pending events without consuming them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
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

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
