package system

import (
	"log"

	"github.com/milk9111/crowdnav/ecs"
)

// StatsSystem drains the tick's events and keeps running totals. It has to
// run after every system that emits events.
type StatsSystem struct {
	counts map[ecs.EventType]int
	last   []ecs.Event
	Log    bool
}

func NewStatsSystem() *StatsSystem {
	return &StatsSystem{counts: make(map[ecs.EventType]int)}
}

func (s *StatsSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.last = w.Events().Drain()
	for _, ev := range s.last {
		s.counts[ev.Type]++
		if s.Log {
			log.Printf("stats: entity=%s event=%s data=%v", ev.Entity, ev.Type, ev.Data)
		}
	}
}

// Count is the number of events of typ seen so far.
func (s *StatsSystem) Count(typ ecs.EventType) int {
	return s.counts[typ]
}

// Last returns the events drained in the most recent update.
func (s *StatsSystem) Last() []ecs.Event {
	return s.last
}

func (s *StatsSystem) Reset() {
	s.counts = make(map[ecs.EventType]int)
	s.last = nil
}
