package table

import (
	"time"

	"github.com/ndnrtr/fwcore/std/types/priority_queue"
)

// eventID identifies a scheduled callback so it can be cancelled before it
// fires. It wraps the priority_queue item backing it.
type eventID struct {
	item *priority_queue.Item[*scheduledEvent, int64]
}

type scheduledEvent struct {
	at       time.Time
	fn       func()
	cancelled bool
}

// Scheduler is a monotonic single-threaded timer wheel: every forwarding
// thread owns one, and drains due events from its own event loop instead of
// firing goroutines, so strategy/table callbacks never race with packet
// processing on the same thread.
type Scheduler struct {
	q priority_queue.Queue[*scheduledEvent, int64]
}

// NewScheduler constructs an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{q: priority_queue.New[*scheduledEvent, int64]()}
}

// Schedule arranges for fn to run after delay, returning an ID that can be
// passed to Cancel. fn runs on whatever goroutine calls RunDue —
// normally the owning forwarding thread's event loop.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) *eventID {
	ev := &scheduledEvent{at: time.Now().Add(delay), fn: fn}
	item := s.q.Push(ev, ev.at.UnixNano())
	return &eventID{item: item}
}

// Cancel prevents a previously scheduled callback from running. It is a
// no-op if the event already fired.
func (s *Scheduler) Cancel(id *eventID) {
	if id == nil || id.item == nil {
		return
	}
	id.item.Value().cancelled = true
}

// NextDeadline returns the time of the next due event and true, or the zero
// time and false if nothing is scheduled. Callers use this to size a select
// timeout in the owning event loop.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	for s.q.Len() > 0 && s.q.Peek().cancelled {
		s.q.Pop()
	}
	if s.q.Len() == 0 {
		return time.Time{}, false
	}
	return s.q.Peek().at, true
}

// RunDue runs every scheduled callback whose deadline has passed.
func (s *Scheduler) RunDue() {
	now := time.Now()
	for s.q.Len() > 0 {
		ev := s.q.Peek()
		if ev.cancelled {
			s.q.Pop()
			continue
		}
		if ev.at.After(now) {
			return
		}
		s.q.Pop()
		ev.fn()
	}
}
