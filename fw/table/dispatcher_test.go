package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// RunDue fires every callback whose deadline has already passed, in deadline
// order, and leaves later callbacks untouched.
func TestSchedulerRunDueFiresExpiredEventsInOrder(t *testing.T) {
	sched := NewScheduler()
	var fired []int

	sched.Schedule(0, func() { fired = append(fired, 1) })
	sched.Schedule(0, func() { fired = append(fired, 2) })
	sched.Schedule(time.Hour, func() { fired = append(fired, 3) })

	time.Sleep(time.Millisecond)
	sched.RunDue()

	assert.Equal(t, []int{1, 2}, fired)

	deadline, ok := sched.NextDeadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

// Cancel prevents a scheduled callback from running, even once its deadline
// has passed.
func TestSchedulerCancelPreventsFiring(t *testing.T) {
	sched := NewScheduler()
	fired := false

	id := sched.Schedule(0, func() { fired = true })
	sched.Cancel(id)

	time.Sleep(time.Millisecond)
	sched.RunDue()

	assert.False(t, fired)
}

// NextDeadline reports false once every scheduled (and not-cancelled) event
// has fired.
func TestSchedulerNextDeadlineEmptyAfterDraining(t *testing.T) {
	sched := NewScheduler()
	_, ok := sched.NextDeadline()
	assert.False(t, ok)

	sched.Schedule(0, func() {})
	_, ok = sched.NextDeadline()
	assert.True(t, ok)

	time.Sleep(time.Millisecond)
	sched.RunDue()

	_, ok = sched.NextDeadline()
	assert.False(t, ok)
}

// NextDeadline skips over cancelled events rather than reporting their
// now-irrelevant deadline.
func TestSchedulerNextDeadlineSkipsCancelled(t *testing.T) {
	sched := NewScheduler()
	id := sched.Schedule(0, func() {})
	sched.Schedule(time.Hour, func() {})

	sched.Cancel(id)

	deadline, ok := sched.NextDeadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now().Add(time.Minute)))
}
