package table

import (
	"testing"
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/stretchr/testify/assert"
)

// Get creates a new entry with the default lifetime on first call, and
// returns the same entry (without creating a second one) on later calls for
// the same name.
func TestMeasurementsGetCreatesThenReuses(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	m := NewMeasurements(nt, sched)
	name, _ := enc.NameFromStr("/a/b")

	entry, err := m.Get(name)
	assert.Nil(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, 1, m.Size())

	again, err := m.Get(name)
	assert.Nil(t, err)
	assert.Same(t, entry, again)
	assert.Equal(t, 1, m.Size())
}

// GetParent returns the Measurements entry of the immediate parent prefix,
// creating it if necessary, and nil for the root name.
func TestMeasurementsGetParent(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	m := NewMeasurements(nt, sched)
	childName, _ := enc.NameFromStr("/a/b")
	parentName, _ := enc.NameFromStr("/a")

	child, err := m.Get(childName)
	assert.Nil(t, err)

	parent, err := m.GetParent(child)
	assert.Nil(t, err)
	assert.NotNil(t, parent)
	assert.True(t, parent.Name().Equal(parentName))

	root, err := m.Get(enc.Name{})
	assert.Nil(t, err)
	grandparent, err := m.GetParent(root)
	assert.Nil(t, err)
	assert.Nil(t, grandparent)
}

// FindLongestPrefixMatch and FindExactMatch only see names that already have
// a live entry, and FindLongestPrefixMatch falls back to a shorter prefix.
func TestMeasurementsFindMatches(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	m := NewMeasurements(nt, sched)
	aName, _ := enc.NameFromStr("/a")
	abcName, _ := enc.NameFromStr("/a/b/c")

	assert.Nil(t, m.FindExactMatch(abcName))
	assert.Nil(t, m.FindLongestPrefixMatch(abcName))

	_, err := m.Get(aName)
	assert.Nil(t, err)

	assert.Nil(t, m.FindExactMatch(abcName))
	match := m.FindLongestPrefixMatch(abcName)
	assert.NotNil(t, match)
	assert.True(t, match.Name().Equal(aName))
}

// ExtendLifetime only ever pushes an entry's expiry further out, never pulls
// it closer, matching the never-shortens contract.
func TestMeasurementsExtendLifetimeNeverShortens(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	m := NewMeasurements(nt, sched)
	name, _ := enc.NameFromStr("/a")

	entry, err := m.Get(name)
	assert.Nil(t, err)
	originalExpiry := entry.expiry

	m.ExtendLifetime(entry, time.Millisecond)
	assert.Equal(t, originalExpiry, entry.expiry)

	m.ExtendLifetime(entry, time.Hour)
	assert.True(t, entry.expiry.After(originalExpiry))
}

// An entry's scheduled cleanup removes it from the table (and prunes its
// NameTreeEntry) once its lifetime elapses and the scheduler is run.
//
// TODO: this sleeps past a short real lifetime rather than mocking time.Now,
// since Scheduler has no injectable clock.
func TestMeasurementsEntryExpiresAndIsPruned(t *testing.T) {
	nt := NewNameTree()
	sched := NewScheduler()
	m := NewMeasurements(nt, sched)
	name, _ := enc.NameFromStr("/a")

	entry, err := m.Get(name)
	assert.Nil(t, err)
	sched.Cancel(entry.cleanup)
	m.scheduleCleanup(entry, 5*time.Millisecond)

	assert.Equal(t, 1, m.Size())
	assert.NotNil(t, m.FindExactMatch(name))

	time.Sleep(20 * time.Millisecond)
	sched.RunDue()

	assert.Equal(t, 0, m.Size())
	assert.Nil(t, m.FindExactMatch(name))
	assert.Nil(t, nt.FindExactMatch(name))
}
