package table

import (
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// measurementsDefaultLifetime is how long a fresh Measurements entry lives
// before its strategy-private data is pruned, absent an ExtendLifetime call.
const measurementsDefaultLifetime = 4 * time.Second

// measurementsEntry holds per-strategy measurement data for one name,
// opaque to everything except the strategy that stored it.
type measurementsEntry struct {
	name    enc.Name
	expiry  time.Time
	cleanup *eventID
	data    map[string]any
}

// Name returns the name this entry measures.
func (e *measurementsEntry) Name() enc.Name { return e.name }

// Get retrieves a strategy-private value stored under key, if any.
func (e *measurementsEntry) Get(key string) (any, bool) {
	v, ok := e.data[key]
	return v, ok
}

// Set stores a strategy-private value under key.
func (e *measurementsEntry) Set(key string, v any) {
	if e.data == nil {
		e.data = make(map[string]any)
	}
	e.data[key] = v
}

// Measurements is the per-name strategy scratchpad, indexed through the
// same NameTree the FIB and PIT use.
type Measurements struct {
	nt        *NameTree
	sched     *Scheduler
	nItems    int
	onExpired func(*measurementsEntry)
}

// NewMeasurements constructs a Measurements table backed by nt, scheduling
// entry cleanup on sched.
func NewMeasurements(nt *NameTree, sched *Scheduler) *Measurements {
	return &Measurements{nt: nt, sched: sched}
}

func hasMeasurementsEntry(e *NameTreeEntry) bool { return e.measurements != nil }

// Get returns the Measurements entry for name, creating it (with the
// default lifetime) if it does not already exist.
func (m *Measurements) Get(name enc.Name) (*measurementsEntry, error) {
	nte, err := m.nt.Lookup(name)
	if err != nil {
		return nil, err
	}
	if nte.measurements != nil {
		return nte.measurements, nil
	}
	entry := &measurementsEntry{name: name.Clone()}
	nte.measurements = entry
	m.nItems++
	m.scheduleCleanup(entry, measurementsDefaultLifetime)
	return entry, nil
}

// GetParent returns the Measurements entry for child's immediate parent
// prefix, or nil if child is already the root name.
func (m *Measurements) GetParent(child *measurementsEntry) (*measurementsEntry, error) {
	if len(child.name) == 0 {
		return nil, nil
	}
	return m.Get(child.name[:len(child.name)-1])
}

// FindLongestPrefixMatch returns the Measurements entry of the longest
// prefix of name that has one, or nil.
func (m *Measurements) FindLongestPrefixMatch(name enc.Name) *measurementsEntry {
	nte := m.nt.FindLongestPrefixMatch(name, hasMeasurementsEntry)
	if nte == nil {
		return nil
	}
	return nte.measurements
}

// FindExactMatch returns the Measurements entry for exactly name, or nil.
func (m *Measurements) FindExactMatch(name enc.Name) *measurementsEntry {
	nte := m.nt.FindExactMatch(name)
	if nte == nil {
		return nil
	}
	return nte.measurements
}

// ExtendLifetime pushes entry's expiry to at least lifetime from now,
// never shortening it.
func (m *Measurements) ExtendLifetime(entry *measurementsEntry, lifetime time.Duration) {
	found := m.FindExactMatch(entry.name)
	if found == nil {
		return
	}
	expiry := time.Now().Add(lifetime)
	if !found.expiry.Before(expiry) {
		return
	}
	if found.cleanup != nil {
		m.sched.Cancel(found.cleanup)
	}
	found.expiry = expiry
	m.scheduleCleanup(found, lifetime)
}

func (m *Measurements) scheduleCleanup(entry *measurementsEntry, lifetime time.Duration) {
	entry.expiry = time.Now().Add(lifetime)
	entry.cleanup = m.sched.Schedule(lifetime, func() { m.cleanup(entry) })
}

func (m *Measurements) cleanup(entry *measurementsEntry) {
	nte := m.nt.FindExactMatch(entry.name)
	if nte == nil {
		return
	}
	nte.measurements = nil
	m.nItems--
	m.nt.EraseEntryIfEmpty(nte)
}

// Size returns the number of live Measurements entries.
func (m *Measurements) Size() int { return m.nItems }
