package table

import (
	"sort"

	"github.com/ndnrtr/fwcore/fw/core"
	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// FibNextHopEntry is one next hop of a FIB entry: a face and the cost of
// routing through it.
type FibNextHopEntry struct {
	Nexthop uint64
	Cost    uint64
}

// baseFibStrategyEntry is a single NameTree-indexed FIB/StrategyChoice
// record: the next hops registered for its name, and the strategy chosen
// for it (possibly inherited from an ancestor at lookup time).
type baseFibStrategyEntry struct {
	component enc.Component
	name      enc.Name
	nexthops  []*FibNextHopEntry
	strategy  enc.Name

	// blockInherit marks an entry materialized by the RIB's capture
	// semantics: it stops FindNextHopsEnc's upward walk even when its own
	// nexthops list is empty, so a captured name with nothing registered
	// does not silently fall back to an ancestor's route.
	blockInherit bool
}

// Name returns the entry's full name.
func (e *baseFibStrategyEntry) Name() enc.Name { return e.name }

// GetStrategy returns the strategy name set directly on this entry. It does
// not walk up the tree; use FibStrategyTable.FindStrategyEnc for that.
func (e *baseFibStrategyEntry) GetStrategy() enc.Name { return e.strategy }

// GetNextHops returns the entry's next hops, sorted ascending by cost.
func (e *baseFibStrategyEntry) GetNextHops() []*FibNextHopEntry { return e.nexthops }

func (e *baseFibStrategyEntry) sortNextHops() {
	sort.Slice(e.nexthops, func(i, j int) bool {
		if e.nexthops[i].Cost != e.nexthops[j].Cost {
			return e.nexthops[i].Cost < e.nexthops[j].Cost
		}
		return e.nexthops[i].Nexthop < e.nexthops[j].Nexthop
	})
}

// fibStrategyTable is the combined FIB + StrategyChoice table: both are
// indexed by the same NameTree, matching the teacher's original pairing of
// the two under one name (table.FibStrategyTable).
type fibStrategyTable struct {
	nt *NameTree
}

// FibStrategyTable is the process-wide FIB/StrategyChoice table.
var FibStrategyTable = newFibStrategyTable()

func newFibStrategyTable() *fibStrategyTable {
	t := &fibStrategyTable{nt: newNameTree()}
	if core.C != nil {
		if strategy, err := enc.NameFromStr(core.C.Tables.Fib.DefaultStrategy); err == nil {
			t.SetStrategyEnc(enc.Name{}, strategy)
		}
	}
	return t
}

func hasFibStrategyEntry(e *NameTreeEntry) bool { return e.fibStrategy != nil }
func hasFibNextHops(e *NameTreeEntry) bool {
	return e.fibStrategy != nil && len(e.fibStrategy.nexthops) > 0
}
func hasFibNextHopsOrBlock(e *NameTreeEntry) bool {
	return e.fibStrategy != nil && (len(e.fibStrategy.nexthops) > 0 || e.fibStrategy.blockInherit)
}
func hasStrategy(e *NameTreeEntry) bool {
	return e.fibStrategy != nil && e.fibStrategy.strategy != nil
}

func (t *fibStrategyTable) entry(name enc.Name) (*baseFibStrategyEntry, error) {
	nte, err := t.nt.Lookup(name)
	if err != nil {
		return nil, err
	}
	if nte.fibStrategy == nil {
		var component enc.Component
		if len(name) > 0 {
			component = name[len(name)-1]
		}
		nte.fibStrategy = &baseFibStrategyEntry{component: component, name: name.Clone()}
	}
	return nte.fibStrategy, nil
}

// InsertNextHopEnc adds or updates a next hop on name's FIB entry.
func (t *fibStrategyTable) InsertNextHopEnc(name enc.Name, nexthop uint64, cost uint64) {
	entry, err := t.entry(name)
	if err != nil {
		return
	}
	for _, nh := range entry.nexthops {
		if nh.Nexthop == nexthop {
			nh.Cost = cost
			entry.sortNextHops()
			return
		}
	}
	entry.nexthops = append(entry.nexthops, &FibNextHopEntry{Nexthop: nexthop, Cost: cost})
	entry.sortNextHops()
}

// RemoveNextHopEnc removes a next hop from name's FIB entry, pruning the
// entry (and empty ancestors) if it is left with nothing.
func (t *fibStrategyTable) RemoveNextHopEnc(name enc.Name, nexthop uint64) {
	nte := t.nt.FindExactMatch(name)
	if nte == nil || nte.fibStrategy == nil {
		return
	}
	kept := nte.fibStrategy.nexthops[:0]
	for _, nh := range nte.fibStrategy.nexthops {
		if nh.Nexthop != nexthop {
			kept = append(kept, nh)
		}
	}
	nte.fibStrategy.nexthops = kept
	t.pruneIfEmptyEntry(nte)
}

func (t *fibStrategyTable) pruneIfEmptyEntry(nte *NameTreeEntry) {
	if nte.fibStrategy != nil &&
		len(nte.fibStrategy.nexthops) == 0 &&
		nte.fibStrategy.strategy == nil &&
		!nte.fibStrategy.blockInherit {
		nte.fibStrategy = nil
	}
	t.nt.EraseEntryIfEmpty(nte)
}

// setRibNextHopsEnc replaces all of name's next hops, including any added
// through InsertNextHopEnc, with hops (keyed by face ID, valued by cost),
// marking the entry as a capture
// boundary when blockInherit is set. It leaves any directly-configured
// strategy untouched.
func (t *fibStrategyTable) setRibNextHopsEnc(name enc.Name, hops map[uint64]uint64, blockInherit bool) {
	if len(hops) == 0 && !blockInherit {
		if nte := t.nt.FindExactMatch(name); nte != nil && nte.fibStrategy != nil {
			nte.fibStrategy.nexthops = nil
			nte.fibStrategy.blockInherit = false
			t.pruneIfEmptyEntry(nte)
		}
		return
	}

	entry, err := t.entry(name)
	if err != nil {
		return
	}
	entry.nexthops = entry.nexthops[:0]
	for face, cost := range hops {
		entry.nexthops = append(entry.nexthops, &FibNextHopEntry{Nexthop: face, Cost: cost})
	}
	entry.sortNextHops()
	entry.blockInherit = blockInherit
}

// FindNextHopsEnc returns the next hops of the longest prefix of name that
// has any registered, or nil if none exist. A RIB capture point materializes
// a blocking entry here even with zero next hops, so the walk correctly
// stops instead of falling through to an ancestor's route.
func (t *fibStrategyTable) FindNextHopsEnc(name enc.Name) []*FibNextHopEntry {
	nte := t.nt.FindLongestPrefixMatch(name, hasFibNextHopsOrBlock)
	if nte == nil {
		return nil
	}
	return nte.fibStrategy.nexthops
}

// SetStrategyEnc sets the strategy name used for Interests matching name.
func (t *fibStrategyTable) SetStrategyEnc(name enc.Name, strategy enc.Name) {
	entry, err := t.entry(name)
	if err != nil {
		return
	}
	entry.strategy = strategy
}

// UnSetStrategyEnc removes a directly-configured strategy choice for name,
// causing lookups to fall back to an ancestor's (or the root's) strategy.
func (t *fibStrategyTable) UnSetStrategyEnc(name enc.Name) {
	nte := t.nt.FindExactMatch(name)
	if nte == nil || nte.fibStrategy == nil {
		return
	}
	nte.fibStrategy.strategy = nil
	t.pruneIfEmptyEntry(nte)
}

// FindStrategyEnc returns the strategy name effective for name: its own
// choice if set, else the longest ancestor's, else the root's default.
func (t *fibStrategyTable) FindStrategyEnc(name enc.Name) enc.Name {
	nte := t.nt.FindLongestPrefixMatch(name, hasStrategy)
	if nte == nil {
		return nil
	}
	return nte.fibStrategy.strategy
}

// RemoveFace iterates every FIB entry and drops faceID from its next hops,
// pruning any entry (and empty ancestors) left with nothing. Used when a
// face goes down, so stale next hops don't linger in the FIB.
func (t *fibStrategyTable) RemoveFace(faceID uint64) {
	for _, nte := range t.nt.table {
		if nte.fibStrategy == nil || len(nte.fibStrategy.nexthops) == 0 {
			continue
		}
		kept := nte.fibStrategy.nexthops[:0]
		for _, nh := range nte.fibStrategy.nexthops {
			if nh.Nexthop != faceID {
				kept = append(kept, nh)
			}
		}
		nte.fibStrategy.nexthops = kept
		t.pruneIfEmptyEntry(nte)
	}
}

// GetAllFIBEntries returns every FIB entry that has at least one next hop.
func (t *fibStrategyTable) GetAllFIBEntries() []*baseFibStrategyEntry {
	var ret []*baseFibStrategyEntry
	for _, nte := range t.nt.table {
		if nte.fibStrategy != nil && len(nte.fibStrategy.nexthops) > 0 {
			ret = append(ret, nte.fibStrategy)
		}
	}
	return ret
}

// GetAllForwardingStrategies returns every entry with a directly-configured
// strategy choice.
func (t *fibStrategyTable) GetAllForwardingStrategies() []*baseFibStrategyEntry {
	var ret []*baseFibStrategyEntry
	for _, nte := range t.nt.table {
		if nte.fibStrategy != nil && nte.fibStrategy.strategy != nil {
			ret = append(ret, nte.fibStrategy)
		}
	}
	return ret
}

// GetNumFIBEntries returns the number of FIB entries with next hops.
func (t *fibStrategyTable) GetNumFIBEntries() int {
	return len(t.GetAllFIBEntries())
}
