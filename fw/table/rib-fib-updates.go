package table

import (
	enc "github.com/ndnrtr/fwcore/std/encoding"
	mgmt "github.com/ndnrtr/fwcore/std/ndn/mgmt_2022"
)

// recomputeFib rebuilds the FIB's materialized entries for name and every
// RIB-registered descendant of name, since a route change at name can alter
// what its descendants inherit (a new ROUTE_FLAG_CAPTURE route blocks
// inheritance from above; removing one lets inheritance resume).
func (r *rib) recomputeFib(name enc.Name) {
	nte := r.nt.FindExactMatch(name)
	if nte == nil {
		return
	}

	inherited, _ := r.inheritedAbove(nte)
	r.applyFib(nte, inherited)
}

// inheritedAbove walks from the RIB tree's root down to (but not including)
// nte, folding in each ancestor's own ROUTE_FLAG_CHILD_INHERIT routes and
// resetting the accumulated set whenever an ancestor carries a
// ROUTE_FLAG_CAPTURE route of its own. It returns what nte's own entry would
// inherit, and whether capture occurred anywhere along the way.
func (r *rib) inheritedAbove(nte *NameTreeEntry) (map[uint64]uint64, bool) {
	var chain []*NameTreeEntry
	for e := nte.parent; e != nil; e = e.parent {
		chain = append(chain, e)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	inherited := map[uint64]uint64{}
	captured := false
	for _, e := range chain {
		if e.rib == nil {
			continue
		}
		if hasCapture(e.rib.routes) {
			inherited = map[uint64]uint64{}
			captured = true
		}
		foldChildInherit(inherited, e.rib.routes)
	}
	return inherited, captured
}

func hasCapture(routes []*Route) bool {
	for _, rt := range routes {
		if rt.hasFlag(mgmt.RouteFlagCapture) {
			return true
		}
	}
	return false
}

func foldChildInherit(into map[uint64]uint64, routes []*Route) {
	for _, rt := range routes {
		if !rt.hasFlag(mgmt.RouteFlagChildInherit) {
			continue
		}
		if cur, ok := into[rt.FaceID]; !ok || rt.Cost < cur {
			into[rt.FaceID] = rt.Cost
		}
	}
}

// applyFib recomputes nte's FIB entry from inheritedFromAbove and nte's own
// routes, writes it, then recurses into every child of nte that itself
// carries a RIB entry (or has a descendant that does), propagating whatever
// changed at nte further down the subtree.
func (r *rib) applyFib(nte *NameTreeEntry, inheritedFromAbove map[uint64]uint64) {
	var ownRoutes []*Route
	if nte.rib != nil {
		ownRoutes = nte.rib.routes
	}

	effective := map[uint64]uint64{}
	captured := hasCapture(ownRoutes)
	if !captured {
		for face, cost := range inheritedFromAbove {
			effective[face] = cost
		}
	}
	for _, rt := range ownRoutes {
		if cur, ok := effective[rt.FaceID]; !ok || rt.Cost < cur {
			effective[rt.FaceID] = rt.Cost
		}
	}

	// A capture point with nothing of its own still needs a materialized,
	// empty FIB entry so lookups stop here instead of falling through to an
	// ancestor's route; everywhere else an empty set just means "no entry".
	FibStrategyTable.setRibNextHopsEnc(nte.name, effective, captured && len(effective) == 0)

	downward := map[uint64]uint64{}
	if !captured {
		for face, cost := range inheritedFromAbove {
			downward[face] = cost
		}
	}
	foldChildInherit(downward, ownRoutes)

	for _, child := range nte.children {
		if ribSubtreeHasEntries(child) {
			r.applyFib(child, downward)
		}
	}
}

// ribSubtreeHasEntries reports whether nte or any of its descendants carries
// a RIB entry, i.e. whether recomputing the FIB below nte could matter.
func ribSubtreeHasEntries(nte *NameTreeEntry) bool {
	if nte.rib != nil {
		return true
	}
	for _, child := range nte.children {
		if ribSubtreeHasEntries(child) {
			return true
		}
	}
	return false
}
