package table

import (
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	mgmt "github.com/ndnrtr/fwcore/std/ndn/mgmt_2022"
)

// Route is one RIB registration: a face reachable for a name, the origin
// that registered it, its cost, and its ChildInherit/Capture flags.
type Route struct {
	FaceID           uint64
	Origin           uint64
	Cost             uint64
	Flags            uint64
	ExpirationPeriod *time.Duration
	expiry           *eventID
}

// hasFlag reports whether f is set on the route's Flags bitmask.
func (r *Route) hasFlag(f mgmt.RouteFlag) bool {
	return mgmt.RouteFlag(r.Flags)&f != 0
}

// sameKey reports whether two routes identify the same (face, origin) pair,
// the key NFD uses to decide "update in place" vs. "new route".
func (r *Route) sameKey(o *Route) bool {
	return r.FaceID == o.FaceID && r.Origin == o.Origin
}

// ribEntry is one name's set of registered routes.
type ribEntry struct {
	Name   enc.Name
	routes []*Route
}

// GetRoutes returns the entry's routes.
func (e *ribEntry) GetRoutes() []*Route { return e.routes }

// rib is the Routing Information Base: per-name route registrations from
// which the FIB's next-hop lists are (re)derived.
type rib struct {
	nt    *NameTree
	sched *Scheduler
}

// Rib is the process-wide Routing Information Base.
var Rib = newRib()

func newRib() *rib {
	return &rib{nt: newNameTree()}
}

// SetScheduler attaches the Scheduler used for route expiration. Called once
// at startup once a forwarding thread's Scheduler exists.
func (r *rib) SetScheduler(s *Scheduler) { r.sched = s }

// ribOf returns (creating if necessary) the ribEntry attached to nte.
func (r *rib) ribOf(nte *NameTreeEntry, name enc.Name) *ribEntry {
	if nte.rib == nil {
		nte.rib = &ribEntry{Name: name.Clone()}
	}
	return nte.rib
}

// AddEncRoute registers (or updates, if a route already exists for the same
// face+origin) route under name, then recomputes the FIB for name's subtree.
func (r *rib) AddEncRoute(name enc.Name, route *Route) {
	nte, err := r.nt.Lookup(name)
	if err != nil {
		return
	}
	re := r.ribOf(nte, name)

	replaced := false
	for i, existing := range re.routes {
		if existing.sameKey(route) {
			if existing.expiry != nil && r.sched != nil {
				r.sched.Cancel(existing.expiry)
			}
			re.routes[i] = route
			replaced = true
			break
		}
	}
	if !replaced {
		re.routes = append(re.routes, route)
	}

	if route.ExpirationPeriod != nil && r.sched != nil {
		period := *route.ExpirationPeriod
		route.expiry = r.sched.Schedule(period, func() {
			r.RemoveRouteEnc(name, route.FaceID, route.Origin)
		})
	}

	readvertiseAnnounce(name, route)
	r.recomputeFib(name)
}

// RemoveRouteEnc removes the route registered under name for (faceID,
// origin), then recomputes the FIB for name's subtree.
func (r *rib) RemoveRouteEnc(name enc.Name, faceID uint64, origin uint64) {
	nte := r.nt.FindExactMatch(name)
	if nte == nil || nte.rib == nil {
		return
	}
	kept := nte.rib.routes[:0]
	var removed *Route
	for _, rt := range nte.rib.routes {
		if rt.FaceID == faceID && rt.Origin == origin {
			removed = rt
			continue
		}
		kept = append(kept, rt)
	}
	nte.rib.routes = kept
	if len(nte.rib.routes) == 0 {
		nte.rib = nil
	}

	if removed != nil {
		readvertiseWithdraw(name, removed)
	}
	r.recomputeFib(name)
	r.nt.EraseEntryIfEmpty(nte)
}

// EraseFace removes every route registered for faceID across the whole RIB,
// recomputing the FIB for each affected name as it goes. Used when a face
// goes down: every route it held anywhere in the tree must disappear, not
// just the one RemoveRouteEnc would touch at a single name.
func (r *rib) EraseFace(faceID uint64) {
	type key struct {
		name   enc.Name
		origin uint64
	}
	var toRemove []key
	for _, nte := range r.nt.table {
		if nte.rib == nil {
			continue
		}
		for _, rt := range nte.rib.routes {
			if rt.FaceID == faceID {
				toRemove = append(toRemove, key{name: nte.rib.Name, origin: rt.Origin})
			}
		}
	}
	for _, k := range toRemove {
		r.RemoveRouteEnc(k.name, faceID, k.origin)
	}
}

// GetAllEntries returns every name with at least one registered route.
func (r *rib) GetAllEntries() []*ribEntry {
	var ret []*ribEntry
	for _, nte := range r.nt.table {
		if nte.rib != nil {
			ret = append(ret, nte.rib)
		}
	}
	return ret
}
