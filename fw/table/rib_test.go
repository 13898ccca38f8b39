package table

import (
	"testing"

	mgmt "github.com/ndnrtr/fwcore/std/ndn/mgmt_2022"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/stretchr/testify/assert"
)

// fibNextHopFaces extracts the set of next-hop face IDs FindNextHopsEnc
// returned, ignoring cost/order, so assertions read as plain set membership.
func fibNextHopFaces(hops []*FibNextHopEntry) map[uint64]uint64 {
	ret := make(map[uint64]uint64, len(hops))
	for _, h := range hops {
		ret[h.Nexthop] = h.Cost
	}
	return ret
}

// A child-inherit route registered above a name is visible in that name's
// FIB entry until a capture route below it replaces, rather than
// supplements, whatever it would otherwise have inherited. Uses
// Rib (the process-wide singleton) and FibStrategyTable directly, under a
// name prefix unique to this test so it cannot collide with any other
// test's routes on the same singletons.
func TestRibChildInheritAndCapture(t *testing.T) {
	root, _ := enc.NameFromStr("/riblib-s2")
	a, _ := enc.NameFromStr("/riblib-s2/a")
	ab, _ := enc.NameFromStr("/riblib-s2/a/b")

	Rib.AddEncRoute(root, &Route{
		FaceID: 1, Origin: uint64(mgmt.RouteOriginApp), Cost: 10,
		Flags: uint64(mgmt.RouteFlagChildInherit),
	})

	// /a and /a/b both inherit face 1 from the root, having no routes of
	// their own yet.
	assert.Equal(t, map[uint64]uint64{1: 10}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(a)))
	assert.Equal(t, map[uint64]uint64{1: 10}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(ab)))

	// A capture route at /a blocks inheritance from the root: /a now sees
	// only its own face, and so does /a/b below it.
	Rib.AddEncRoute(a, &Route{
		FaceID: 2, Origin: uint64(mgmt.RouteOriginApp), Cost: 20,
		Flags: uint64(mgmt.RouteFlagCapture),
	})

	assert.Equal(t, map[uint64]uint64{2: 20}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(a)))
	assert.Equal(t, map[uint64]uint64{2: 20}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(ab)))

	// Removing the capture route lets /a and /a/b resume inheriting from
	// the root.
	Rib.RemoveRouteEnc(a, 2, uint64(mgmt.RouteOriginApp))
	assert.Equal(t, map[uint64]uint64{1: 10}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(a)))
	assert.Equal(t, map[uint64]uint64{1: 10}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(ab)))

	Rib.RemoveRouteEnc(root, 1, uint64(mgmt.RouteOriginApp))
}

// EraseFace removes every route a face holds anywhere in the RIB, cascading
// the FIB recomputation to every affected name, not just the one nearest the
// root.
func TestRibEraseFaceCascades(t *testing.T) {
	root, _ := enc.NameFromStr("/riblib-s3")
	a, _ := enc.NameFromStr("/riblib-s3/a")
	b, _ := enc.NameFromStr("/riblib-s3/a/b")
	c, _ := enc.NameFromStr("/riblib-s3/a/c")

	Rib.AddEncRoute(root, &Route{FaceID: 1, Origin: uint64(mgmt.RouteOriginApp), Cost: 10})
	Rib.AddEncRoute(a, &Route{FaceID: 1, Origin: uint64(mgmt.RouteOriginApp), Cost: 10})
	Rib.AddEncRoute(b, &Route{FaceID: 1, Origin: uint64(mgmt.RouteOriginApp), Cost: 10})
	Rib.AddEncRoute(c, &Route{FaceID: 2, Origin: uint64(mgmt.RouteOriginApp), Cost: 10})

	assert.NotNil(t, FibStrategyTable.FindNextHopsEnc(root))
	assert.NotNil(t, FibStrategyTable.FindNextHopsEnc(a))
	assert.NotNil(t, FibStrategyTable.FindNextHopsEnc(b))

	Rib.EraseFace(1)

	assert.Nil(t, FibStrategyTable.FindNextHopsEnc(root))
	assert.Nil(t, FibStrategyTable.FindNextHopsEnc(a))
	assert.Nil(t, FibStrategyTable.FindNextHopsEnc(b))
	// Face 2's route at /a/c is untouched.
	assert.Equal(t, map[uint64]uint64{2: 10}, fibNextHopFaces(FibStrategyTable.FindNextHopsEnc(c)))

	for _, e := range Rib.GetAllEntries() {
		if e.Name.IsPrefix(root) || root.IsPrefix(e.Name) {
			for _, rt := range e.GetRoutes() {
				assert.NotEqual(t, uint64(1), rt.FaceID)
			}
		}
	}

	Rib.EraseFace(2)
}

// FindNextHopsEnc performs a longest-prefix-match lookup: a name with no FIB
// entry of its own falls back to the nearest registered ancestor.
func TestFibFindNextHopsEncLongestPrefixMatch(t *testing.T) {
	root, _ := enc.NameFromStr("/riblib-s5")
	deep, _ := enc.NameFromStr("/riblib-s5/x/y/z")

	assert.Nil(t, FibStrategyTable.FindNextHopsEnc(deep))

	Rib.AddEncRoute(root, &Route{
		FaceID: 7, Origin: uint64(mgmt.RouteOriginApp), Cost: 5,
		Flags: uint64(mgmt.RouteFlagChildInherit),
	})

	hops := FibStrategyTable.FindNextHopsEnc(deep)
	assert.Equal(t, map[uint64]uint64{7: 5}, fibNextHopFaces(hops))

	Rib.RemoveRouteEnc(root, 7, uint64(mgmt.RouteOriginApp))
	assert.Nil(t, FibStrategyTable.FindNextHopsEnc(deep))
}
