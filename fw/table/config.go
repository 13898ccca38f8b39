package table

import "github.com/ndnrtr/fwcore/fw/core"

// csConfigState mirrors the subset of core.C.Tables.Cs that can be changed
// at runtime via management, since core.C itself is meant to reflect the
// on-disk config rather than live operational state.
var csConfigState = struct {
	capacity int
	admit    bool
	serve    bool
}{capacity: 1024, admit: true, serve: true}

func init() {
	if core.C != nil {
		csConfigState.capacity = core.C.Tables.Cs.Capacity
		csConfigState.admit = core.C.Tables.Cs.Admit
		csConfigState.serve = core.C.Tables.Cs.Serve
	}
}

// CfgCsCapacity returns the Content Store's configured capacity.
func CfgCsCapacity() int { return csConfigState.capacity }

// CfgSetCsCapacity updates the Content Store's configured capacity.
func CfgSetCsCapacity(capacity int) { csConfigState.capacity = capacity }

// CfgCsAdmit returns whether the Content Store admits new Data.
func CfgCsAdmit() bool { return csConfigState.admit }

// CfgSetCsAdmit sets whether the Content Store admits new Data.
func CfgSetCsAdmit(admit bool) { csConfigState.admit = admit }

// CfgCsServe returns whether the Content Store may satisfy Interests from
// its cache.
func CfgCsServe() bool { return csConfigState.serve }

// CfgSetCsServe sets whether the Content Store may satisfy Interests from
// its cache.
func CfgSetCsServe(serve bool) { csConfigState.serve = serve }
