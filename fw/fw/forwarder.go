/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package fw is the forwarding pipeline: per-thread Interest/Data processing
// and the Strategy hooks that decide where an Interest is sent.
package fw

import (
	"fmt"
	"time"

	"github.com/ndnrtr/fwcore/fw/core"
	"github.com/ndnrtr/fwcore/fw/defn"
	"github.com/ndnrtr/fwcore/fw/dispatch"
	"github.com/ndnrtr/fwcore/fw/face"
	"github.com/ndnrtr/fwcore/fw/table"
	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// strategyInit collects every registered strategy's constructor. Each
// strategy appends to it from its own init() (see multicast.go).
var strategyInit []func() Strategy

// StrategyVersions maps a strategy's base name to every version registered
// under it, populated the same way as strategyInit.
var StrategyVersions = make(map[string][]uint64)

// CfgNumThreads returns the number of forwarding threads configured.
func CfgNumThreads() int {
	if core.C != nil && core.C.Fw.Threads > 0 {
		return core.C.Fw.Threads
	}
	return 1
}

// Thread is one forwarding thread: the per-thread NameTree-backed Pit, Cs,
// and Measurements tables, the Scheduler driving their timers, and the
// strategies instantiated against it. The FIB/StrategyChoice table and the
// RIB are process-wide (table.FibStrategyTable, table.Rib), not per-thread.
type Thread struct {
	*dispatch.FWThread

	nt           *table.NameTree
	sched        *table.Scheduler
	pit          *table.Pit
	cs           *table.Cs
	measurements *table.Measurements

	strategies map[string]Strategy
}

// String identifies the thread for core.Log's Stringer-based call sites.
func (t *Thread) String() string { return fmt.Sprintf("fw-thread (id=%d)", t.ID) }

// NewThread constructs forwarding thread id, instantiating every strategy
// registered via strategyInit against it and registering it with dispatch so
// Dispatch() can route packets to it.
func NewThread(id int) *Thread {
	nt := table.NewNameTree()
	sched := table.NewScheduler()
	retainExpired := core.C != nil && core.C.Tables.Pit.RetainExpired

	t := &Thread{
		FWThread:     dispatch.NewFWThread(id, 1024),
		nt:           nt,
		sched:        sched,
		pit:          table.NewPit(nt, sched, retainExpired),
		cs:           table.NewCs(nt, table.CfgCsCapacity(), table.CfgCsAdmit(), table.CfgCsServe()),
		measurements: table.NewMeasurements(nt, sched),
		strategies:   make(map[string]Strategy),
	}

	for _, ctor := range strategyInit {
		s := ctor()
		s.Instantiate(t)
		t.strategies[s.String()] = s
	}

	dispatch.AddThread(t.FWThread)
	return t
}

// strategyFor resolves the Strategy effective for name: the base name
// (e.g. "multicast") registered on the FIB entry governing name, falling
// back to an arbitrary instantiated strategy (map iteration order) if none
// matches.
func (t *Thread) strategyFor(name enc.Name) Strategy {
	if full := table.FibStrategyTable.FindStrategyEnc(name); full != nil {
		if s, ok := t.strategies[strategyBaseName(full)]; ok {
			return s
		}
	}
	for _, s := range t.strategies {
		return s
	}
	return nil
}

// strategyBaseName extracts the component naming a strategy (e.g.
// "multicast") out of its full name under defn.STRATEGY_PREFIX
// (/localhost/nfd/strategy/<name>/v=<version>).
func strategyBaseName(full enc.Name) string {
	prefixLen := len(defn.STRATEGY_PREFIX)
	if len(full) <= prefixLen {
		return ""
	}
	return string(full[prefixLen].Val)
}

// Run processes queued packets until stop is closed, periodically running
// the Scheduler's due timers (PIT expiration, Measurements cleanup).
func (t *Thread) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case q := <-t.Queue:
			t.processPacket(q)
		case <-ticker.C:
			t.sched.RunDue()
		}
	}
}

func (t *Thread) processPacket(q *dispatch.QueuedPkt) {
	pkt := q.Pkt
	switch {
	case pkt.L3.Interest != nil:
		t.onIncomingInterest(pkt, q.InFace)
	case pkt.L3.Data != nil:
		t.onIncomingData(pkt, q.InFace)
	}
}

// onIncomingInterest implements the Interest-arrival half of the forwarding
// pipeline: Content Store lookup, PIT insertion, FIB lookup, and the
// strategy's AfterContentStoreHit/AfterReceiveInterest hooks.
func (t *Thread) onIncomingInterest(pkt *defn.Pkt, inFace uint64) {
	interest := pkt.L3.Interest
	t.UpdateCounters(func(c *dispatch.Counters) { c.NInInterests++ })

	if cached := t.lookupCs(interest); cached != nil {
		t.UpdateCounters(func(c *dispatch.Counters) { c.NCsHits++ })
		data, wire, err := cached.Copy()
		if err == nil {
			pitEntry, _, perr := t.pit.FindOrInsert(interest)
			if perr == nil {
				if s := t.strategyFor(interest.NameV); s != nil {
					s.AfterContentStoreHit(&defn.Pkt{Name: data.NameV, Raw: wire, L3: defn.L3Value{Data: data}}, pitEntry, inFace)
				}
			}
		}
		return
	}
	t.UpdateCounters(func(c *dispatch.Counters) { c.NCsMisses++ })

	pitEntry, _, err := t.pit.FindOrInsert(interest)
	if err != nil {
		return
	}

	// Loop detection: an Interest carrying a nonce already recorded in one
	// of this entry's out-records has already been forwarded and come back
	// around, rather than arrived as a fresh retransmission. Drop it without
	// touching the PIT, matching NFD's nonce-based loop check.
	if nonce, ok := interest.NonceV.Get(); ok {
		for _, out := range pitEntry.OutRecords() {
			if out.LatestNonce == nonce {
				core.Log.Info(t, "Dropping looped Interest", "name", interest.NameV, "nonce", nonce)
				return
			}
		}
	}

	pitEntry.InsertInRecord(interest, inFace, pkt.PitToken)
	t.UpdateCounters(func(c *dispatch.Counters) { c.NPitEntries = uint64(t.pit.Size()) })

	nexthops := table.FibStrategyTable.FindNextHopsEnc(interest.NameV)
	if s := t.strategyFor(interest.NameV); s != nil {
		s.AfterReceiveInterest(pkt, pitEntry, inFace, nexthops)
	}
}

// lookupCs consults the Content Store for an Interest, using an exact match
// unless the Interest allows a descendant (CanBePrefix).
func (t *Thread) lookupCs(interest *defn.FwInterest) interface {
	Copy() (*defn.FwData, enc.Wire, error)
} {
	if interest.CanBePrefixV {
		if e := t.cs.FindPrefixMatch(interest.NameV, interest.MustBeFreshV); e != nil {
			return e
		}
		return nil
	}
	if e := t.cs.FindExactMatch(interest.NameV, interest.MustBeFreshV); e != nil {
		return e
	}
	return nil
}

// onIncomingData implements the Data-arrival half of the pipeline: PIT
// matching (digest-first, see table.Pit.FindMatches), Content Store
// insertion, and the strategy's AfterReceiveData hook per satisfied entry.
func (t *Thread) onIncomingData(pkt *defn.Pkt, inFace uint64) {
	data := pkt.L3.Data
	t.UpdateCounters(func(c *dispatch.Counters) { c.NInData++ })

	if err := t.cs.Insert(data.NameV, data.WireV, freshnessOf(data)); err == nil {
		t.UpdateCounters(func(c *dispatch.Counters) { c.NCsEntries = uint64(t.cs.Size()) })
	}

	matches := t.pit.FindMatches(data)
	if len(matches) == 0 {
		t.UpdateCounters(func(c *dispatch.Counters) { c.NUnsatisfiedInterests++ })
		return
	}

	for _, pitEntry := range matches {
		if s := t.strategyFor(pitEntry.EncName()); s != nil {
			s.BeforeSatisfyInterest(pitEntry, inFace)
			s.AfterReceiveData(pkt, pitEntry, inFace)
		}
		pitEntry.SetSatisfied(true)
		t.UpdateCounters(func(c *dispatch.Counters) { c.NSatisfiedInterests++ })
		if !(core.C != nil && core.C.Tables.Pit.RetainExpired) {
			t.pit.Erase(pitEntry)
		}
	}
	t.UpdateCounters(func(c *dispatch.Counters) { c.NPitEntries = uint64(t.pit.Size()) })
}

// freshnessOf returns a Data's FreshnessPeriod as a time.Duration, zero if
// it didn't carry one (i.e. it's non-fresh the instant it's cached).
func freshnessOf(data *defn.FwData) time.Duration {
	if ms, ok := data.FreshV.Get(); ok {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

// sendInterest is StrategyBase.SendInterest's implementation: it records an
// out-record and hands the packet to the named face.
func (t *Thread) sendInterest(pkt *defn.Pkt, pitEntry table.PitEntry, nexthop uint64) {
	if f := face.FaceTable.Get(nexthop); f != nil {
		pitEntry.InsertOutRecord(pkt.L3.Interest, nexthop)
		f.SendPacket(pkt)
		t.UpdateCounters(func(c *dispatch.Counters) { c.NOutInterests++ })
	}
}

// sendData is StrategyBase.SendData's implementation: it forwards pkt to
// outFace.
func (t *Thread) sendData(pkt *defn.Pkt, outFace uint64) {
	if f := face.FaceTable.Get(outFace); f != nil {
		f.SendPacket(pkt)
		t.UpdateCounters(func(c *dispatch.Counters) { c.NOutData++ })
	}
}
