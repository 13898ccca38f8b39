/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"fmt"

	"github.com/ndnrtr/fwcore/fw/defn"
	"github.com/ndnrtr/fwcore/fw/table"
)

// Strategy decides, for one forwarding thread, where and when a pending
// Interest is forwarded and how a satisfying Data is sent back.
type Strategy interface {
	fmt.Stringer

	// Instantiate binds the strategy to fwThread, normally by calling
	// NewStrategyBase from within it.
	Instantiate(fwThread *Thread)

	// AfterReceiveInterest runs once per arriving Interest (new or a
	// retransmission), after the Content Store has been consulted and
	// missed, and the FIB lookup for pitEntry's name has produced nexthops.
	AfterReceiveInterest(packet *defn.Pkt, pitEntry table.PitEntry, inFace uint64, nexthops []*table.FibNextHopEntry)

	// AfterContentStoreHit runs when an Interest is satisfied directly from
	// the Content Store, before any Interest forwarding would occur.
	AfterContentStoreHit(packet *defn.Pkt, pitEntry table.PitEntry, inFace uint64)

	// AfterReceiveData runs once per Data packet matching pitEntry, after it
	// has been admitted into the Content Store.
	AfterReceiveData(packet *defn.Pkt, pitEntry table.PitEntry, inFace uint64)

	// BeforeSatisfyInterest runs immediately before pitEntry is marked
	// satisfied, giving the strategy a last chance to record measurements.
	BeforeSatisfyInterest(pitEntry table.PitEntry, inFace uint64)
}

// StrategyBase is the common functionality every concrete Strategy embeds:
// binding to a Thread, naming/versioning, and the Send* primitives that
// route through the thread's FaceTable lookups and counters.
type StrategyBase struct {
	thread  *Thread
	name    string
	version uint64
}

// NewStrategyBase binds a strategy to fwThread under name/version, the pair
// StrategyVersions and the FIB's StrategyChoice entries name it by.
func (s *StrategyBase) NewStrategyBase(fwThread *Thread, name string, version uint64) {
	s.thread = fwThread
	s.name = name
	s.version = version
}

// String identifies the strategy by its registered base name, matching the
// key Thread.strategies and StrategyVersions use for it.
func (s *StrategyBase) String() string { return s.name }

// SendInterest forwards packet out nexthop on behalf of pitEntry, unless
// nexthop is the face the Interest arrived on (split horizon: never send an
// Interest back the way it came).
func (s *StrategyBase) SendInterest(packet *defn.Pkt, pitEntry table.PitEntry, nexthop uint64, inFace uint64) {
	if nexthop == inFace {
		return
	}
	s.thread.sendInterest(packet, pitEntry, nexthop)
}

// SendData sends packet out outFace to satisfy an in-record of pitEntry.
// inFace is the face the Data arrived on (0 if sourced from the Content
// Store); it is accepted for strategies that want to log or measure it, but
// SendData itself places no restriction based on it, since the Data is
// already known-good (unlike a fresh Interest, which must respect split
// horizon).
func (s *StrategyBase) SendData(packet *defn.Pkt, pitEntry table.PitEntry, outFace uint64, inFace uint64) {
	s.thread.sendData(packet, outFace)
}
