/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package defn holds the basic definitions shared across the forwarder:
// scope/link-type enums, packet envelopes, and face URIs. Everything here
// is intentionally dependency-light since both fw/face and fw/table import it.
package defn

import (
	"errors"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// MaxNDNPacketSize is the maximum allowed size of an NDN packet (link layer payload).
const MaxNDNPacketSize = 8800

// Scope indicates whether a face is connected to a local or non-local endpoint.
type Scope int

const (
	NonLocal Scope = iota
	Local
)

// Returns the human-readable name of the Scope value.
func (s Scope) String() string {
	switch s {
	case Local:
		return "local"
	case NonLocal:
		return "non-local"
	default:
		return "unknown"
	}
}

// LinkType indicates the number of endpoints reachable over a face.
type LinkType int

const (
	PointToPoint LinkType = iota
	MultiAccess
)

// Returns the human-readable name of the LinkType value.
func (l LinkType) String() string {
	switch l {
	case PointToPoint:
		return "point-to-point"
	case MultiAccess:
		return "multi-access"
	default:
		return "unknown"
	}
}

// ErrNotCanonical is returned when a face URI fails canonicalization.
var ErrNotCanonical = errors.New("URI could not be canonicalized")

// STRATEGY_PREFIX is the name prefix under which forwarding strategies are named.
var STRATEGY_PREFIX, _ = enc.NameFromStr("/localhost/nfd/strategy")

// LOCAL_PREFIX is the name prefix reserved for management commands scoped to this router.
var LOCAL_PREFIX, _ = enc.NameFromStr("/localhost/nfd")

// L3Value holds the decoded network-layer packet carried by a Pkt: exactly
// one of Interest or Data is set.
type L3Value struct {
	Interest *FwInterest
	Data     *FwData
}

// Pkt is a decoded network-layer packet together with the metadata the
// forwarding pipeline needs to route it: which face it arrived on (or will
// leave on) and the PIT token/congestion-mark carried by NDNLPv2.
type Pkt struct {
	Name enc.Name
	L3   L3Value
	Raw  enc.Wire // original wire bytes, re-sent as-is on egress

	PitToken []byte
	IncomingFaceID,
	CongestionMark,
	NextHopFaceID optional.Option[uint64]
}

// FwInterest is the subset of an Interest's fields the forwarding core
// reasons about: it never needs to inspect application parameters.
type FwInterest struct {
	NameV             enc.Name
	CanBePrefixV      bool
	MustBeFreshV      bool
	ForwardingHintV   enc.Name
	NonceV            optional.Option[uint32]
	InterestLifetimeV optional.Option[uint64]
	HopLimitV         optional.Option[uint8]
}

// Name returns the Interest's name.
func (i *FwInterest) Name() enc.Name { return i.NameV }

// FwData is the subset of a Data packet's fields the forwarding core
// reasons about.
type FwData struct {
	NameV  enc.Name
	FreshV optional.Option[uint64]
	WireV  enc.Wire

	// InterestDigestV carries the NDNLPv2 InterestDigestTag: the digest of
	// the Interest this Data satisfies, attached by the router that forwarded
	// that Interest so the PIT can be found again in O(1) on return instead
	// of walking the NameTree. Unset for Data arriving without the tag (e.g.
	// from a non-cooperating upstream).
	InterestDigestV optional.Option[[32]byte]
}

// Name returns the Data's name.
func (d *FwData) Name() enc.Name { return d.NameV }
