package mgmt_2022

import (
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// Status/dataset TLV type numbers, following NFD's tlv-nfd-management
// numbering (ndn-cxx's nfd::GeneralStatus, FaceStatus, FibEntry, etc.).
const (
	tlvGeneralStatus         enc.TLNum = 128
	tlvNfdVersion            enc.TLNum = 128
	tlvStartTimestamp        enc.TLNum = 129
	tlvCurrentTimestamp      enc.TLNum = 130
	tlvNFibEntries           enc.TLNum = 132
	tlvNPitEntries           enc.TLNum = 133
	tlvNCsEntries            enc.TLNum = 135
	tlvNInInterests          enc.TLNum = 144
	tlvNInData               enc.TLNum = 145
	tlvNOutInterests         enc.TLNum = 146
	tlvNOutData              enc.TLNum = 147
	tlvNSatisfiedInterests   enc.TLNum = 153
	tlvNUnsatisfiedInterests enc.TLNum = 154

	tlvFibEntry       enc.TLNum = 128
	tlvNextHopRecord  enc.TLNum = 129

	tlvCsInfo      enc.TLNum = 128
	tlvNHits       enc.TLNum = 129
	tlvNMisses     enc.TLNum = 130

	tlvRibEntry enc.TLNum = 128
	tlvRoute    enc.TLNum = 129

	tlvStrategyChoice enc.TLNum = 128
)

// CsEnableAdmit/CsEnableServe are the Content Store's Flags bitmask bits, as
// set and read by ContentStoreModule's config/info commands.
const (
	CsEnableAdmit uint64 = 1
	CsEnableServe uint64 = 2
)

// NextHopRecord is one entry of a FibEntry's next-hop list.
type NextHopRecord struct {
	FaceId uint64
	Cost   uint64
}

func (r *NextHopRecord) encode() []byte {
	body := append(encodeNatTLV(tlvFaceId, r.FaceId), encodeNatTLV(tlvCost, r.Cost)...)
	return encodeTLV(tlvNextHopRecord, body)
}

// FibEntry is one name's FIB status dataset entry.
type FibEntry struct {
	Name           enc.Name
	NextHopRecords []*NextHopRecord
}

func (e *FibEntry) encode() []byte {
	var body []byte
	if e.Name != nil {
		body = append(body, e.Name.Bytes()...)
	}
	for _, r := range e.NextHopRecords {
		body = append(body, r.encode()...)
	}
	return encodeTLV(tlvFibEntry, body)
}

// FibStatus is the FIB status dataset returned by FIBModule.list.
type FibStatus struct {
	Entries []*FibEntry
}

// Encode serializes every FibEntry back to back, matching how NFD's FIB
// dataset is a concatenation of FibEntry elements rather than one wrapping
// TLV (the Data's Content simply holds the whole sequence).
func (s *FibStatus) Encode() enc.Wire {
	var body []byte
	for _, e := range s.Entries {
		body = append(body, e.encode()...)
	}
	return enc.Wire{body}
}

// CsInfo is the Content Store info dataset's payload.
type CsInfo struct {
	Capacity   uint64
	Flags      uint64
	NCsEntries uint64
	NHits      uint64
	NMisses    uint64
}

func (c *CsInfo) encode() []byte {
	body := encodeNatTLV(tlvCapacity, c.Capacity)
	body = append(body, encodeNatTLV(tlvFlagsParam, c.Flags)...)
	body = append(body, encodeNatTLV(tlvNCsEntries, c.NCsEntries)...)
	body = append(body, encodeNatTLV(tlvNHits, c.NHits)...)
	body = append(body, encodeNatTLV(tlvNMisses, c.NMisses)...)
	return encodeTLV(tlvCsInfo, body)
}

// CsInfoMsg wraps a CsInfo for Encode, matching the Go convention elsewhere
// in this package of a "Msg"/"Status" wrapper owning the Encode method.
type CsInfoMsg struct {
	CsInfo *CsInfo
}

// Encode serializes the wrapped CsInfo.
func (m *CsInfoMsg) Encode() enc.Wire {
	if m.CsInfo == nil {
		return enc.Wire{}
	}
	return enc.Wire{m.CsInfo.encode()}
}

// GeneralStatus is the forwarder-wide status dataset returned by
// ForwarderStatusModule.general.
type GeneralStatus struct {
	NfdVersion            string
	StartTimestamp        time.Duration
	CurrentTimestamp      time.Duration
	NFibEntries           uint64
	NPitEntries           uint64
	NCsEntries            uint64
	NInInterests          uint64
	NInData               uint64
	NOutInterests         uint64
	NOutData              uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
}

// Encode serializes the GeneralStatus as a single TLV-128 element.
func (s *GeneralStatus) Encode() enc.Wire {
	body := encodeTLV(tlvNfdVersion, []byte(s.NfdVersion))
	body = append(body, encodeNatTLV(tlvStartTimestamp, uint64(s.StartTimestamp))...)
	body = append(body, encodeNatTLV(tlvCurrentTimestamp, uint64(s.CurrentTimestamp))...)
	body = append(body, encodeNatTLV(tlvNFibEntries, s.NFibEntries)...)
	body = append(body, encodeNatTLV(tlvNPitEntries, s.NPitEntries)...)
	body = append(body, encodeNatTLV(tlvNCsEntries, s.NCsEntries)...)
	body = append(body, encodeNatTLV(tlvNInInterests, s.NInInterests)...)
	body = append(body, encodeNatTLV(tlvNInData, s.NInData)...)
	body = append(body, encodeNatTLV(tlvNOutInterests, s.NOutInterests)...)
	body = append(body, encodeNatTLV(tlvNOutData, s.NOutData)...)
	body = append(body, encodeNatTLV(tlvNSatisfiedInterests, s.NSatisfiedInterests)...)
	body = append(body, encodeNatTLV(tlvNUnsatisfiedInterests, s.NUnsatisfiedInterests)...)
	return enc.Wire{encodeTLV(tlvGeneralStatus, body)}
}

// Route is one RIB entry's route, as reported on the RIB status dataset
// (distinct from table.Route, which also tracks its own expiration timer).
type Route struct {
	FaceId           uint64
	Origin           uint64
	Cost             uint64
	Flags            uint64
	ExpirationPeriod optional.Option[uint64]
}

func (r *Route) encode() []byte {
	body := encodeNatTLV(tlvFaceId, r.FaceId)
	body = append(body, encodeNatTLV(tlvOrigin, r.Origin)...)
	body = append(body, encodeNatTLV(tlvCost, r.Cost)...)
	body = append(body, encodeNatTLV(tlvFlagsParam, r.Flags)...)
	if v, ok := r.ExpirationPeriod.Get(); ok {
		body = append(body, encodeNatTLV(tlvExpirationPeriod, v)...)
	}
	return encodeTLV(tlvRoute, body)
}

// RibEntry is one name's set of routes, as reported on the RIB status
// dataset.
type RibEntry struct {
	Name   enc.Name
	Routes []*Route
}

func (e *RibEntry) encode() []byte {
	var body []byte
	if e.Name != nil {
		body = append(body, e.Name.Bytes()...)
	}
	for _, r := range e.Routes {
		body = append(body, r.encode()...)
	}
	return encodeTLV(tlvRibEntry, body)
}

// RibStatus is the RIB status dataset returned by RIBModule.list.
type RibStatus struct {
	Entries []*RibEntry
}

// Encode serializes every RibEntry back to back.
func (s *RibStatus) Encode() enc.Wire {
	var body []byte
	for _, e := range s.Entries {
		body = append(body, e.encode()...)
	}
	return enc.Wire{body}
}

// StrategyChoice is one name's configured forwarding strategy, as reported
// on the strategy-choice status dataset.
type StrategyChoice struct {
	Name     enc.Name
	Strategy *Strategy
}

func (c *StrategyChoice) encode() []byte {
	var body []byte
	if c.Name != nil {
		body = append(body, c.Name.Bytes()...)
	}
	if c.Strategy != nil {
		body = append(body, c.Strategy.Encode()...)
	}
	return encodeTLV(tlvStrategyChoice, body)
}

// StrategyChoiceMsg is the strategy-choice status dataset returned by
// StrategyChoiceModule.list.
type StrategyChoiceMsg struct {
	StrategyChoices []*StrategyChoice
}

// Encode serializes every StrategyChoice back to back.
func (m *StrategyChoiceMsg) Encode() enc.Wire {
	var body []byte
	for _, c := range m.StrategyChoices {
		body = append(body, c.encode()...)
	}
	return enc.Wire{body}
}
