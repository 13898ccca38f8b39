/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"fmt"
	"time"

	"github.com/ndnrtr/fwcore/fw/core"
	defn "github.com/ndnrtr/fwcore/fw/defn"
	"github.com/ndnrtr/fwcore/fw/dispatch"
	enc "github.com/ndnrtr/fwcore/std/encoding"
	spec "github.com/ndnrtr/fwcore/std/ndn/spec_2022"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// NDNLPv2 TLV type numbers for the link-layer envelope this service frames
// packets in: a bare Interest/Data TLV is also accepted unwrapped, so a
// transport that never negotiated NDNLPv2 still interoperates.
const (
	tlvLpPacket       enc.TLNum = 0x64
	tlvFragment       enc.TLNum = 0x50
	tlvPitToken       enc.TLNum = 0x62
	tlvCongestionMark enc.TLNum = 0x82
)

// LinkService is the layer above a transport that frames/deframes NDNLPv2
// and hands decoded network-layer packets off to the dispatch package; the
// transport hands it raw received frames via handleIncomingFrame.
type LinkService interface {
	String() string
	Run(stop <-chan bool)
	SendPacket(pkt *defn.Pkt)
	handleIncomingFrame(frame []byte)
}

// NDNLPLinkServiceOptions configures an NDNLPLinkService.
type NDNLPLinkServiceOptions struct {
	// IsFragmentationEnabled records whether the face may carry packets as
	// multiple NDNLPv2 fragments. Stream listeners (TCP, WebSocket) clear it,
	// since the stream already delivers whole frames. NDNLPLinkService does
	// not read it: frames are never fragmented on send or reassembled on
	// receive, whatever its value.
	IsFragmentationEnabled bool
}

// MakeNDNLPLinkServiceOptions returns the default NDNLPLinkServiceOptions.
func MakeNDNLPLinkServiceOptions() NDNLPLinkServiceOptions {
	return NDNLPLinkServiceOptions{IsFragmentationEnabled: true}
}

// NDNLPLinkService is the NDNLPv2 implementation of LinkService.
type NDNLPLinkService struct {
	transport transport
	options   NDNLPLinkServiceOptions
}

// MakeNDNLPLinkService constructs an NDNLPLinkService wrapping tr.
func MakeNDNLPLinkService(tr transport, options NDNLPLinkServiceOptions) *NDNLPLinkService {
	ls := &NDNLPLinkService{transport: tr, options: options}
	tr.setLinkService(ls)
	return ls
}

// String identifies the link service for core.Log's Stringer-based call sites.
func (ls *NDNLPLinkService) String() string {
	return fmt.Sprintf("ndnlp-link-service (faceid=%d)", ls.transport.FaceID())
}

// Run registers the face in the FaceTable and starts its receive loop in the
// background, returning immediately so a listener's accept loop isn't
// blocked handling a single connection. If stop is non-nil, closing it tears
// the transport down.
func (ls *NDNLPLinkService) Run(stop <-chan bool) {
	f := FaceTable.Add(ls.transport, ls)

	go func() {
		ls.transport.runReceive()
		FaceTable.Remove(f.FaceID())
	}()

	if stop != nil {
		go func() {
			<-stop
			ls.transport.Close()
		}()
	}
}

// handleIncomingFrame deframes an NDNLPv2 (or bare) wire frame and, if it
// decodes to a full Interest or Data, hands the resulting Pkt to the
// dispatch package to be routed to a forwarding thread.
func (ls *NDNLPLinkService) handleIncomingFrame(frame []byte) {
	fragment, pitToken, congestionMark, err := ls.unwrap(frame)
	if err != nil {
		core.Log.Warn(ls, "Failed to deframe incoming packet", "err", err)
		return
	}

	pkt, err := decodeNetworkLayerPacket(fragment)
	if err != nil {
		core.Log.Warn(ls, "Failed to decode incoming packet", "err", err)
		return
	}
	pkt.PitToken = pitToken
	pkt.CongestionMark = congestionMark
	pkt.IncomingFaceID = optional.Some(ls.transport.FaceID())

	dispatch.Dispatch(pkt)
}

// unwrap strips the NDNLPv2 envelope (if present) from frame, returning the
// carried network-layer fragment plus any PitToken/CongestionMark fields.
// A frame that isn't an LpPacket is treated as a bare Interest/Data.
func (ls *NDNLPLinkService) unwrap(frame []byte) (fragment []byte, pitToken []byte, congestionMark optional.Option[uint64], err error) {
	typ, tp := enc.ParseTLNum(frame)
	if typ != tlvLpPacket {
		return frame, nil, optional.None[uint64](), nil
	}

	l, lp := enc.ParseTLNum(frame[tp:])
	body := frame[tp+lp:]
	if len(body) < int(l) {
		return nil, nil, optional.None[uint64](), fmt.Errorf("truncated LpPacket")
	}
	body = body[:l]

	pos := 0
	for pos < len(body) {
		t, tpos := enc.ParseTLNum(body[pos:])
		vl, vpos := enc.ParseTLNum(body[pos+tpos:])
		vstart := pos + tpos + vpos
		vend := vstart + int(vl)
		val := body[vstart:vend]

		switch t {
		case tlvFragment:
			fragment = val
		case tlvPitToken:
			pitToken = val
		case tlvCongestionMark:
			n, _, _ := enc.ParseNat(val)
			congestionMark = optional.Some(uint64(n))
		}
		pos = vend
	}

	if fragment == nil {
		return nil, nil, optional.None[uint64](), fmt.Errorf("LpPacket has no Fragment")
	}
	return fragment, pitToken, congestionMark, nil
}

// decodeNetworkLayerPacket decodes raw as either an Interest or a Data,
// based on its outermost TLV type, and fills in a defn.Pkt.
func decodeNetworkLayerPacket(raw []byte) (*defn.Pkt, error) {
	typ, _ := enc.ParseTLNum(raw)
	s := spec.Spec{}

	switch typ {
	case spec.TypeInterest:
		it, err := s.ReadInterest(raw)
		if err != nil {
			return nil, err
		}
		var fh enc.Name
		if len(it.ForwardingHintV) > 0 {
			fh = it.ForwardingHintV[0]
		}
		return &defn.Pkt{
			Name: it.NameV,
			Raw:  it.Wire,
			L3: defn.L3Value{Interest: &defn.FwInterest{
				NameV:             it.NameV,
				CanBePrefixV:      it.CanBePrefixV,
				MustBeFreshV:      it.MustBeFreshV,
				ForwardingHintV:   fh,
				NonceV:            it.NonceV,
				InterestLifetimeV: optionMsFromDuration(it.InterestLifetimeV),
				HopLimitV:         optionU8(it.HopLimitV),
			}},
		}, nil
	case spec.TypeData:
		d, _, err := s.ReadData(raw)
		if err != nil {
			return nil, err
		}
		return &defn.Pkt{
			Name: d.NameV,
			Raw:  d.Wire,
			L3: defn.L3Value{Data: &defn.FwData{
				NameV:  d.NameV,
				FreshV: optionMsFromDuration(d.FreshnessV),
				WireV:  d.Wire,
			}},
		}, nil
	default:
		return nil, fmt.Errorf("not an Interest or Data (type %d)", typ)
	}
}

func optionMsFromDuration(o optional.Option[time.Duration]) optional.Option[uint64] {
	if v, ok := o.Get(); ok {
		return optional.Some(uint64(v.Milliseconds()))
	}
	return optional.None[uint64]()
}

func optionU8(o optional.Option[uint]) optional.Option[uint8] {
	if v, ok := o.Get(); ok {
		return optional.Some(uint8(v))
	}
	return optional.None[uint8]()
}

// SendPacket hands pkt's wire bytes to the transport: bare if pkt carries no
// PitToken, otherwise wrapped in an NDNLPv2 LpPacket carrying the PitToken.
func (ls *NDNLPLinkService) SendPacket(pkt *defn.Pkt) {
	raw := pkt.Raw.Join()

	if len(pkt.PitToken) == 0 {
		ls.transport.sendFrame(raw)
		return
	}

	body := append([]byte{}, encodeLpTLV(tlvPitToken, pkt.PitToken)...)
	body = append(body, encodeLpTLV(tlvFragment, raw)...)
	ls.transport.sendFrame(encodeLpTLV(tlvLpPacket, body))
}

func encodeLpTLV(typ enc.TLNum, val []byte) []byte {
	hdr := make([]byte, typ.EncodingLength()+enc.Nat(len(val)).EncodingLength())
	p := typ.EncodeInto(hdr)
	enc.Nat(len(val)).EncodeInto(hdr[p:])
	return append(hdr, val...)
}
