package mgmt_2022

import (
	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// ControlParameters TLV type numbers, following NFD's tlv-nfd-control
// numbering (ndn-cxx's nfd::ControlParameters).
const (
	tlvControlParameters  enc.TLNum = 104
	tlvFaceId             enc.TLNum = 105
	tlvCost               enc.TLNum = 106
	tlvStrategyParam      enc.TLNum = 107
	tlvFlagsParam         enc.TLNum = 108
	tlvExpirationPeriod   enc.TLNum = 109
	tlvMask               enc.TLNum = 112
	tlvOrigin             enc.TLNum = 111
	tlvCapacity           enc.TLNum = 131
)

// Strategy names the forwarding strategy inside a StrategyChoice entry or a
// ControlParameters' Strategy field.
type Strategy struct {
	Name enc.Name
}

// Encode writes the Strategy as a TLV-107-nested Name (the ControlParameters
// Strategy sub-element's wire form).
func (s *Strategy) Encode() []byte {
	if s == nil || s.Name == nil {
		return nil
	}
	return encodeTLV(tlvStrategyParam, s.Name.Bytes())
}

// ControlArgs is the decoded (or to-be-encoded) ControlParameters carried on
// a management command Interest's final name component, and echoed back (in
// part) on its ControlResponse.
type ControlArgs struct {
	Name             enc.Name
	FaceId           optional.Option[uint64]
	Cost             optional.Option[uint64]
	Capacity         optional.Option[uint64]
	Origin           optional.Option[uint64]
	Flags            optional.Option[uint64]
	Mask             optional.Option[uint64]
	ExpirationPeriod optional.Option[uint64]
	Strategy         *Strategy
}

// Encode serializes the ControlArgs as a TLV-104 ControlParameters element.
func (c *ControlArgs) Encode() enc.Wire {
	if c == nil {
		return nil
	}
	var body []byte
	if c.Name != nil {
		body = append(body, c.Name.Bytes()...)
	}
	if v, ok := c.FaceId.Get(); ok {
		body = append(body, encodeNatTLV(tlvFaceId, v)...)
	}
	if v, ok := c.Origin.Get(); ok {
		body = append(body, encodeNatTLV(tlvOrigin, v)...)
	}
	if v, ok := c.Cost.Get(); ok {
		body = append(body, encodeNatTLV(tlvCost, v)...)
	}
	if c.Strategy != nil {
		body = append(body, c.Strategy.Encode()...)
	}
	if v, ok := c.ExpirationPeriod.Get(); ok {
		body = append(body, encodeNatTLV(tlvExpirationPeriod, v)...)
	}
	if v, ok := c.Flags.Get(); ok {
		body = append(body, encodeNatTLV(tlvFlagsParam, v)...)
	}
	if v, ok := c.Mask.Get(); ok {
		body = append(body, encodeNatTLV(tlvMask, v)...)
	}
	if v, ok := c.Capacity.Get(); ok {
		body = append(body, encodeNatTLV(tlvCapacity, v)...)
	}
	return enc.Wire{encodeTLV(tlvControlParameters, body)}
}

// ControlParametersResult carries the outcome of ParseControlParameters: Val
// is nil if decoding failed validation under strict mode.
type ControlParametersResult struct {
	Val *ControlArgs
}

// ParseControlParameters decodes a ControlParameters TLV element from view.
// In strict mode a present Flags field without a matching Mask (or vice
// versa) is left for the caller to reject, matching NFD's own validation
// split between parsing and command-specific checks.
func ParseControlParameters(view enc.WireView, strict bool) (ControlParametersResult, error) {
	raw, err := view.ReadBuf(view.Length())
	if err != nil {
		return ControlParametersResult{}, err
	}

	typ, p1 := enc.ParseTLNum(raw)
	if typ != tlvControlParameters {
		return ControlParametersResult{}, errNotControlParameters{}
	}
	l, p2 := enc.ParseTLNum(raw[p1:])
	start := p1 + p2
	body := raw[start : start+int(l)]

	args := &ControlArgs{}
	pos := 0
	for pos < len(body) {
		t, tp := enc.ParseTLNum(body[pos:])
		vl, lp := enc.ParseTLNum(body[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)
		val := body[vstart:vend]

		switch t {
		case enc.TypeName:
			name, err := enc.NameFromBytes(body[pos:vend])
			if err == nil {
				args.Name = name
			}
		case tlvFaceId:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.FaceId = optional.Some(uint64(n))
			}
		case tlvOrigin:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.Origin = optional.Some(uint64(n))
			}
		case tlvCost:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.Cost = optional.Some(uint64(n))
			}
		case tlvStrategyParam:
			name, err := enc.NameFromBytes(val)
			if err == nil {
				args.Strategy = &Strategy{Name: name}
			}
		case tlvExpirationPeriod:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.ExpirationPeriod = optional.Some(uint64(n))
			}
		case tlvFlagsParam:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.Flags = optional.Some(uint64(n))
			}
		case tlvMask:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.Mask = optional.Some(uint64(n))
			}
		case tlvCapacity:
			n, _, e := enc.ParseNat(val)
			if e == nil {
				args.Capacity = optional.Some(uint64(n))
			}
		}
		pos = vend
	}

	return ControlParametersResult{Val: args}, nil
}

// ControlResponse TLV type numbers, following NFD's tlv-nfd-control
// ControlResponse (ndn-cxx's nfd::ControlResponse).
const (
	tlvControlResponse enc.TLNum = 101
	tlvStatusCode       enc.TLNum = 102
	tlvStatusText       enc.TLNum = 103
)

// ControlResponse is the Data Content carried back on a successful or failed
// management command, mirroring ndn-cxx's nfd::ControlResponse: a status
// code, a human-readable text, and (on success) the Parameters actually
// applied.
type ControlResponse struct {
	Code       uint64
	Text       string
	Parameters *ControlArgs
}

// Encode serializes the ControlResponse as a TLV-101 element.
func (r *ControlResponse) Encode() enc.Wire {
	body := encodeNatTLV(tlvStatusCode, r.Code)
	body = append(body, encodeTLV(tlvStatusText, []byte(r.Text))...)
	if r.Parameters != nil {
		body = append(body, r.Parameters.Encode().Join()...)
	}
	return enc.Wire{encodeTLV(tlvControlResponse, body)}
}

type errNotControlParameters struct{}

func (errNotControlParameters) Error() string { return "wire is not a ControlParameters element" }

func encodeTLV(typ enc.TLNum, val []byte) []byte {
	hdr := make([]byte, typ.EncodingLength()+enc.Nat(len(val)).EncodingLength())
	p := typ.EncodeInto(hdr)
	enc.Nat(len(val)).EncodeInto(hdr[p:])
	return append(hdr, val...)
}

func encodeNatTLV(typ enc.TLNum, v uint64) []byte {
	return encodeTLV(typ, enc.Nat(v).Bytes())
}
