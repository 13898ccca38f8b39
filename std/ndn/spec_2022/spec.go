// Package spec_2022 implements the NDN packet format used by this router:
// Interest/Data encoding and decoding to and from TLV wire format.
package spec_2022

import (
	"encoding/binary"
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/ndn"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// TLV type numbers, per the NDN packet format specification.
const (
	TypeInterest TLNum = 5
	TypeData     TLNum = 6

	TypeCanBePrefix      TLNum = 0x21
	TypeMustBeFresh      TLNum = 0x12
	TypeForwardingHint   TLNum = 0x1e
	TypeNonce            TLNum = 0x0a
	TypeInterestLifetime TLNum = 0x0c
	TypeHopLimit         TLNum = 0x22
	TypeAppParameters    TLNum = 0x24
	TypeISigInfo         TLNum = 0x2c
	TypeISigValue        TLNum = 0x2e

	TypeMetaInfo     TLNum = 0x14
	TypeContentType  TLNum = 0x18
	TypeFreshness    TLNum = 0x19
	TypeFinalBlockID TLNum = 0x1a
	TypeContent      TLNum = 0x15

	TypeSignatureInfo  TLNum = 0x16
	TypeSignatureType  TLNum = 0x1b
	TypeKeyLocator     TLNum = 0x1c
	TypeKeyDigest      TLNum = 0x1d
	TypeKeyName        TLNum = 0x07
	TypeSignatureValue TLNum = 0x17
)

// TLNum is a local alias so the type-number table above reads cleanly.
type TLNum = enc.TLNum

func encodeTLV(typ TLNum, val []byte) []byte {
	hdr := make([]byte, typ.EncodingLength()+enc.Nat(len(val)).EncodingLength())
	p := typ.EncodeInto(hdr)
	enc.Nat(len(val)).EncodeInto(hdr[p:])
	return append(hdr, val...)
}

func encodeNatTLV(typ TLNum, v uint64) []byte {
	return encodeTLV(typ, enc.Nat(v).Bytes())
}

// Spec implements encoding and decoding of Interest/Data packets.
type Spec struct{}

// Data is a concrete decoded/encoded Data packet.
type Data struct {
	Wire enc.Wire

	NameV         enc.Name
	ContentTypeV  optional.Option[ndn.ContentType]
	FreshnessV    optional.Option[time.Duration]
	FinalBlockIDV optional.Option[enc.Component]
	ContentV      enc.Wire
	SigTypeV      ndn.SigType
	KeyNameV      enc.Name
	SigValueV     []byte
}

func (d *Data) Name() enc.Name                                    { return d.NameV }
func (d *Data) ContentType() optional.Option[ndn.ContentType]     { return d.ContentTypeV }
func (d *Data) Freshness() optional.Option[time.Duration]         { return d.FreshnessV }
func (d *Data) FinalBlockID() optional.Option[enc.Component]      { return d.FinalBlockIDV }
func (d *Data) Content() enc.Wire                                 { return d.ContentV }
func (d *Data) Signature() ndn.Signature                          { return dataSig{d} }

type dataSig struct{ d *Data }

func (s dataSig) SigType() ndn.SigType { return s.d.SigTypeV }
func (s dataSig) KeyName() enc.Name    { return s.d.KeyNameV }
func (s dataSig) SigValue() []byte     { return s.d.SigValueV }

// Interest is a concrete decoded/encoded Interest packet.
type Interest struct {
	Wire enc.Wire

	NameV             enc.Name
	CanBePrefixV      bool
	MustBeFreshV      bool
	ForwardingHintV   []enc.Name
	NonceV            optional.Option[uint32]
	InterestLifetimeV optional.Option[time.Duration]
	HopLimitV         optional.Option[uint]
	AppParamV         enc.Wire
}

func (i *Interest) Name() enc.Name                        { return i.NameV }
func (i *Interest) CanBePrefix() bool                     { return i.CanBePrefixV }
func (i *Interest) MustBeFresh() bool                     { return i.MustBeFreshV }
func (i *Interest) Nonce() optional.Option[uint32]         { return i.NonceV }
func (i *Interest) Lifetime() optional.Option[time.Duration] { return i.InterestLifetimeV }
func (i *Interest) HopLimit() optional.Option[uint]        { return i.HopLimitV }
func (i *Interest) AppParam() enc.Wire                     { return i.AppParamV }

// MakeData encodes a Data packet from a name, MetaInfo config, content and
// optional signer. The returned wire is ready to send on a face.
func (s *Spec) MakeData(
	name enc.Name, cfg *ndn.DataConfig, content enc.Wire, signer ndn.Signer,
) (*Data, error) {
	var meta []byte
	if cfg != nil {
		if ct, ok := cfg.ContentType.Get(); ok {
			meta = append(meta, encodeNatTLV(TypeContentType, uint64(ct))...)
		}
		if fr, ok := cfg.Freshness.Get(); ok {
			meta = append(meta, encodeNatTLV(TypeFreshness, uint64(fr.Milliseconds()))...)
		}
		if fb, ok := cfg.FinalBlockID.Get(); ok {
			buf := make([]byte, fb.EncodingLength())
			fb.EncodeInto(buf)
			meta = append(meta, encodeTLV(TypeFinalBlockID, buf)...)
		}
	}

	contentBytes := content.Join()

	body := append([]byte{}, name.Bytes()...)
	if len(meta) > 0 {
		body = append(body, encodeTLV(TypeMetaInfo, meta)...)
	}
	if len(contentBytes) > 0 {
		body = append(body, encodeTLV(TypeContent, contentBytes)...)
	}

	sigType := ndn.SignatureDigestSha256
	var keyName enc.Name
	if signer != nil {
		sigType = signer.Type()
		keyName = signer.KeyLocator()
	}

	sigInfo := encodeNatTLV(TypeSignatureType, uint64(sigType))
	if keyName != nil {
		sigInfo = append(sigInfo, encodeTLV(TypeKeyLocator, encodeTLV(TypeKeyName, keyName.BytesInner()))...)
	}
	body = append(body, encodeTLV(TypeSignatureInfo, sigInfo)...)

	var sigValue []byte
	if signer != nil {
		v, err := signer.Sign(enc.Wire{body})
		if err != nil {
			return nil, err
		}
		sigValue = v
	}
	body = append(body, encodeTLV(TypeSignatureValue, sigValue)...)

	wire := enc.Wire{encodeTLV(TypeData, body)}

	return &Data{
		Wire:          wire,
		NameV:         name,
		ContentTypeV:  optionFromCfgContentType(cfg),
		FreshnessV:    optionFromCfgFreshness(cfg),
		FinalBlockIDV: optionFromCfgFinalBlockID(cfg),
		ContentV:      content,
		SigTypeV:      sigType,
		KeyNameV:      keyName,
		SigValueV:     sigValue,
	}, nil
}

func optionFromCfgContentType(cfg *ndn.DataConfig) optional.Option[ndn.ContentType] {
	if cfg == nil {
		return optional.None[ndn.ContentType]()
	}
	return cfg.ContentType
}

func optionFromCfgFreshness(cfg *ndn.DataConfig) optional.Option[time.Duration] {
	if cfg == nil {
		return optional.None[time.Duration]()
	}
	return cfg.Freshness
}

func optionFromCfgFinalBlockID(cfg *ndn.DataConfig) optional.Option[enc.Component] {
	if cfg == nil {
		return optional.None[enc.Component]()
	}
	return cfg.FinalBlockID
}

// ReadData decodes a Data packet from its TLV wire representation, returning
// the decoded Data and the wire range covered by its signature.
func (s *Spec) ReadData(raw []byte) (*Data, enc.Wire, error) {
	typ, p1 := enc.ParseTLNum(raw)
	if typ != TypeData {
		return nil, nil, ndn.ErrWrongType
	}
	l, p2 := enc.ParseTLNum(raw[p1:])
	start := p1 + p2
	body := raw[start : start+int(l)]

	d := &Data{Wire: enc.Wire{raw[:start+int(l)]}}

	pos := 0
	coveredEnd := len(body)

	for pos < len(body) {
		t, tp := enc.ParseTLNum(body[pos:])
		vl, lp := enc.ParseTLNum(body[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)
		val := body[vstart:vend]

		switch t {
		case enc.TypeName:
			name, err := enc.NameFromBytes(body[pos:vend])
			if err != nil {
				return nil, nil, err
			}
			d.NameV = name
		case TypeMetaInfo:
			parseMetaInfo(d, val)
		case TypeContent:
			d.ContentV = enc.Wire{val}
		case TypeSignatureInfo:
			parseSignatureInfo(&d.SigTypeV, &d.KeyNameV, val)
		case TypeSignatureValue:
			d.SigValueV = val
			coveredEnd = pos
		}
		pos = vend
	}

	return d, enc.Wire{raw[start : start+coveredEnd]}, nil
}

func parseMetaInfo(d *Data, val []byte) {
	pos := 0
	for pos < len(val) {
		t, tp := enc.ParseTLNum(val[pos:])
		vl, lp := enc.ParseTLNum(val[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)
		sub := val[vstart:vend]
		switch t {
		case TypeContentType:
			n, _, _ := enc.ParseNat(sub)
			d.ContentTypeV = optional.Some(ndn.ContentType(n))
		case TypeFreshness:
			n, _, _ := enc.ParseNat(sub)
			d.FreshnessV = optional.Some(time.Duration(n) * time.Millisecond)
		case TypeFinalBlockID:
			c, _ := enc.ParseComponent(sub)
			d.FinalBlockIDV = optional.Some(c)
		}
		pos = vend
	}
}

func parseSignatureInfo(sigType *ndn.SigType, keyName *enc.Name, val []byte) {
	pos := 0
	for pos < len(val) {
		t, tp := enc.ParseTLNum(val[pos:])
		vl, lp := enc.ParseTLNum(val[pos+tp:])
		vstart := pos + tp + lp
		vend := vstart + int(vl)
		sub := val[vstart:vend]
		switch t {
		case TypeSignatureType:
			n, _, _ := enc.ParseNat(sub)
			*sigType = ndn.SigType(n)
		case TypeKeyLocator:
			if kn, err := enc.NameFromBytes(sub); err == nil {
				*keyName = kn
			}
		}
		pos = vend
	}
}

// MakeInterest encodes an Interest packet from a name, config, and optional
// application parameters.
func (s *Spec) MakeInterest(
	name enc.Name, cfg *ndn.InterestConfig, appParam enc.Wire, signer ndn.Signer,
) (*Interest, error) {
	body := append([]byte{}, name.Bytes()...)

	if cfg != nil && cfg.CanBePrefix {
		body = append(body, encodeTLV(TypeCanBePrefix, nil)...)
	}
	if cfg != nil && cfg.MustBeFresh {
		body = append(body, encodeTLV(TypeMustBeFresh, nil)...)
	}
	if cfg != nil {
		for _, h := range cfg.ForwardingHint {
			body = append(body, encodeTLV(TypeForwardingHint, h.Bytes())...)
		}
	}

	nonce := uint32(0)
	if cfg != nil {
		if n, ok := cfg.Nonce.Get(); ok {
			nonce = n
		}
	}
	nb := make([]byte, 4)
	binary.BigEndian.PutUint32(nb, nonce)
	body = append(body, encodeTLV(TypeNonce, nb)...)

	if cfg != nil {
		if lt, ok := cfg.Lifetime.Get(); ok {
			body = append(body, encodeNatTLV(TypeInterestLifetime, uint64(lt.Milliseconds()))...)
		}
		if hl, ok := cfg.HopLimit.Get(); ok {
			body = append(body, encodeTLV(TypeHopLimit, []byte{byte(hl)})...)
		}
	}

	appParamBytes := appParam.Join()
	if len(appParamBytes) > 0 {
		body = append(body, encodeTLV(TypeAppParameters, appParamBytes)...)
	}

	wire := enc.Wire{encodeTLV(TypeInterest, body)}

	var fh []enc.Name
	if cfg != nil {
		fh = cfg.ForwardingHint
	}

	return &Interest{
		Wire:              wire,
		NameV:             name,
		CanBePrefixV:      cfg != nil && cfg.CanBePrefix,
		MustBeFreshV:      cfg != nil && cfg.MustBeFresh,
		ForwardingHintV:   fh,
		NonceV:            optional.Some(nonce),
		InterestLifetimeV: optionalLifetime(cfg),
		HopLimitV:         optionalHopLimit(cfg),
		AppParamV:         appParam,
	}, nil
}

func optionalLifetime(cfg *ndn.InterestConfig) optional.Option[time.Duration] {
	if cfg == nil {
		return optional.None[time.Duration]()
	}
	return cfg.Lifetime
}

func optionalHopLimit(cfg *ndn.InterestConfig) optional.Option[uint] {
	if cfg == nil {
		return optional.None[uint]()
	}
	return cfg.HopLimit
}

// ReadInterest decodes an Interest packet from its TLV wire representation.
func (s *Spec) ReadInterest(raw []byte) (*Interest, error) {
	typ, p1 := enc.ParseTLNum(raw)
	if typ != TypeInterest {
		return nil, ndn.ErrWrongType
	}
	l, p2 := enc.ParseTLNum(raw[p1:])
	start := p1 + p2
	body := raw[start : start+int(l)]

	it := &Interest{Wire: enc.Wire{raw[:start+int(l)]}}

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
			if err != nil {
				return nil, err
			}
			it.NameV = name
		case TypeCanBePrefix:
			it.CanBePrefixV = true
		case TypeMustBeFresh:
			it.MustBeFreshV = true
		case TypeForwardingHint:
			if name, err := enc.NameFromBytes(val); err == nil {
				it.ForwardingHintV = append(it.ForwardingHintV, name)
			}
		case TypeNonce:
			if len(val) == 4 {
				it.NonceV = optional.Some(binary.BigEndian.Uint32(val))
			}
		case TypeInterestLifetime:
			n, _, _ := enc.ParseNat(val)
			it.InterestLifetimeV = optional.Some(time.Duration(n) * time.Millisecond)
		case TypeHopLimit:
			if len(val) == 1 {
				it.HopLimitV = optional.Some(uint(val[0]))
			}
		case TypeAppParameters:
			it.AppParamV = enc.Wire{val}
		}
		pos = vend
	}

	return it, nil
}
