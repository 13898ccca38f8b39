package ndn

import (
	"time"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

// SigType identifies the signature algorithm carried in a packet's SignatureInfo.
type SigType int

const (
	SignatureNone            SigType = -1
	SignatureDigestSha256    SigType = 0
	SignatureSha256WithRsa   SigType = 1
	SignatureSha256WithEcdsa SigType = 3
	SignatureHmacWithSha256  SigType = 4
	SignatureEd25519         SigType = 5
)

// ContentType is the MetaInfo ContentType field of a Data packet.
type ContentType uint64

const (
	ContentTypeBlob ContentType = 0
	ContentTypeLink ContentType = 1
	ContentTypeKey  ContentType = 2
	ContentTypeNack ContentType = 3
)

// Signature is the decoded SignatureInfo/SignatureValue pair of a packet.
type Signature interface {
	SigType() SigType
	KeyName() enc.Name
	SigValue() []byte
}

// Signer produces a signature over the covered wire of an outgoing packet.
type Signer interface {
	Type() SigType
	KeyName() enc.Name
	KeyLocator() enc.Name
	EstimateSize() uint
	Sign(covered enc.Wire) ([]byte, error)
	Public() ([]byte, error)
}

// DataConfig carries the MetaInfo fields used to construct a Data packet.
type DataConfig struct {
	ContentType  optional.Option[ContentType]
	Freshness    optional.Option[time.Duration]
	FinalBlockID optional.Option[enc.Component]
}

// InterestConfig carries the fields used to construct an Interest packet.
type InterestConfig struct {
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint []enc.Name
	Nonce          optional.Option[uint32]
	Lifetime       optional.Option[time.Duration]
	HopLimit       optional.Option[uint]
}

// Data is a decoded NDN Data packet.
type Data interface {
	Name() enc.Name
	ContentType() optional.Option[ContentType]
	Freshness() optional.Option[time.Duration]
	FinalBlockID() optional.Option[enc.Component]
	Content() enc.Wire
	Signature() Signature
}

// Interest is a decoded NDN Interest packet.
type Interest interface {
	Name() enc.Name
	CanBePrefix() bool
	MustBeFresh() bool
	Nonce() optional.Option[uint32]
	Lifetime() optional.Option[time.Duration]
	HopLimit() optional.Option[uint]
	AppParam() enc.Wire
}
