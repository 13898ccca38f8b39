package table

import enc "github.com/ndnrtr/fwcore/std/encoding"

func tlv(typ enc.TLNum, val []byte) []byte {
	hdr := make([]byte, typ.EncodingLength()+enc.Nat(len(val)).EncodingLength())
	p := typ.EncodeInto(hdr)
	enc.Nat(len(val)).EncodeInto(hdr[p:])
	return append(hdr, val...)
}

// VALID_DATA_1 is a hand-built, well-formed Data packet named
// /ndn/edu/ucla/ping/123, used across the PIT/CS tests as a stand-in for a
// Data packet that arrived off the wire.
var VALID_DATA_1 = buildValidData1()

func buildValidData1() enc.Wire {
	name, _ := enc.NameFromStr("/ndn/edu/ucla/ping/123")

	content := tlv(15, []byte("hello, world!"))
	sigInfo := tlv(22, tlv(27, []byte{0})) // SignatureInfo{SignatureType=DigestSha256}
	sigValue := tlv(23, make([]byte, 32))  // SignatureValue, not cryptographically valid

	body := append([]byte{}, name.Bytes()...)
	body = append(body, content...)
	body = append(body, sigInfo...)
	body = append(body, sigValue...)

	return enc.Wire{tlv(6, body)} // Data
}
