package io

import (
	"bufio"
	"io"

	enc "github.com/ndnrtr/fwcore/std/encoding"
)

// ReadTlvStream reads a sequence of TLV-encoded blocks from r, one at a time,
// invoking onFrame with each complete block's wire bytes. onFrame should
// return false to stop reading. If a read error occurs, onErr is consulted
// (when non-nil) to decide whether the error is transient and reading
// should continue; otherwise the error is returned to the caller.
//
// This is used by every stream-oriented and datagram-oriented transport to
// turn a raw byte stream (or sequence of datagrams) into NDN packet
// boundaries, since NDN TLV is self-delimiting.
func ReadTlvStream(r io.Reader, onFrame func([]byte) bool, onErr func(error) bool) error {
	br := bufio.NewReaderSize(r, 1<<16)
	for {
		block, err := readOneTlv(br)
		if err != nil {
			if onErr != nil && onErr(err) {
				continue
			}
			return err
		}
		if !onFrame(block) {
			return nil
		}
	}
}

// readOneTlv reads exactly one TLV block (type, length, value) from br.
func readOneTlv(br *bufio.Reader) ([]byte, error) {
	hdr := make([]byte, 0, 16)

	typByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	hdr = append(hdr, typByte)
	if err := readTLNumTail(br, typByte, &hdr); err != nil {
		return nil, err
	}

	_, tPos := enc.ParseTLNum(hdr)

	lenByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	hdr = append(hdr, lenByte)
	if err := readTLNumTail(br, lenByte, &hdr); err != nil {
		return nil, err
	}

	l, _ := enc.ParseTLNum(hdr[tPos:])

	value := make([]byte, l)
	if l > 0 {
		if _, err := io.ReadFull(br, value); err != nil {
			return nil, err
		}
	}

	block := make([]byte, 0, len(hdr)+len(value))
	block = append(block, hdr...)
	block = append(block, value...)
	return block, nil
}

// readTLNumTail appends the remaining bytes of a variable-length TLV number
// (the first byte is already in hdr) by inspecting the discriminator byte.
func readTLNumTail(br *bufio.Reader, first byte, hdr *[]byte) error {
	var n int
	switch first {
	case 0xfd:
		n = 2
	case 0xfe:
		n = 4
	case 0xff:
		n = 8
	default:
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return err
	}
	*hdr = append(*hdr, buf...)
	return nil
}
