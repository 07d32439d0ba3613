package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the canonical number of on-disk bytes a GPT header occupies
// within its sector (the remainder of the sector, if any, is padding).
const HeaderSize = 92

// Signature is the required ASCII signature of a valid GPT header.
var Signature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}

// DefaultRevision is the GPT revision this package writes (1.0).
var DefaultRevision = [4]byte{0x00, 0x00, 0x01, 0x00}

// Header is the in-memory representation of a GPT header. GUID fields are
// opaque 16-byte arrays; this package never interprets their textual form
// (spec.md §4.1, §9 — "opaque GUIDs").
type Header struct {
	Signature                [8]byte
	Revision                 [4]byte
	HeaderSize               uint32
	CRC32                    uint32
	Reserved                 uint32
	PrimaryLBA               uint64
	BackupLBA                uint64
	FirstUsableLBA           uint64
	LastUsableLBA            uint64
	DiskGUID                 [16]byte
	PartitionEntryLBA        uint64
	NumberOfPartitionEntries uint32
	SizeOfPartitionEntry     uint32
	PartitionEntriesCRC32    uint32
}

// onDiskHeader is the fixed 92-byte wire layout, kept as its own type so that
// encoding/decoding never depends on Header's Go-side field order surviving
// unchanged.
type onDiskHeader struct {
	Signature                [8]byte
	Revision                 [4]byte
	HeaderSize               uint32
	CRC32                    uint32
	Reserved                 uint32
	PrimaryLBA               uint64
	BackupLBA                uint64
	FirstUsableLBA           uint64
	LastUsableLBA            uint64
	DiskGUID                 [16]byte
	PartitionEntryLBA        uint64
	NumberOfPartitionEntries uint32
	SizeOfPartitionEntry     uint32
	PartitionEntriesCRC32    uint32
}

func (h Header) toDisk() onDiskHeader {
	return onDiskHeader(h)
}

func (d onDiskHeader) fromDisk() Header {
	return Header(d)
}

// encodeHeader serializes h into exactly HeaderSize bytes of little-endian
// wire format, with the CRC32 field emitted verbatim (zero it first if the
// caller wants a CRC-computation buffer).
func encodeHeader(h Header) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(HeaderSize)
	if err := binary.Write(buf, binary.LittleEndian, h.toDisk()); err != nil {
		return nil, fmt.Errorf("gpt: encoding header: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeHeader deserializes a Header from buf. It performs no semantic
// validation (signature, CRC, bounds) — structural decode failure (a buffer
// shorter than HeaderSize) is the only error it can return. Validation is
// the invariants layer's job (spec.md §4.1).
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("gpt: decoding header: need %d bytes, got %d", HeaderSize, len(buf))
	}
	var d onDiskHeader
	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.LittleEndian, &d); err != nil {
		return Header{}, fmt.Errorf("gpt: decoding header: %w", err)
	}
	return d.fromDisk(), nil
}

// validSignature reports whether h's signature field is the required
// "EFI PART" sequence.
func (h Header) validSignature() bool {
	return h.Signature == Signature
}
