package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// EntrySize is the canonical on-disk size of a single partition entry.
const EntrySize = 128

// nameUnits is the number of UTF-16LE code units in partition_name (36 code
// units = 72 bytes).
const nameUnits = 36

// Named attribute bits, per spec.md §3 ("attribute_bits: 64 bits — bit 0 =
// required, bit 1 = no block IO, bit 2 = legacy BIOS bootable, bits 48-63 =
// type-specific"). Bit layout grounded on other_examples/driusan-gpt's
// GPTPartitionAttribute constants, renamed to match spec.md's terminology.
const (
	AttrRequired           uint64 = 1 << 0
	AttrNoBlockIO          uint64 = 1 << 1
	AttrLegacyBIOSBootable uint64 = 1 << 2
	// AttrTypeSpecificMask isolates bits 48-63, reserved for GUID-specific
	// use and preserved verbatim by every mutation in this package.
	AttrTypeSpecificMask uint64 = 0xFFFF000000000000
)

// Entry is one slot of the partition-entry array. An all-zero
// PartitionTypeGUID marks the slot unused.
type Entry struct {
	PartitionTypeGUID   [16]byte
	UniquePartitionGUID [16]byte
	StartingLBA         uint64
	EndingLBA           uint64
	AttributeBits       uint64
	PartitionName       [nameUnits]uint16
}

var zeroGUID [16]byte

// Used reports whether the entry's partition_type_guid is non-zero.
func (e Entry) Used() bool {
	return e.PartitionTypeGUID != zeroGUID
}

// Size returns the entry's length in sectors (inclusive range), valid only
// when StartingLBA <= EndingLBA.
func (e Entry) Size() uint64 {
	if e.EndingLBA < e.StartingLBA {
		return 0
	}
	return e.EndingLBA - e.StartingLBA + 1
}

// Required reports whether attribute bit 0 is set.
func (e Entry) Required() bool { return e.AttributeBits&AttrRequired != 0 }

// SetRequired sets or clears attribute bit 0.
func (e *Entry) SetRequired(v bool) { e.setAttr(AttrRequired, v) }

// NoBlockIO reports whether attribute bit 1 is set.
func (e Entry) NoBlockIO() bool { return e.AttributeBits&AttrNoBlockIO != 0 }

// SetNoBlockIO sets or clears attribute bit 1.
func (e *Entry) SetNoBlockIO(v bool) { e.setAttr(AttrNoBlockIO, v) }

// LegacyBIOSBootable reports whether attribute bit 2 is set.
func (e Entry) LegacyBIOSBootable() bool { return e.AttributeBits&AttrLegacyBIOSBootable != 0 }

// SetLegacyBIOSBootable sets or clears attribute bit 2.
func (e *Entry) SetLegacyBIOSBootable(v bool) { e.setAttr(AttrLegacyBIOSBootable, v) }

func (e *Entry) setAttr(bit uint64, v bool) {
	if v {
		e.AttributeBits |= bit
	} else {
		e.AttributeBits &^= bit
	}
}

// Name returns the logical partition name: the UTF-16LE prefix of
// PartitionName up to (not including) the first zero code unit.
func (e Entry) Name() string {
	units := e.PartitionName[:]
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}

// SetName encodes name as UTF-16LE into PartitionName, zero-padding the
// remainder. It returns an error if name doesn't fit in nameUnits code
// units.
func (e *Entry) SetName(name string) error {
	units := utf16.Encode([]rune(name))
	if len(units) > nameUnits {
		return fmt.Errorf("gpt: partition name %q exceeds %d UTF-16 code units", name, nameUnits)
	}
	var out [nameUnits]uint16
	copy(out[:], units)
	e.PartitionName = out
	return nil
}

// onDiskEntry is the fixed 128-byte wire layout for a single entry.
type onDiskEntry struct {
	PartitionTypeGUID   [16]byte
	UniquePartitionGUID [16]byte
	StartingLBA         uint64
	EndingLBA           uint64
	AttributeBits       uint64
	PartitionName       [nameUnits]uint16
}

func (e Entry) toDisk() onDiskEntry { return onDiskEntry(e) }

func (d onDiskEntry) fromDisk() Entry { return Entry(d) }

// encodeEntry serializes e into exactly EntrySize bytes of little-endian
// wire format.
func encodeEntry(e Entry) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(EntrySize)
	if err := binary.Write(buf, binary.LittleEndian, e.toDisk()); err != nil {
		return nil, fmt.Errorf("gpt: encoding entry: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeEntry deserializes a single Entry from the first EntrySize bytes of
// buf. Any bytes of buf beyond EntrySize (size_of_partition_entry larger
// than the default) are the caller's responsibility to skip.
func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) < EntrySize {
		return Entry{}, fmt.Errorf("gpt: decoding entry: need %d bytes, got %d", EntrySize, len(buf))
	}
	var d onDiskEntry
	if err := binary.Read(bytes.NewReader(buf[:EntrySize]), binary.LittleEndian, &d); err != nil {
		return Entry{}, fmt.Errorf("gpt: decoding entry: %w", err)
	}
	return d.fromDisk(), nil
}

// encodeEntries serializes a full entry array. sizeOfEntry must be >=
// EntrySize; any excess per-entry bytes are zero-padded.
func encodeEntries(entries []Entry, sizeOfEntry uint32) ([]byte, error) {
	if sizeOfEntry < EntrySize {
		return nil, fmt.Errorf("gpt: size_of_partition_entry %d smaller than minimum %d", sizeOfEntry, EntrySize)
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(entries) * int(sizeOfEntry))
	pad := make([]byte, sizeOfEntry-EntrySize)
	for _, e := range entries {
		b, err := encodeEntry(e)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.Write(pad)
	}
	return buf.Bytes(), nil
}

// decodeEntries deserializes count entries of sizeOfEntry bytes each from
// buf.
func decodeEntries(buf []byte, count int, sizeOfEntry uint32) ([]Entry, error) {
	if sizeOfEntry < EntrySize {
		return nil, fmt.Errorf("gpt: size_of_partition_entry %d smaller than minimum %d", sizeOfEntry, EntrySize)
	}
	need := count * int(sizeOfEntry)
	if len(buf) < need {
		return nil, fmt.Errorf("gpt: decoding entries: need %d bytes, got %d", need, len(buf))
	}
	entries := make([]Entry, count)
	for i := 0; i < count; i++ {
		off := i * int(sizeOfEntry)
		e, err := decodeEntry(buf[off : off+EntrySize])
		if err != nil {
			return nil, fmt.Errorf("gpt: decoding entry %d: %w", i+1, err)
		}
		entries[i] = e
	}
	return entries, nil
}
