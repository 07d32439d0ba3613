package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// protectiveMBRType is the legacy partition type byte marking a disk as
// GPT-owned.
const protectiveMBRType = 0xEE

// mbrMagic is the two-byte boot signature terminating every legacy MBR
// sector.
var mbrMagic = [2]byte{0x55, 0xAA}

// mbrPartitionEntry is a single 16-byte legacy MBR partition table entry.
type mbrPartitionEntry struct {
	Status        byte
	FirstCHS      [3]byte
	PartitionType byte
	LastCHS       [3]byte
	FirstLBA      uint32
	SectorCount   uint32
}

// ProtectiveMBR is the on-disk structure of a legacy MBR whose sole
// partition entry marks the disk as GPT-protected, grounded on
// pkg/vimg/partitions.go's ProtectiveMBR struct.
type ProtectiveMBR struct {
	BootCode      [440]byte
	DiskSignature [4]byte
	Reserved      [2]byte
	Partitions    [4]mbrPartitionEntry
	Signature     [2]byte
}

func newProtectiveMBR(totalSectors uint64) ProtectiveMBR {
	sectorCount := totalSectors - 1
	if sectorCount > 0xFFFFFFFF {
		sectorCount = 0xFFFFFFFF
	}

	var mbr ProtectiveMBR
	mbr.Signature = mbrMagic
	mbr.Partitions[0] = mbrPartitionEntry{
		Status:        0x7F,
		PartitionType: protectiveMBRType,
		FirstLBA:      1,
		SectorCount:   uint32(sectorCount),
	}
	return mbr
}

func encodeProtectiveMBR(mbr ProtectiveMBR) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, mbr); err != nil {
		return nil, fmt.Errorf("gpt: encoding protective mbr: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteProtectiveMBR writes a plain (non-bootable) protective MBR to LBA 0
// of stream, sized against sectorSize*totalSectors. It is never invoked by
// WriteInto — the caller must ask for it explicitly (spec.md §4.6).
func WriteProtectiveMBR(stream Stream, sectorSize int, totalSectors uint64) error {
	mbr := newProtectiveMBR(totalSectors)
	return writeProtectiveMBR(stream, sectorSize, mbr)
}

// WriteBootableProtectiveMBR writes a protective MBR that preserves
// caller-supplied boot code instead of zeroing it.
func WriteBootableProtectiveMBR(stream Stream, sectorSize int, totalSectors uint64, bootCode [440]byte) error {
	mbr := newProtectiveMBR(totalSectors)
	mbr.BootCode = bootCode
	return writeProtectiveMBR(stream, sectorSize, mbr)
}

func writeProtectiveMBR(stream Stream, sectorSize int, mbr ProtectiveMBR) error {
	buf, err := encodeProtectiveMBR(mbr)
	if err != nil {
		return err
	}
	full := make([]byte, sectorSize)
	copy(full, buf)
	if _, err := stream.WriteAt(full, 0); err != nil {
		return writeError("protective mbr", err)
	}
	return nil
}

// ReadProtectiveMBR reads and decodes the MBR at LBA 0 of stream, without
// validating its contents. Supplements spec.md §4.6, which only asks for
// writing; used by tests to assert what WriteProtectiveMBR produced.
func ReadProtectiveMBR(stream Stream, sectorSize int) (ProtectiveMBR, error) {
	buf := make([]byte, sectorSize)
	if _, err := stream.ReadAt(buf, 0); err != nil {
		return ProtectiveMBR{}, readError("protective mbr", err)
	}

	var mbr ProtectiveMBR
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &mbr); err != nil {
		return ProtectiveMBR{}, fmt.Errorf("gpt: decoding protective mbr: %w", err)
	}
	return mbr, nil
}

// IsProtective reports whether the MBR's first partition entry is the
// GPT-protective marker (type 0xEE) with the expected magic trailer.
func (mbr ProtectiveMBR) IsProtective() bool {
	return mbr.Signature == mbrMagic && mbr.Partitions[0].PartitionType == protectiveMBRType
}
