package gpt

import (
	"fmt"
)

// Stream is the abstract seekable byte stream this package operates
// against: random read, random write, and a length query. Files, memory
// buffers, and raw block devices are all the caller's problem (spec.md §1).
type Stream interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Len() (int64, error)
}

// DefaultSectorSizeCandidates lists the sector sizes Open tries, in order,
// when a stream's sector size isn't already known.
var DefaultSectorSizeCandidates = []int{512, 4096}

// MaximumPartitionEntries is the conventional number_of_partition_entries
// used by New.
const MaximumPartitionEntries = 128

// Table is the in-memory GPT: the primary header (authoritative), the
// ordered partition-entry array (1-indexed at the API edge, 0-indexed
// internally; slot count fixed once constructed), and the sector size.
type Table struct {
	Header     Header
	Entries    []Entry
	SectorSize int

	// AlignmentSectors overrides the default 1 MiB placement alignment used
	// by FindOptimalPlace. Zero means "use the sector-size default".
	AlignmentSectors uint64
}

func validSectorSize(n int) bool {
	return n == 512 || n == 4096
}

func entryArraySectors(count uint32, entrySize uint32, sectorSize int) int64 {
	total := int64(count) * int64(entrySize)
	return (total + int64(sectorSize) - 1) / int64(sectorSize)
}

// New constructs a fresh, empty Table (all 128 entries unused) sized for a
// stream of streamLen bytes at the given sector size. Grounded on
// pkg/vimg/builder.go's Prebuild layout math (secondaryGPTHeaderLBA,
// secondaryGPTEntriesLBA, lastUsableLBA derivations), generalized from a
// single hardcoded sector size to the 512/4096 cases spec.md requires.
func New(streamLen int64, sectorSize int, diskGUID [16]byte) (*Table, error) {
	if !validSectorSize(sectorSize) {
		return nil, ErrInvalidSectorSize
	}

	totalSectors := streamLen / int64(sectorSize)
	entrySectors := entryArraySectors(MaximumPartitionEntries, EntrySize, sectorSize)

	// 3 = MBR + primary header + backup header.
	if totalSectors < 3+2*entrySectors {
		return nil, fmt.Errorf("gpt: stream too small for a %d-byte-sector GPT (%d sectors available)", sectorSize, totalSectors)
	}

	backupLBA := uint64(totalSectors - 1)
	firstUsable := uint64(2 + entrySectors)
	lastUsable := backupLBA - uint64(entrySectors) - 1

	h := Header{
		Signature:                Signature,
		Revision:                 DefaultRevision,
		HeaderSize:               HeaderSize,
		PrimaryLBA:               1,
		BackupLBA:                backupLBA,
		FirstUsableLBA:           firstUsable,
		LastUsableLBA:            lastUsable,
		DiskGUID:                 diskGUID,
		PartitionEntryLBA:        2,
		NumberOfPartitionEntries: MaximumPartitionEntries,
		SizeOfPartitionEntry:     EntrySize,
	}

	return &Table{
		Header:     h,
		Entries:    make([]Entry, MaximumPartitionEntries),
		SectorSize: sectorSize,
	}, nil
}

// NewFromStream is a convenience wrapper around New that queries the
// stream's current length.
func NewFromStream(stream Stream, sectorSize int, diskGUID [16]byte) (*Table, error) {
	n, err := stream.Len()
	if err != nil {
		return nil, readError("stream length", err)
	}
	return New(n, sectorSize, diskGUID)
}

func readHeaderAt(stream Stream, sectorSize int, lba uint64) (Header, error) {
	buf := make([]byte, HeaderSize)
	off := int64(lba) * int64(sectorSize)
	if _, err := stream.ReadAt(buf, off); err != nil {
		return Header{}, readError("gpt header", err)
	}
	return decodeHeader(buf)
}

func readEntriesFor(stream Stream, sectorSize int, h Header) ([]Entry, error) {
	size := int64(h.NumberOfPartitionEntries) * int64(h.SizeOfPartitionEntry)
	buf := make([]byte, size)
	off := int64(h.PartitionEntryLBA) * int64(sectorSize)
	if _, err := stream.ReadAt(buf, off); err != nil {
		return nil, readError("gpt partition entries", err)
	}
	return decodeEntries(buf, int(h.NumberOfPartitionEntries), h.SizeOfPartitionEntry)
}

// validateHeaderChecksum re-derives h's header CRC (with the CRC field
// zeroed) and compares it against the stored value.
func validateHeaderChecksum(h Header) error {
	if !h.validSignature() {
		return ErrInvalidSignature
	}
	zeroed := h
	zeroed.CRC32 = 0
	buf, err := encodeHeader(zeroed)
	if err != nil {
		return err
	}
	if computeHeaderCRC(buf, h.HeaderSize) != h.CRC32 {
		return ErrInvalidHeaderCRC
	}
	return nil
}

func validateEntriesChecksum(h Header, entries []Entry) error {
	buf, err := encodeEntries(entries, h.SizeOfPartitionEntry)
	if err != nil {
		return err
	}
	if computeEntriesCRC(buf) != h.PartitionEntriesCRC32 {
		return ErrInvalidEntriesCRC
	}
	return nil
}

// tryReadTable attempts to read and fully validate a GPT (header + entries)
// whose primary copy sits at LBA lba.
func tryReadTable(stream Stream, sectorSize int, lba uint64) (Header, []Entry, error) {
	h, err := readHeaderAt(stream, sectorSize, lba)
	if err != nil {
		return Header{}, nil, err
	}
	if err := validateHeaderChecksum(h); err != nil {
		return Header{}, nil, err
	}
	entries, err := readEntriesFor(stream, sectorSize, h)
	if err != nil {
		return Header{}, nil, err
	}
	if err := validateEntriesChecksum(h, entries); err != nil {
		return Header{}, nil, err
	}
	return h, entries, nil
}

// reconstructPrimaryFromBackup builds a primary header from a validated
// backup header, per spec.md §9's open question: the backup's copy is
// derived, not preserved, when recovering from a corrupt primary, so the
// reconstructed primary always assumes the standard primary location
// (LBA 1, entry array at LBA 2) even if the original table's author had
// customized PartitionEntryLBA.
func reconstructPrimaryFromBackup(backup Header) Header {
	primary := backup
	primary.PrimaryLBA = 1
	primary.BackupLBA = backup.PrimaryLBA
	primary.PartitionEntryLBA = 2
	primary.CRC32 = 0
	return primary
}

// Open locates and decodes a GPT from stream, trying each of
// DefaultSectorSizeCandidates in turn. For each candidate it reads the
// primary header at LBA 1; on any validation failure it falls back to the
// backup header at the last LBA of the stream and, if that validates,
// reconstructs the primary from it. If neither copy validates at a given
// sector size the primary's error is recorded and the next candidate is
// tried; if every candidate fails, the first candidate's primary error is
// returned (spec.md §4.2, §7).
func Open(stream Stream) (*Table, error) {
	streamLen, err := stream.Len()
	if err != nil {
		return nil, readError("stream length", err)
	}

	var firstErr error

	for _, sectorSize := range DefaultSectorSizeCandidates {
		totalSectors := streamLen / int64(sectorSize)
		if totalSectors < 3 {
			if firstErr == nil {
				firstErr = fmt.Errorf("gpt: stream too small for %d-byte sectors", sectorSize)
			}
			continue
		}

		h, entries, primaryErr := tryReadTable(stream, sectorSize, 1)
		if primaryErr == nil {
			return &Table{Header: h, Entries: entries, SectorSize: sectorSize}, nil
		}
		if firstErr == nil {
			firstErr = primaryErr
		}

		backupLBA := uint64(totalSectors - 1)
		backupHdr, backupEntries, backupErr := tryReadTable(stream, sectorSize, backupLBA)
		if backupErr == nil {
			primary := reconstructPrimaryFromBackup(backupHdr)
			return &Table{Header: primary, Entries: backupEntries, SectorSize: sectorSize}, nil
		}
	}

	return nil, fmt.Errorf("gpt: no valid GPT found: %w", firstErr)
}

// FindAt locates a GPT whose primary header sits at the caller-specified
// LBA, for nested or non-standard layouts (spec.md §4.5).
func FindAt(stream Stream, sectorSize int, lba uint64) (*Table, error) {
	if !validSectorSize(sectorSize) {
		return nil, ErrInvalidSectorSize
	}
	h, entries, err := tryReadTable(stream, sectorSize, lba)
	if err != nil {
		return nil, err
	}
	return &Table{Header: h, Entries: entries, SectorSize: sectorSize}, nil
}

// NumSlots returns the number of partition-entry slots in the table.
func (t *Table) NumSlots() int {
	return len(t.Entries)
}

func (t *Table) checkIndex(i int) error {
	if i < 1 || i > len(t.Entries) {
		return ErrInvalidPartitionNumber
	}
	return nil
}

// Entry returns the entry in 1-based slot i.
func (t *Table) Entry(i int) (Entry, error) {
	if err := t.checkIndex(i); err != nil {
		return Entry{}, err
	}
	return t.Entries[i-1], nil
}

// SetEntry assigns e to 1-based slot i.
func (t *Table) SetEntry(i int, e Entry) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	t.Entries[i-1] = e
	return nil
}

// IndexedEntry pairs a 1-based slot number with its entry, returned by All.
type IndexedEntry struct {
	Index int
	Entry Entry
}

// All returns every (index, entry) pair in slot order.
func (t *Table) All() []IndexedEntry {
	out := make([]IndexedEntry, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = IndexedEntry{Index: i + 1, Entry: e}
	}
	return out
}

// Remove zero-fills slot i.
func (t *Table) Remove(i int) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	t.Entries[i-1] = Entry{}
	return nil
}

// Swap exchanges the contents of slots i and j.
func (t *Table) Swap(i, j int) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	if err := t.checkIndex(j); err != nil {
		return err
	}
	t.Entries[i-1], t.Entries[j-1] = t.Entries[j-1], t.Entries[i-1]
	return nil
}

// Sort rearranges used entries to appear before unused ones, sorted
// ascending by StartingLBA, preserving each entry's own attribute and name
// data. Slot numbers are reassigned, invalidating any index the caller was
// holding (spec.md §4.4).
func (t *Table) Sort() {
	used := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Used() {
			used = append(used, e)
		}
	}
	sortEntriesByStart(used)

	out := make([]Entry, len(t.Entries))
	copy(out, used)
	t.Entries = out
}

func sortEntriesByStart(entries []Entry) {
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		j := i - 1
		for j >= 0 && entries[j].StartingLBA > e.StartingLBA {
			entries[j+1] = entries[j]
			j--
		}
		entries[j+1] = e
	}
}

// RandomizeGUIDs replaces the disk GUID and every used entry's
// UniquePartitionGUID with fresh values drawn from rng.
func (t *Table) RandomizeGUIDs(rng RNG) error {
	diskGUID, err := rng()
	if err != nil {
		return err
	}
	t.Header.DiskGUID = diskGUID

	for i := range t.Entries {
		if !t.Entries[i].Used() {
			continue
		}
		guid, err := rng()
		if err != nil {
			return err
		}
		t.Entries[i].UniquePartitionGUID = guid
	}
	return nil
}

// UpdateFrom refreshes FirstUsableLBA, LastUsableLBA, and the backup
// location by re-examining the stream's current length. Used after the
// underlying device has been resized (spec.md §4.2, scenario 6).
func (t *Table) UpdateFrom(stream Stream) error {
	streamLen, err := stream.Len()
	if err != nil {
		return readError("stream length", err)
	}
	totalSectors := streamLen / int64(t.SectorSize)
	entrySectors := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.SizeOfPartitionEntry, t.SectorSize)

	backupLBA := uint64(totalSectors - 1)
	t.Header.BackupLBA = backupLBA
	t.Header.FirstUsableLBA = t.Header.PartitionEntryLBA + uint64(entrySectors)
	t.Header.LastUsableLBA = backupLBA - uint64(entrySectors) - 1
	return nil
}

// Clone returns a deep value-copy of the table, letting a caller snapshot
// state before a destructive reorder (Sort renumbers slots; RandomizeGUIDs
// overwrites GUIDs in place).
func (t *Table) Clone() *Table {
	out := &Table{
		Header:           t.Header,
		Entries:          make([]Entry, len(t.Entries)),
		SectorSize:       t.SectorSize,
		AlignmentSectors: t.AlignmentSectors,
	}
	copy(out.Entries, t.Entries)
	return out
}
