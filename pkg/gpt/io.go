package gpt

// WriteInto persists the table to stream, writing in the order: primary
// entry array, backup entry array, backup header, primary header. This
// ordering ensures that if a crash occurs mid-write, the primary header
// (checked first by readers) is updated last, so a reader either sees the
// entire new state via the primary or falls back to the still-intact
// backup (spec.md §4.5). Grounded on pkg/vimg/partitions.go's
// writeGPT/writeSecondaryGPT call order (entries before headers).
//
// On success, t.Header is updated in place with the refreshed CRCs so
// subsequent calls observe the persisted state.
func (t *Table) WriteInto(stream Stream) error {
	r, err := t.refresh()
	if err != nil {
		return err
	}

	if err := writeEntriesAt(stream, t.SectorSize, r.primary.PartitionEntryLBA, r.entriesBytes); err != nil {
		return writeError("primary partition entries", err)
	}

	if err := writeEntriesAt(stream, t.SectorSize, r.backup.PartitionEntryLBA, r.entriesBytes); err != nil {
		return writeError("backup partition entries", err)
	}

	if err := writeHeaderAt(stream, t.SectorSize, r.backup); err != nil {
		return writeError("backup header", err)
	}

	if err := writeHeaderAt(stream, t.SectorSize, r.primary); err != nil {
		return writeError("primary header", err)
	}

	t.Header = r.primary
	return nil
}

func writeHeaderAt(stream Stream, sectorSize int, h Header) error {
	buf, err := encodeHeader(h)
	if err != nil {
		return err
	}
	full := make([]byte, sectorSize)
	copy(full, buf)
	_, err = stream.WriteAt(full, int64(h.PrimaryLBA)*int64(sectorSize))
	return err
}

func writeEntriesAt(stream Stream, sectorSize int, lba uint64, entriesBytes []byte) error {
	_, err := stream.WriteAt(entriesBytes, int64(lba)*int64(sectorSize))
	return err
}

// RemoveAt wipes the GPT whose primary header sits at the given LBA: its
// primary header, primary entry array, backup entry array, and backup
// header are all zeroed. It is the write-side counterpart to FindAt
// (spec.md §4.5).
func RemoveAt(stream Stream, sectorSize int, lba uint64) error {
	t, err := FindAt(stream, sectorSize, lba)
	if err != nil {
		return err
	}

	entrySectors := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.SizeOfPartitionEntry, sectorSize)
	entriesSize := entrySectors * int64(sectorSize)

	zeroHeader := make([]byte, sectorSize)
	zeroEntries := make([]byte, entriesSize)

	if _, err := stream.WriteAt(zeroHeader, int64(t.Header.PrimaryLBA)*int64(sectorSize)); err != nil {
		return writeError("primary header", err)
	}
	if _, err := stream.WriteAt(zeroEntries, int64(t.Header.PartitionEntryLBA)*int64(sectorSize)); err != nil {
		return writeError("primary partition entries", err)
	}

	backupEntryLBA := int64(t.Header.BackupLBA) - entrySectors
	if _, err := stream.WriteAt(zeroEntries, backupEntryLBA*int64(sectorSize)); err != nil {
		return writeError("backup partition entries", err)
	}
	if _, err := stream.WriteAt(zeroHeader, int64(t.Header.BackupLBA)*int64(sectorSize)); err != nil {
		return writeError("backup header", err)
	}

	return nil
}
