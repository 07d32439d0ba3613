package gpt

// Validate checks the boundary and overlap invariants (spec.md §3 rules
// 4-7) without touching any CRC or mirror field. It is also run
// automatically by every write-producing operation (refresh, below).
func (t *Table) Validate() error {
	if !validSectorSize(t.SectorSize) {
		return ErrInvalidSectorSize
	}

	for i, e := range t.Entries {
		if !e.Used() {
			continue
		}
		idx := i + 1
		if e.EndingLBA < e.StartingLBA {
			return newBoundaryError(idx, ErrInvalidPartitionBoundaries)
		}
		if e.StartingLBA < t.Header.FirstUsableLBA || e.EndingLBA > t.Header.LastUsableLBA {
			return newBoundaryError(idx, ErrInvalidPartitionBoundaries)
		}
	}

	if err := t.checkOverlaps(); err != nil {
		return err
	}

	return t.checkEntryArrayClear()
}

// checkOverlaps sorts used entries by StartingLBA and rejects on the first
// pairwise overlap, identifying the offending original slot indices
// (spec.md §3 rule 5, §8 "overlap detection").
func (t *Table) checkOverlaps() error {
	type indexed struct {
		index int
		entry Entry
	}

	used := make([]indexed, 0, len(t.Entries))
	for i, e := range t.Entries {
		if e.Used() {
			used = append(used, indexed{index: i + 1, entry: e})
		}
	}

	for i := 1; i < len(used); i++ {
		cur := used[i]
		j := i - 1
		for j >= 0 && used[j].entry.StartingLBA > cur.entry.StartingLBA {
			used[j+1] = used[j]
			j--
		}
		used[j+1] = cur
	}

	for i := 1; i < len(used); i++ {
		prev, cur := used[i-1], used[i]
		if cur.entry.StartingLBA <= prev.entry.EndingLBA {
			return newOverlapError(prev.index, cur.index)
		}
	}

	return nil
}

// checkEntryArrayClear verifies rule 7: the primary and backup entry-array
// regions don't overlap the usable window.
func (t *Table) checkEntryArrayClear() error {
	entrySectors := entryArraySectors(t.Header.NumberOfPartitionEntries, t.Header.SizeOfPartitionEntry, t.SectorSize)

	primaryStart := int64(t.Header.PartitionEntryLBA)
	primaryEnd := primaryStart + entrySectors - 1
	if rangesOverlap(primaryStart, primaryEnd, int64(t.Header.FirstUsableLBA), int64(t.Header.LastUsableLBA)) {
		return ErrInvalidPartitionBoundaries
	}

	backupEntryLBA := int64(t.Header.BackupLBA) - entrySectors
	backupEnd := backupEntryLBA + entrySectors - 1
	if rangesOverlap(backupEntryLBA, backupEnd, int64(t.Header.FirstUsableLBA), int64(t.Header.LastUsableLBA)) {
		return ErrInvalidPartitionBoundaries
	}

	return nil
}

func rangesOverlap(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// refreshed bundles everything WriteInto needs to persist a table: the
// primary and backup headers (CRCs populated, mirrored per spec.md §4.3)
// and the encoded entry-array bytes shared by both copies.
type refreshed struct {
	primary      Header
	backup       Header
	entriesBytes []byte
}

// refresh validates the table, then re-derives every field the invariants
// layer owns: CRCs (rule 1-2) and the backup mirror (rule 3). Grounded on
// pkg/vimg/partitions.go's writePrimaryGPTHeader/writeSecondaryGPTHeader,
// which each zero the CRC field, encode, checksum, and re-encode
// independently for their own copy.
func (t *Table) refresh() (refreshed, error) {
	if err := t.Validate(); err != nil {
		return refreshed{}, err
	}

	entriesBytes, err := encodeEntries(t.Entries, t.Header.SizeOfPartitionEntry)
	if err != nil {
		return refreshed{}, err
	}
	entriesCRC := computeEntriesCRC(entriesBytes)

	primary := t.Header
	primary.PartitionEntriesCRC32 = entriesCRC
	primary.CRC32 = 0
	if err := recomputeHeaderCRC(&primary); err != nil {
		return refreshed{}, err
	}

	backup := deriveBackup(primary, t.SectorSize)
	if err := recomputeHeaderCRC(&backup); err != nil {
		return refreshed{}, err
	}

	return refreshed{primary: primary, backup: backup, entriesBytes: entriesBytes}, nil
}

// deriveBackup builds the backup header from the primary by swapping
// PrimaryLBA/BackupLBA and recomputing PartitionEntryLBA for the backup
// copy (spec.md §4.3 rule 3, §9 open question: the primary's
// PartitionEntryLBA is preserved as given; only the backup's is derived).
func deriveBackup(primary Header, sectorSize int) Header {
	backup := primary
	backup.PrimaryLBA = primary.BackupLBA
	backup.BackupLBA = primary.PrimaryLBA
	entrySectors := entryArraySectors(primary.NumberOfPartitionEntries, primary.SizeOfPartitionEntry, sectorSize)
	backup.PartitionEntryLBA = backup.PrimaryLBA - uint64(entrySectors)
	return backup
}

func recomputeHeaderCRC(h *Header) error {
	h.CRC32 = 0
	buf, err := encodeHeader(*h)
	if err != nil {
		return err
	}
	h.CRC32 = computeHeaderCRC(buf, h.HeaderSize)
	return nil
}
