package gpt

import "sort"

// FreeRun describes a contiguous run of unused LBAs within the usable
// window.
type FreeRun struct {
	StartingLBA uint64
	Length      uint64
}

// defaultAlignmentSectors returns the default alignment (in sectors) for a
// given sector size: 1 MiB worth of sectors (spec.md §4.4).
func defaultAlignmentSectors(sectorSize int) uint64 {
	const oneMiB = 1 << 20
	return uint64(oneMiB / sectorSize)
}

// Alignment returns the table's current placement alignment in sectors. If
// t.AlignmentSectors is unset (zero), the spec's 1 MiB default for the
// table's sector size is used.
func (t *Table) Alignment() uint64 {
	if t.AlignmentSectors != 0 {
		return t.AlignmentSectors
	}
	return defaultAlignmentSectors(t.SectorSize)
}

// FreeSectors returns the ordered list of free runs covering every gap in
// the usable window between used entries (spec.md §4.4).
func (t *Table) FreeSectors() []FreeRun {
	type span struct{ start, end uint64 }

	var used []span
	for _, e := range t.Entries {
		if e.Used() && e.EndingLBA >= e.StartingLBA {
			used = append(used, span{e.StartingLBA, e.EndingLBA})
		}
	}
	sort.Slice(used, func(i, j int) bool { return used[i].start < used[j].start })

	var runs []FreeRun
	cursor := t.Header.FirstUsableLBA
	for _, s := range used {
		if s.start > cursor {
			runs = append(runs, FreeRun{StartingLBA: cursor, Length: s.start - cursor})
		}
		if s.end+1 > cursor {
			cursor = s.end + 1
		}
	}
	if cursor <= t.Header.LastUsableLBA {
		runs = append(runs, FreeRun{StartingLBA: cursor, Length: t.Header.LastUsableLBA - cursor + 1})
	}

	return runs
}

// MaximumPartitionSize scans used entries and returns the size, in sectors,
// of the largest contiguous free run within the usable window. It fails
// with ErrNoSpaceLeft if no free run exists.
func (t *Table) MaximumPartitionSize() (uint64, error) {
	runs := t.FreeSectors()
	var max uint64
	for _, r := range runs {
		if r.Length > max {
			max = r.Length
		}
	}
	if max == 0 {
		return 0, ErrNoSpaceLeft
	}
	return max, nil
}

// FindOptimalPlace returns the smallest StartingLBA of a free run that can
// hold size sectors, aligned to t.Alignment(). It returns ErrNoSpaceLeft if
// no alignable run of the requested size exists (spec.md §4.4, §8).
func (t *Table) FindOptimalPlace(size uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrNoSpaceLeft
	}

	align := t.Alignment()
	for _, run := range t.FreeSectors() {
		start := alignUp(run.StartingLBA, align)
		if start < run.StartingLBA {
			continue
		}
		runEnd := run.StartingLBA + run.Length - 1
		if start+size-1 <= runEnd {
			return start, nil
		}
	}

	return 0, ErrNoSpaceLeft
}

func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// GetPartitionByteRange returns the inclusive byte range [start, end] on
// disk occupied by the used entry in slot i.
func (t *Table) GetPartitionByteRange(i int) (start, end int64, err error) {
	e, err := t.Entry(i)
	if err != nil {
		return 0, 0, err
	}
	if !e.Used() {
		return 0, 0, ErrUnusedPartition
	}
	start = int64(e.StartingLBA) * int64(t.SectorSize)
	end = (int64(e.EndingLBA)+1)*int64(t.SectorSize) - 1
	return start, end, nil
}
