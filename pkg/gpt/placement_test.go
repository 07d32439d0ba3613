package gpt

import "testing"

func TestFreeSectorsNoEntries(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	runs := tbl.FreeSectors()
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].StartingLBA != tbl.Header.FirstUsableLBA {
		t.Fatalf("run start = %d, want %d", runs[0].StartingLBA, tbl.Header.FirstUsableLBA)
	}
	wantLen := tbl.Header.LastUsableLBA - tbl.Header.FirstUsableLBA + 1
	if runs[0].Length != wantLen {
		t.Fatalf("run length = %d, want %d", runs[0].Length, wantLen)
	}
}

func TestFreeSectorsAroundUsedEntries(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	first := tbl.Header.FirstUsableLBA
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: first + 10, EndingLBA: first + 20}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}

	runs := tbl.FreeSectors()
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].StartingLBA != first || runs[0].Length != 10 {
		t.Fatalf("first run = %+v, want start=%d length=10", runs[0], first)
	}
	if runs[1].StartingLBA != first+21 {
		t.Fatalf("second run start = %d, want %d", runs[1].StartingLBA, first+21)
	}
}

func TestMaximumPartitionSizeNoSpace(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: tbl.Header.FirstUsableLBA, EndingLBA: tbl.Header.LastUsableLBA}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.MaximumPartitionSize(); err != ErrNoSpaceLeft {
		t.Fatalf("err = %v, want ErrNoSpaceLeft", err)
	}
}

func TestFindOptimalPlaceAligns(t *testing.T) {
	tbl, _ := newFreshTable(t, 8192, 512)
	tbl.AlignmentSectors = 64

	first := tbl.Header.FirstUsableLBA
	// Occupy a small sliver at the very start of the usable window so the
	// next free run's unaligned start must be rounded up.
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: first, EndingLBA: first + 9}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}

	start, err := tbl.FindOptimalPlace(100)
	if err != nil {
		t.Fatalf("FindOptimalPlace: %v", err)
	}
	if start%64 != 0 {
		t.Fatalf("start = %d, not aligned to 64", start)
	}
	if start <= first+9 {
		t.Fatalf("start = %d, expected it to skip past the occupied sliver ending at %d", start, first+9)
	}
}

func TestFindOptimalPlaceNoSpace(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	total := tbl.Header.LastUsableLBA - tbl.Header.FirstUsableLBA + 1
	if _, err := tbl.FindOptimalPlace(total + 1); err != ErrNoSpaceLeft {
		t.Fatalf("err = %v, want ErrNoSpaceLeft", err)
	}
}

func TestGetPartitionByteRange(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: 34, EndingLBA: 99}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}

	start, end, err := tbl.GetPartitionByteRange(1)
	if err != nil {
		t.Fatalf("GetPartitionByteRange: %v", err)
	}
	if start != 34*512 {
		t.Fatalf("start = %d, want %d", start, 34*512)
	}
	if end != 100*512-1 {
		t.Fatalf("end = %d, want %d", end, 100*512-1)
	}
}

func TestGetPartitionByteRangeUnused(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	if _, _, err := tbl.GetPartitionByteRange(1); err != ErrUnusedPartition {
		t.Fatalf("err = %v, want ErrUnusedPartition", err)
	}
}

func TestAlignmentDefaultsToOneMiB(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	if tbl.Alignment() != 2048 {
		t.Fatalf("Alignment() = %d, want 2048", tbl.Alignment())
	}

	tbl4k, _ := newFreshTable(t, 200, 4096)
	if tbl4k.Alignment() != 256 {
		t.Fatalf("Alignment() = %d, want 256", tbl4k.Alignment())
	}
}
