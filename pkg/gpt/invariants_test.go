package gpt

import (
	"errors"
	"testing"
)

func TestValidateRejectsOutOfRangeEntry(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: tbl.Header.FirstUsableLBA - 1, EndingLBA: tbl.Header.FirstUsableLBA + 5}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}

	err := tbl.Validate()
	if !errors.Is(err, ErrInvalidPartitionBoundaries) {
		t.Fatalf("err = %v, want ErrInvalidPartitionBoundaries", err)
	}
	var be *boundaryError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want a boundaryError", err)
	}
	if be.index != 1 {
		t.Fatalf("boundaryError.index = %d, want 1", be.index)
	}
}

func TestValidateRejectsInvertedEntry(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: 100, EndingLBA: 50}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Validate(); !errors.Is(err, ErrInvalidPartitionBoundaries) {
		t.Fatalf("err = %v, want ErrInvalidPartitionBoundaries", err)
	}
}

func TestValidateAcceptsAdjacentNonOverlapping(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	a := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: 34, EndingLBA: 50}
	b := Entry{PartitionTypeGUID: [16]byte{2}, StartingLBA: 51, EndingLBA: 70}
	if err := tbl.SetEntry(1, a); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetEntry(2, b); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCheckOverlapsIdentifiesSlots(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	a := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: 34, EndingLBA: 50}
	b := Entry{PartitionTypeGUID: [16]byte{2}, StartingLBA: 45, EndingLBA: 60}
	if err := tbl.SetEntry(3, a); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetEntry(7, b); err != nil {
		t.Fatal(err)
	}

	err := tbl.checkOverlaps()
	var oe *overlapError
	if !errors.As(err, &oe) {
		t.Fatalf("err = %v, want an overlapError", err)
	}
	if oe.a != 3 || oe.b != 7 {
		t.Fatalf("overlapError = {%d,%d}, want {3,7}", oe.a, oe.b)
	}
}

func TestRefreshPopulatesMirroredCRCs(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	e := Entry{PartitionTypeGUID: [16]byte{1}, StartingLBA: tbl.Header.FirstUsableLBA, EndingLBA: tbl.Header.LastUsableLBA}
	if err := tbl.SetEntry(1, e); err != nil {
		t.Fatal(err)
	}

	r, err := tbl.refresh()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := validateHeaderChecksum(r.primary); err != nil {
		t.Fatalf("primary header CRC: %v", err)
	}
	if err := validateHeaderChecksum(r.backup); err != nil {
		t.Fatalf("backup header CRC: %v", err)
	}
	if r.primary.PartitionEntriesCRC32 != r.backup.PartitionEntriesCRC32 {
		t.Fatal("primary and backup entries CRC must match")
	}
	if r.backup.PrimaryLBA != tbl.Header.BackupLBA {
		t.Fatalf("backup.PrimaryLBA = %d, want %d", r.backup.PrimaryLBA, tbl.Header.BackupLBA)
	}
	if r.backup.BackupLBA != tbl.Header.PrimaryLBA {
		t.Fatalf("backup.BackupLBA = %d, want %d", r.backup.BackupLBA, tbl.Header.PrimaryLBA)
	}
}

func TestCheckEntryArrayClearRejectsWindowOverEntryArray(t *testing.T) {
	tbl, _ := newFreshTable(t, 200, 512)
	tbl.Header.FirstUsableLBA = 0
	if err := tbl.checkEntryArrayClear(); !errors.Is(err, ErrInvalidPartitionBoundaries) {
		t.Fatalf("err = %v, want ErrInvalidPartitionBoundaries", err)
	}
}
