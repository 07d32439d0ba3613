package gpt

import "testing"

func TestEntryRoundTrip(t *testing.T) {
	e := Entry{
		PartitionTypeGUID:   [16]byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		UniquePartitionGUID: [16]byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
		StartingLBA:         34,
		EndingLBA:           99,
		AttributeBits:       AttrRequired,
	}
	if err := e.SetName("root"); err != nil {
		t.Fatalf("SetName: %v", err)
	}

	buf, err := encodeEntry(e)
	if err != nil {
		t.Fatalf("encodeEntry: %v", err)
	}
	if len(buf) != EntrySize {
		t.Fatalf("encoded entry size = %d, want %d", len(buf), EntrySize)
	}

	got, err := decodeEntry(buf)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if got != e {
		t.Fatalf("decoded entry = %+v, want %+v", got, e)
	}
	if got.Name() != "root" {
		t.Fatalf("Name() = %q, want %q", got.Name(), "root")
	}
	if !got.Used() {
		t.Fatal("expected entry to be used")
	}
	if got.Size() != 66 {
		t.Fatalf("Size() = %d, want 66", got.Size())
	}
}

func TestEntryUnused(t *testing.T) {
	var e Entry
	if e.Used() {
		t.Fatal("zero-value entry must be unused")
	}
}

func TestEntrySetNameTooLong(t *testing.T) {
	var e Entry
	long := make([]rune, nameUnits+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := e.SetName(string(long)); err == nil {
		t.Fatal("expected error for over-long name")
	}
}

func TestEntryAttributeBits(t *testing.T) {
	var e Entry
	e.SetRequired(true)
	e.SetLegacyBIOSBootable(true)

	if !e.Required() || !e.LegacyBIOSBootable() {
		t.Fatal("expected both bits set")
	}
	if e.NoBlockIO() {
		t.Fatal("NoBlockIO should be unset")
	}

	e.SetRequired(false)
	if e.Required() {
		t.Fatal("expected bit 0 cleared")
	}
	if !e.LegacyBIOSBootable() {
		t.Fatal("clearing bit 0 must not disturb bit 2")
	}
}

func TestEncodeEntriesPadding(t *testing.T) {
	entries := []Entry{{StartingLBA: 1, EndingLBA: 2, PartitionTypeGUID: [16]byte{1}}}
	buf, err := encodeEntries(entries, 136)
	if err != nil {
		t.Fatalf("encodeEntries: %v", err)
	}
	if len(buf) != 136 {
		t.Fatalf("len(buf) = %d, want 136", len(buf))
	}
	for _, b := range buf[EntrySize:] {
		if b != 0 {
			t.Fatal("expected zero padding beyond EntrySize")
		}
	}

	back, err := decodeEntries(buf, 1, 136)
	if err != nil {
		t.Fatalf("decodeEntries: %v", err)
	}
	if back[0].StartingLBA != 1 || back[0].EndingLBA != 2 {
		t.Fatalf("unexpected decoded entry: %+v", back[0])
	}
}
