// Package gptutil provides caller-facing GUID convenience helpers that the
// core pkg/gpt package deliberately stays ignorant of: pkg/gpt treats every
// GUID field as an opaque 16-byte array and never parses its textual form
// (spec.md §4.1, §9). Callers that want to print a disk or partition GUID
// in the conventional mixed-endian string form, or generate a fresh one,
// use this package instead. Grounded on pkg/provisioners/google's use of
// github.com/google/uuid for generated resource identifiers.
package gptutil

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vorteil/gogpt/pkg/gpt"
)

// NewGUID returns 16 freshly generated random bytes suitable for a disk or
// partition GUID field, in the raw on-disk byte order pkg/gpt expects
// (opaque — no endian massaging is performed here, since pkg/gpt never
// interprets the bytes either).
func NewGUID() ([16]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return [16]byte{}, fmt.Errorf("gptutil: generating guid: %w", err)
	}
	return [16]byte(id), nil
}

// RNG adapts NewGUID to the gpt.RNG function type, for use with
// gpt.Table.RandomizeGUIDs.
func RNG() gpt.RNG {
	return func() ([16]byte, error) {
		return NewGUID()
	}
}

// FormatGUID renders a raw 16-byte GUID field in the conventional
// mixed-endian textual form (e.g. "01234567-89ab-cdef-0123-456789abcdef"),
// per spec.md §4.1's description of the Microsoft mixed-endian GUID layout:
// the first three groups are little-endian, the last two are big-endian.
func FormatGUID(b [16]byte) string {
	id := uuid.UUID(swapGUIDGroups(b))
	return id.String()
}

// ParseGUID parses a textual GUID into the raw 16-byte on-disk form
// expected by pkg/gpt.
func ParseGUID(s string) ([16]byte, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, fmt.Errorf("gptutil: parsing guid %q: %w", s, err)
	}
	return swapGUIDGroups([16]byte(id)), nil
}

// swapGUIDGroups converts between the on-disk mixed-endian layout and the
// big-endian byte order of uuid.UUID by reversing the first three groups
// (4, 2 and 2 bytes). It is its own inverse.
func swapGUIDGroups(b [16]byte) [16]byte {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5] = b[5], b[4]
	b[6], b[7] = b[7], b[6]
	return b
}
