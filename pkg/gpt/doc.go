// Package gpt reads, mutates, and writes GUID Partition Tables against an
// abstract seekable byte stream. It is a bit-exact implementation of the
// UEFI GPT on-disk format: mirrored primary/backup headers, the
// partition-entry array and its CRC, and the invariants tying the two
// header copies together. Block I/O, kernel notification, and CLI/TUI
// concerns are left to the caller; see pkg/blkrrpart and pkg/gptutil for
// the platform and convenience collaborators this repo ships alongside it.
package gpt
