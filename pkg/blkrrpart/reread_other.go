//go:build !linux

package blkrrpart

import "os"

// Reread always fails with ErrUnsupported outside Linux.
func Reread(f *os.File, log Logger) error {
	if log == nil {
		log = NopLogger()
	}
	log.Warnf("BLKRRPART unsupported on this platform")
	return ErrUnsupported
}

// SectorSize always fails with ErrUnsupported outside Linux.
func SectorSize(f *os.File, log Logger) (int, error) {
	if log == nil {
		log = NopLogger()
	}
	log.Warnf("BLKSSZGET unsupported on this platform")
	return 0, ErrUnsupported
}
