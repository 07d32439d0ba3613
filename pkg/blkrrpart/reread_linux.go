//go:build linux

package blkrrpart

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Reread asks the kernel to re-read f's partition table via the BLKRRPART
// ioctl. f must refer to the whole block device, not a partition node.
func Reread(f *os.File, log Logger) error {
	if log == nil {
		log = NopLogger()
	}

	fd := int(f.Fd())
	if err := unix.IoctlSetInt(fd, unix.BLKRRPART, 0); err != nil {
		log.Errorf("BLKRRPART ioctl failed: %v", err)
		return fmt.Errorf("blkrrpart: BLKRRPART ioctl: %w", err)
	}

	log.Debugf("kernel partition table reread for %s", f.Name())
	return nil
}

// SectorSize queries f's logical sector size via the BLKSSZGET ioctl.
func SectorSize(f *os.File, log Logger) (int, error) {
	if log == nil {
		log = NopLogger()
	}

	fd := int(f.Fd())
	size, err := unix.IoctlGetInt(fd, unix.BLKSSZGET)
	if err != nil {
		log.Errorf("BLKSSZGET ioctl failed: %v", err)
		return 0, fmt.Errorf("blkrrpart: BLKSSZGET ioctl: %w", err)
	}

	log.Debugf("logical sector size for %s is %d", f.Name(), size)
	return size, nil
}
