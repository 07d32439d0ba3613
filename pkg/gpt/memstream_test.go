package gpt

// memStream is a []byte-backed Stream used to build and exercise fixture
// images inline, rather than reading checked-in binary files from disk —
// matching pkg/xfs/xts_test.go's preference for synthesizing test
// structures in Go.
type memStream struct {
	data []byte
}

func newMemStream(sectors int, sectorSize int) *memStream {
	return &memStream{data: make([]byte, sectors*sectorSize)}
}

func (m *memStream) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *memStream) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	n := copy(m.data[off:], p)
	return n, nil
}

func (m *memStream) Len() (int64, error) {
	return int64(len(m.data)), nil
}

func (m *memStream) grow(newSectors int, sectorSize int) {
	newLen := newSectors * sectorSize
	if newLen <= len(m.data) {
		return
	}
	grown := make([]byte, newLen)
	copy(grown, m.data)
	m.data = grown
}
