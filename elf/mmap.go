package elf

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapping is a read-only view of a whole file. data is nil for an empty
// file, which cannot be mapped.
type mapping struct {
	data []byte
}

// mapFile sizes f through the same handle it maps, so the length of the
// view always matches what was actually mapped.
func mapFile(f *os.File) (_ *mapping, err error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, &IOError{Op: OpStat, Path: f.Name(), Err: err}
	}
	size := fi.Size()
	if size == 0 {
		return &mapping{}, nil
	}
	if int64(int(size)) != size {
		return nil, &IOError{Op: OpMap, Path: f.Name(), Err: unix.EFBIG}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, &IOError{Op: OpMap, Path: f.Name(), Err: err}
	}
	return &mapping{data: data}, nil
}

func (m *mapping) Len() uint64 {
	return uint64(len(m.data))
}

// slice returns data[off:off+size] if the whole range lies inside the
// mapping.
func (m *mapping) slice(off, size uint64) ([]byte, bool) {
	end := off + size
	if end < off || end > m.Len() {
		return nil, false
	}
	return m.data[off:end], true
}

func (m *mapping) unmap() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return unix.Munmap(data)
}
