package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// ELF is a memory-mapped ELF64 image with its section header table decoded.
// It is read-only once New returns; Close must not run concurrently with
// other methods.
type ELF struct {
	bin      string
	mapping  *mapping
	header   Header
	sections []SectionHeader
}

// SectionHeader is one decoded entry of the section header table.
type SectionHeader struct {
	Index      int
	Name       string
	NameOffset uint32
	Type       elf.SectionType
	Flags      elf.SectionFlag
	Addr       uint64
	Offset     uint64
	Size       uint64
	Link       uint32
	Entsize    uint64
}

// Section is a copy of a section's bytes. It does not reference the
// mapping it was read from.
type Section struct {
	SectionHeader
	Data []byte
}

func New(bin string) (_ *ELF, err error) {
	binFile, err := os.Open(bin)
	if err != nil {
		return nil, &IOError{Op: OpOpen, Path: bin, Err: err}
	}
	defer binFile.Close()

	m, err := mapFile(binFile)
	if err != nil {
		return
	}
	e := &ELF{
		bin:     bin,
		mapping: m,
	}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	if e.header, err = parseHeader(m.data); err != nil {
		return nil, &IOError{Op: OpNotELF, Path: bin, Err: err}
	}
	if e.sections, err = e.parseSections(); err != nil {
		return nil, errors.WithMessage(err, bin)
	}
	return e, nil
}

func (e *ELF) Close() error {
	if e.mapping == nil {
		return nil
	}
	err := e.mapping.unmap()
	e.mapping = nil
	return err
}

func (e *ELF) Path() string {
	return e.bin
}

func (e *ELF) Header() Header {
	return e.header
}

// Sections returns the section header table in table order.
func (e *ELF) Sections() []SectionHeader {
	sections := make([]SectionHeader, len(e.sections))
	copy(sections, e.sections)
	return sections
}

// Section looks up a section by exact name. When several sections share the
// name, the last one in table order is returned.
func (e *ELF) Section(name string) (_ *SectionHeader, err error) {
	if name == "" {
		return nil, errors.WithMessage(SectionNotFoundError, "empty section name")
	}
	idx := -1
	for i := range e.sections {
		if e.sections[i].Name == name {
			idx = i
		}
	}
	if idx < 0 {
		return nil, errors.WithMessage(SectionNotFoundError, name)
	}
	sh := e.sections[idx]
	return &sh, nil
}

// ReadSection copies the contents of sh out of the mapping.
func (e *ELF) ReadSection(sh *SectionHeader) (_ *Section, err error) {
	if e.mapping == nil {
		return nil, errors.WithMessage(ClosedError, e.bin)
	}
	section := &Section{SectionHeader: *sh}
	if sh.Type == elf.SHT_NOBITS {
		section.Data = []byte{}
		return section, nil
	}
	body, ok := e.mapping.slice(sh.Offset, sh.Size)
	if !ok {
		return nil, errors.Wrapf(MalformedInputError, "section %q [%#x, +%#x) exceeds file size %#x", sh.Name, sh.Offset, sh.Size, e.mapping.Len())
	}
	section.Data = make([]byte, len(body))
	copy(section.Data, body)
	return section, nil
}

func (e *ELF) SectionData(name string) (_ *Section, err error) {
	sh, err := e.Section(name)
	if err != nil {
		return
	}
	return e.ReadSection(sh)
}

func (e *ELF) SectionBytes(name string) (bytes []byte, err error) {
	section, err := e.SectionData(name)
	if err != nil {
		return
	}
	return section.Data, nil
}

func (e *ELF) parseSections() (sections []SectionHeader, err error) {
	hdr := e.header
	if hdr.Shoff == 0 {
		return nil, nil
	}
	if hdr.Shentsize < shdrSize {
		return nil, errors.Wrapf(MalformedInputError, "section header entry size %d, want at least %d", hdr.Shentsize, shdrSize)
	}

	count := uint64(hdr.Shnum)
	strndx := uint64(hdr.Shstrndx)
	if count == 0 || hdr.Shstrndx == uint16(elf.SHN_XINDEX) {
		// Extended numbering keeps the real values in section 0.
		first, err := e.rawSection(0)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			count = first.Size
		}
		if hdr.Shstrndx == uint16(elf.SHN_XINDEX) {
			strndx = uint64(first.Link)
		}
	}
	if count == 0 {
		return nil, nil
	}
	if count > e.mapping.Len()/uint64(hdr.Shentsize) {
		return nil, errors.Wrapf(MalformedInputError, "%d section headers at %#x exceed file size %#x", count, hdr.Shoff, e.mapping.Len())
	}

	raws := make([]elf.Section64, count)
	for i := range raws {
		if raws[i], err = e.rawSection(uint64(i)); err != nil {
			return
		}
	}

	if strndx >= count {
		return nil, errors.Wrapf(MalformedInputError, "string table index %d out of range [0, %d)", strndx, count)
	}
	var strtab []byte
	if shstr := raws[strndx]; elf.SectionType(shstr.Type) != elf.SHT_NOBITS {
		var ok bool
		if strtab, ok = e.mapping.slice(shstr.Off, shstr.Size); !ok {
			return nil, errors.Wrapf(MalformedInputError, "string table [%#x, +%#x) exceeds file size %#x", shstr.Off, shstr.Size, e.mapping.Len())
		}
	}

	sections = make([]SectionHeader, count)
	for i, raw := range raws {
		sections[i] = SectionHeader{
			Index:      i,
			NameOffset: raw.Name,
			Type:       elf.SectionType(raw.Type),
			Flags:      elf.SectionFlag(raw.Flags),
			Addr:       raw.Addr,
			Offset:     raw.Off,
			Size:       raw.Size,
			Link:       raw.Link,
			Entsize:    raw.Entsize,
		}
		// Without a string table no section has a name.
		if len(strtab) == 0 {
			continue
		}
		if sections[i].Name, err = cstring(strtab, raw.Name); err != nil {
			return nil, errors.WithMessagef(err, "section %d", i)
		}
	}
	return sections, nil
}

func (e *ELF) rawSection(i uint64) (raw elf.Section64, err error) {
	off := e.header.Shoff + i*uint64(e.header.Shentsize)
	if off < e.header.Shoff {
		return raw, errors.Wrapf(MalformedInputError, "section header %d offset overflows", i)
	}
	b, ok := e.mapping.slice(off, shdrSize)
	if !ok {
		return raw, errors.Wrapf(MalformedInputError, "section header %d at %#x exceeds file size %#x", i, off, e.mapping.Len())
	}
	err = binary.Read(bytes.NewReader(b), e.header.ByteOrder, &raw)
	return
}

// cstring decodes the NUL-terminated string starting at off in strtab.
func cstring(strtab []byte, off uint32) (string, error) {
	if uint64(off) >= uint64(len(strtab)) {
		return "", errors.Wrapf(MalformedInputError, "name offset %#x outside string table of %#x bytes", off, len(strtab))
	}
	n := bytes.IndexByte(strtab[off:], 0)
	if n < 0 {
		return "", errors.Wrapf(MalformedInputError, "name at %#x is not NUL-terminated", off)
	}
	return string(strtab[off : int(off)+n]), nil
}
