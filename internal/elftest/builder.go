// Package elftest builds small synthetic ELF64 images for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

type Section struct {
	Name string
	// Type defaults to SHT_PROGBITS.
	Type elf.SectionType
	Data []byte
	// Size overrides sh_size when non-zero; Data is still written as is.
	Size uint64
}

// Image describes a relocatable ELF64 object. Sections are laid out after
// the file header, followed by .shstrtab and the section header table.
// Index 0 is always the null section.
type Image struct {
	ByteOrder binary.ByteOrder
	Machine   elf.Machine
	Sections  []Section

	// NoStrtab leaves .shstrtab out; e_shstrndx then points at section 0.
	NoStrtab bool

	// Patch may rewrite any header field after layout, before encoding.
	Patch func(hdr *elf.Header64, shdrs []elf.Section64)
}

func (img *Image) order() binary.ByteOrder {
	if img.ByteOrder == nil {
		return binary.LittleEndian
	}
	return img.ByteOrder
}

// Bytes lays out and encodes the image.
func (img *Image) Bytes() []byte {
	order := img.order()
	body := &bytes.Buffer{}
	strtab := []byte{0}
	shdrs := []elf.Section64{{}}

	const ehdrSize = 64
	for _, s := range img.Sections {
		typ := s.Type
		if typ == elf.SHT_NULL {
			typ = elf.SHT_PROGBITS
		}
		size := uint64(len(s.Data))
		if s.Size != 0 {
			size = s.Size
		}
		shdrs = append(shdrs, elf.Section64{
			Name:      uint32(len(strtab)),
			Type:      uint32(typ),
			Off:       uint64(ehdrSize + body.Len()),
			Size:      size,
			Addralign: 1,
		})
		strtab = append(strtab, s.Name...)
		strtab = append(strtab, 0)
		body.Write(s.Data)
	}

	shstrndx := 0
	if !img.NoStrtab {
		shstrndx = len(shdrs)
		name := uint32(len(strtab))
		strtab = append(strtab, ".shstrtab"...)
		strtab = append(strtab, 0)
		shdrs = append(shdrs, elf.Section64{
			Name:      name,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(ehdrSize + body.Len()),
			Size:      uint64(len(strtab)),
			Addralign: 1,
		})
		body.Write(strtab)
	}
	for body.Len()%8 != 0 {
		body.WriteByte(0)
	}

	machine := img.Machine
	if machine == elf.EM_NONE {
		machine = elf.EM_X86_64
	}
	hdr := elf.Header64{
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(ehdrSize + body.Len()),
		Ehsize:    ehdrSize,
		Shentsize: 64,
		Shnum:     uint16(len(shdrs)),
		Shstrndx:  uint16(shstrndx),
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if order == binary.BigEndian {
		hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	if img.Patch != nil {
		img.Patch(&hdr, shdrs)
	}

	out := &bytes.Buffer{}
	binary.Write(out, order, &hdr)
	out.Write(body.Bytes())
	binary.Write(out, order, shdrs)
	return out.Bytes()
}

// WriteFile writes b to a fresh file under t.TempDir and returns its path.
func WriteFile(t testing.TB, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.o")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write ELF image: %v", err)
	}
	return path
}

// Write encodes img into a temp file.
func (img *Image) Write(t testing.TB) string {
	t.Helper()
	return WriteFile(t, img.Bytes())
}
