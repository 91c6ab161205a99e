package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	ehdrSize = 64 // sizeof(Elf64_Ehdr)
	shdrSize = 64 // sizeof(Elf64_Shdr)
)

// Header holds the ELF64 file header fields needed to walk the section
// header table.
type Header struct {
	Class     elf.Class
	Data      elf.Data
	ByteOrder binary.ByteOrder
	Type      elf.Type
	Machine   elf.Machine
	Shoff     uint64
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

func parseHeader(b []byte) (hdr Header, err error) {
	if len(b) < ehdrSize {
		return hdr, errors.Wrapf(NotELFError, "file is %d bytes, header needs %d", len(b), ehdrSize)
	}
	if !bytes.Equal(b[:elf.EI_CLASS], []byte(elf.ELFMAG)) {
		return hdr, errors.Wrapf(NotELFError, "bad magic %q", b[:elf.EI_CLASS])
	}

	hdr.Class = elf.Class(b[elf.EI_CLASS])
	if hdr.Class != elf.ELFCLASS64 {
		return hdr, errors.Wrapf(NotELFError, "unsupported class %s", hdr.Class)
	}
	hdr.Data = elf.Data(b[elf.EI_DATA])
	switch hdr.Data {
	case elf.ELFDATA2LSB:
		hdr.ByteOrder = binary.LittleEndian
	case elf.ELFDATA2MSB:
		hdr.ByteOrder = binary.BigEndian
	default:
		return hdr, errors.Wrapf(NotELFError, "unsupported data encoding %s", hdr.Data)
	}

	var raw elf.Header64
	if err = binary.Read(bytes.NewReader(b[:ehdrSize]), hdr.ByteOrder, &raw); err != nil {
		return hdr, errors.Wrap(NotELFError, err.Error())
	}
	hdr.Type = elf.Type(raw.Type)
	hdr.Machine = elf.Machine(raw.Machine)
	hdr.Shoff = raw.Shoff
	hdr.Shentsize = raw.Shentsize
	hdr.Shnum = raw.Shnum
	hdr.Shstrndx = raw.Shstrndx
	return hdr, nil
}
