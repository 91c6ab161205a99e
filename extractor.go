package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/elastic/go-sysinfo"
	"github.com/jschwinger233/elfsection/elf"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const procSelfExe = "/proc/self/exe"

// SelfExecutable returns the path of the running executable image.
func SelfExecutable() string {
	proc, err := sysinfo.Self()
	if err != nil {
		log.Debugf("sysinfo: %v, falling back to %s", err, procSelfExe)
		return procSelfExe
	}
	info, err := proc.Info()
	if err != nil || info.Exe == "" {
		log.Debugf("sysinfo: no executable path (%v), falling back to %s", err, procSelfExe)
		return procSelfExe
	}
	return info.Exe
}

type Extractor struct {
	bin     string
	section string
	output  string
	raw     bool

	stdout io.Writer
}

func NewExtractor(bin, section, output string, raw bool) *Extractor {
	return &Extractor{
		bin:     bin,
		section: section,
		output:  output,
		raw:     raw,
		stdout:  os.Stdout,
	}
}

func (x *Extractor) List() (err error) {
	sections, err := elf.List(x.bin)
	if err != nil {
		return
	}
	log.Debugf("%s: %d section headers", x.bin, len(sections))

	table := tablewriter.NewWriter(x.stdout)
	table.SetHeader([]string{"Nr", "Name", "Type", "Offset", "Size", "NameOff"})
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	for _, sh := range sections {
		table.Append([]string{
			fmt.Sprintf("%d", sh.Index),
			sh.Name,
			sh.Type.String(),
			fmt.Sprintf("%#x", sh.Offset),
			fmt.Sprintf("%#x", sh.Size),
			fmt.Sprintf("%d", sh.NameOffset),
		})
	}
	table.Render()
	return
}

func (x *Extractor) Extract() (err error) {
	section, err := elf.Extract(x.bin, x.section)
	if err != nil {
		if elf.IsNotFound(err) {
			return errors.WithMessagef(err, "unable to locate section %s in %s", x.section, x.bin)
		}
		return
	}
	log.Infof("located section %s: index %d, %d bytes at %#x", section.Name, section.Index, len(section.Data), section.Offset)

	if x.output != "" {
		if err = os.WriteFile(x.output, section.Data, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", x.output)
		}
		log.Infof("wrote %s", x.output)
		return
	}
	if x.raw {
		_, err = x.stdout.Write(section.Data)
		return
	}
	dumper := hex.Dumper(x.stdout)
	if _, err = dumper.Write(section.Data); err != nil {
		return
	}
	return dumper.Close()
}
