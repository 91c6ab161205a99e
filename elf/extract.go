package elf

// Extract maps the image at path just long enough to copy out the section
// called name. The mapping is released before Extract returns, whatever the
// outcome.
func Extract(path, name string) (_ *Section, err error) {
	e, err := New(path)
	if err != nil {
		return
	}
	defer e.Close()

	return e.SectionData(name)
}

// ExtractBytes is Extract without the section header.
func ExtractBytes(path, name string) (bytes []byte, err error) {
	section, err := Extract(path, name)
	if err != nil {
		return
	}
	return section.Data, nil
}

// List returns the decoded section header table of the image at path.
func List(path string) (_ []SectionHeader, err error) {
	e, err := New(path)
	if err != nil {
		return
	}
	defer e.Close()

	return e.Sections(), nil
}
