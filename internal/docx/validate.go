// Package docx validates and renders Word (OOXML) templates with {placeholder} tags.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

const (
	// MinTemplateSize is the smallest plausible .docx. A ZIP holding only the three required part
	// names already needs about 350 bytes of headers, so anything below this floor is corrupt.
	MinTemplateSize = 512
	// MinDocumentBodySize guards against a truncated main document part.
	MinDocumentBodySize = 100

	PartContentTypes = "[Content_Types].xml"
	PartDocument     = "word/document.xml"
	PartRels         = "_rels/.rels"
)

var zipSignature = []byte{'P', 'K'}

var requiredParts = []string{PartContentTypes, PartDocument, PartRels}

// ValidationResult is the outcome of Validate. Error is empty when Valid is true.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// Validate checks that buf is a structurally sound .docx before it is rendered.
// It never panics and reports the first problem found.
func Validate(buf []byte) ValidationResult {
	if len(buf) < MinTemplateSize {
		return invalid("template is too small to be a .docx file (%d bytes, minimum %d)", len(buf), MinTemplateSize)
	}
	if !bytes.Equal(buf[:2], zipSignature) {
		return invalid("template is not a .docx file: missing ZIP signature (got 0x%02x 0x%02x)", buf[0], buf[1])
	}

	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return invalid("template .docx archive is damaged: %v", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range requiredParts {
		if _, ok := files[name]; !ok {
			return invalid("template is missing required part %s", name)
		}
	}

	body, err := readPart(files[PartDocument])
	if err != nil {
		return invalid("cannot read %s: %v", PartDocument, err)
	}
	if len(body) < MinDocumentBodySize {
		return invalid("%s is truncated (%d bytes, minimum %d)", PartDocument, len(body), MinDocumentBodySize)
	}
	if !bytes.Contains(body, []byte("<w:document")) || !bytes.Contains(body, []byte("</w:document>")) {
		return invalid("%s has no matching <w:document> root element", PartDocument)
	}

	return ValidationResult{Valid: true}
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
