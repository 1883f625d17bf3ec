package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrDocumentParse is matched by every error returned when a document cannot be decoded.
var ErrDocumentParse = errors.New("document parse error")

// ParseError describes a document that could not be decoded.
type ParseError struct {
	Filename string
	Page     int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("parse %q page %d: %v", e.Filename, e.Page, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrDocumentParse, e.Err} }

// Extractor converts PDF résumés into plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page concatenated in page order.
func (e *Extractor) Extract(filename string, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &ParseError{Filename: filename, Err: errors.New("document is empty")}
	}

	// The decoder panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ParseError{Filename: filename, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Filename: filename, Err: err}
	}

	var builder strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ParseError{Filename: filename, Page: i, Err: err}
		}
		builder.WriteString(content)
	}

	return builder.String(), nil
}
