package docload

import "fmt"

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
)

// Paragraph is one block of document text in reading order.
type Paragraph struct {
	Index     int      // 0-based position in the document
	Text      string   // trimmed text, possibly empty
	ImageRefs []string // relationship ids of images embedded in this paragraph
}

// Asset is one embedded binary payload from the document container.
type Asset struct {
	RelID  string // relationship id (e.g. "rId5")
	Target string // container-relative target (e.g. "media/image1.png")
	Data   []byte
}

// Document is the result of parsing one document. Immutable once loaded.
type Document struct {
	Name       string
	Format     Format
	Paragraphs []Paragraph
	Assets     map[string]Asset // relationship id → embedded image payload
}

// FullText returns the canonical document text: non-empty paragraph texts
// joined with single newlines. Link offsets are always measured against this
// string; chunk-local text duplicates overlap spans and must never be used
// for offset arithmetic.
func (d *Document) FullText() string {
	var sb []byte
	for _, p := range d.Paragraphs {
		if p.Text == "" {
			continue
		}
		if len(sb) > 0 {
			sb = append(sb, '\n')
		}
		sb = append(sb, p.Text...)
	}
	return string(sb)
}

// ParseError reports a byte stream that is not a well-formed document
// container. Fatal for that document only; the caller marks the document
// failed and moves on.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Name, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
