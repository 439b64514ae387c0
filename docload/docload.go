// Package docload parses raw document bytes into an ordered paragraph
// sequence plus the table of embedded image assets those paragraphs
// reference.
//
// Supported formats:
//   - .docx  — Microsoft Word (archive/zip → word/document.xml + relationships)
//   - .pdf   — PDF text extraction (pdfcpu, content stream decoding)
//   - .html  — HTML block elements (golang.org/x/net/html)
//   - .md    — Markdown (blank-line paragraph split, headings flattened)
//   - .txt   — Plain text (blank-line paragraph split)
//
// Only docx carries an asset table; the other formats produce text-only
// paragraphs that flow through the same segmentation pipeline.
package docload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Config configures a Loader.
type Config struct {
	// MaxFileSize is the largest document accepted, in bytes (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug/warning messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Loader parses raw document bytes. One Loader may be shared by concurrent
// workers; it holds no per-document state.
type Loader struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Loader with the given configuration.
func New(cfg Config) *Loader {
	cfg.defaults()
	return &Loader{cfg: cfg, logger: cfg.Logger}
}

// Detect returns the document format based on the file name extension.
func Detect(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return FormatDocx, nil
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", filepath.Ext(name))
	}
}

// Load parses data into a Document. The name supplies both the format
// (via extension) and the document identity used downstream for asset
// naming and chunk ids. Returns a *ParseError when the byte stream is not
// a well-formed container for its format.
func (l *Loader) Load(ctx context.Context, name string, data []byte) (*Document, error) {
	if int64(len(data)) > l.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", len(data), l.cfg.MaxFileSize)
	}

	format, err := Detect(name)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loading document", "name", name, "format", format, "bytes", len(data))

	base := DocName(name)
	switch format {
	case FormatDocx:
		doc, skipped, err := parseDocx(base, data)
		if err != nil {
			return nil, err
		}
		for _, target := range skipped {
			l.logger.Warn("embedded asset unreadable, skipped", "doc", base, "target", target)
		}
		return doc, nil
	case FormatPDF:
		return parsePDF(base, data)
	case FormatHTML:
		return parseHTML(base, data)
	case FormatMD:
		return parseMarkdown(base, data), nil
	case FormatTXT:
		return parseText(base, data), nil
	default:
		return nil, fmt.Errorf("no parser for format: %s", format)
	}
}

// DocName strips directory and extension from a file name, yielding the
// document identity used in asset names and chunk ids.
func DocName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
