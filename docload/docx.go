package docload

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const imageRelSuffix = "/image"

// parseDocx parses a .docx container from memory: paragraphs with their
// embedded-image relationship ids from word/document.xml, and the image
// asset table from word/_rels/document.xml.rels plus the media parts.
// Media parts that cannot be read are skipped and reported in the second
// return value; a missing or malformed document.xml is fatal.
func parseDocx(name string, data []byte) (*Document, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, &ParseError{Name: name, Err: fmt.Errorf("open archive: %w", err)}
	}

	var docFile, relsFile *zip.File
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
		switch f.Name {
		case "word/document.xml":
			docFile = f
		case "word/_rels/document.xml.rels":
			relsFile = f
		}
	}
	if docFile == nil {
		return nil, nil, &ParseError{Name: name, Err: errors.New("word/document.xml not found in archive")}
	}

	paragraphs, err := parseDocumentXML(docFile)
	if err != nil {
		return nil, nil, &ParseError{Name: name, Err: err}
	}

	assets := make(map[string]Asset)
	var skipped []string
	if relsFile != nil {
		rels, err := parseRels(relsFile)
		if err != nil {
			return nil, nil, &ParseError{Name: name, Err: err}
		}
		for _, rel := range rels {
			if !strings.HasSuffix(rel.Type, imageRelSuffix) || rel.TargetMode == "External" {
				continue
			}
			// Targets are relative to word/; "../media/x.png" resolves
			// against the archive root.
			target := path.Clean(path.Join("word", rel.Target))
			part, ok := parts[target]
			if !ok {
				skipped = append(skipped, rel.Target)
				continue
			}
			payload, err := readZipFile(part)
			if err != nil {
				skipped = append(skipped, rel.Target)
				continue
			}
			assets[rel.ID] = Asset{RelID: rel.ID, Target: rel.Target, Data: payload}
		}
	}

	return &Document{
		Name:       name,
		Format:     FormatDocx,
		Paragraphs: paragraphs,
		Assets:     assets,
	}, skipped, nil
}

// parseDocumentXML walks word/document.xml, collecting one Paragraph per
// w:p element: text from w:t runs (tabs and breaks mapped to whitespace)
// and image relationship ids from a:blip r:embed attributes.
func parseDocumentXML(f *zip.File) ([]Paragraph, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var paragraphs []Paragraph
	var text strings.Builder
	var refs []string
	var inParagraph, inText bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				text.Reset()
				refs = nil
			case "t":
				if inParagraph {
					inText = true
				}
			case "tab":
				if inParagraph {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					text.WriteByte('\n')
				}
			case "blip":
				// DrawingML image reference: <a:blip r:embed="rId5"/>.
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "embed" {
							refs = append(refs, attr.Value)
						}
					}
				}
			case "imagedata":
				// Legacy VML image reference: <v:imagedata r:id="rId5"/>.
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "id" {
							refs = append(refs, attr.Value)
						}
					}
				}
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					paragraphs = append(paragraphs, Paragraph{
						Index:     len(paragraphs),
						Text:      strings.TrimSpace(text.String()),
						ImageRefs: refs,
					})
					refs = nil
				}
			}
		}
	}

	return paragraphs, nil
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

func parseRels(f *zip.File) ([]relationship, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open rels: %w", err)
	}
	defer rc.Close()

	var rels struct {
		Rels []relationship `xml:"Relationship"`
	}
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, fmt.Errorf("parse rels: %w", err)
	}
	return rels.Rels, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
