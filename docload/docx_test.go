package docload

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document
    xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
    xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
    xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p><w:r><w:t>Giới thiệu trò chơi</w:t></w:r></w:p>
    <w:p>
      <w:r><w:t>Bước một</w:t><w:tab/><w:t>cài đặt</w:t></w:r>
      <w:r><w:drawing><a:blip r:embed="rId4"/></w:drawing></w:r>
    </w:p>
    <w:p><w:r><w:t>  </w:t></w:r></w:p>
    <w:p><w:r><w:t>Kết thúc</w:t><w:br/><w:t>hẹn gặp lại</w:t></w:r></w:p>
  </w:body>
</w:document>`

const testRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
  <Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
  <Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="https://cdn.example.com/x.png" TargetMode="External"/>
</Relationships>`

var testPNG = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}

// buildDocx assembles a minimal .docx archive in memory.
func buildDocx(t *testing.T, documentXML, relsXML string, media map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("word/document.xml", []byte(documentXML))
	if relsXML != "" {
		write("word/_rels/document.xml.rels", []byte(relsXML))
	}
	for name, data := range media {
		write(name, data)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestLoadDocx(t *testing.T) {
	data := buildDocx(t, testDocumentXML, testRelsXML, map[string][]byte{
		"word/media/image1.png": testPNG,
	})

	l := New(Config{})
	doc, err := l.Load(context.Background(), "huong_dan.docx", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if doc.Name != "huong_dan" {
		t.Errorf("name = %q, want huong_dan (extension stripped)", doc.Name)
	}
	if doc.Format != FormatDocx {
		t.Errorf("format = %q", doc.Format)
	}
	if len(doc.Paragraphs) != 4 {
		t.Fatalf("got %d paragraphs, want 4", len(doc.Paragraphs))
	}

	if doc.Paragraphs[0].Text != "Giới thiệu trò chơi" {
		t.Errorf("paragraph 0 = %q", doc.Paragraphs[0].Text)
	}
	if doc.Paragraphs[1].Text != "Bước một\tcài đặt" {
		t.Errorf("paragraph 1 = %q, tab not preserved", doc.Paragraphs[1].Text)
	}
	if doc.Paragraphs[2].Text != "" {
		t.Errorf("paragraph 2 = %q, want empty after trim", doc.Paragraphs[2].Text)
	}
	if doc.Paragraphs[3].Text != "Kết thúc\nhẹn gặp lại" {
		t.Errorf("paragraph 3 = %q, break not mapped to newline", doc.Paragraphs[3].Text)
	}

	if got := doc.Paragraphs[1].ImageRefs; len(got) != 1 || got[0] != "rId4" {
		t.Errorf("paragraph 1 image refs = %v, want [rId4]", got)
	}
	for _, i := range []int{0, 2, 3} {
		if len(doc.Paragraphs[i].ImageRefs) != 0 {
			t.Errorf("paragraph %d has image refs %v", i, doc.Paragraphs[i].ImageRefs)
		}
	}

	// Only the embedded image relationship lands in the asset table:
	// styles and external-mode image rels are ignored.
	if len(doc.Assets) != 1 {
		t.Fatalf("got %d assets, want 1: %v", len(doc.Assets), doc.Assets)
	}
	asset, ok := doc.Assets["rId4"]
	if !ok {
		t.Fatal("asset rId4 missing")
	}
	if !bytes.Equal(asset.Data, testPNG) {
		t.Error("asset payload differs from archive content")
	}
	if asset.Target != "media/image1.png" {
		t.Errorf("asset target = %q", asset.Target)
	}
}

func TestLoadDocxMissingMediaSkipped(t *testing.T) {
	// The rels table references media/image1.png but the part is absent:
	// the asset is skipped, the document still parses.
	data := buildDocx(t, testDocumentXML, testRelsXML, nil)

	l := New(Config{})
	doc, err := l.Load(context.Background(), "huong_dan.docx", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Assets) != 0 {
		t.Errorf("got %d assets, want 0", len(doc.Assets))
	}
	if len(doc.Paragraphs) != 4 {
		t.Errorf("got %d paragraphs, want 4", len(doc.Paragraphs))
	}
}

func TestLoadDocxWithoutRels(t *testing.T) {
	data := buildDocx(t, testDocumentXML, "", nil)
	l := New(Config{})
	doc, err := l.Load(context.Background(), "plain.docx", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Assets) != 0 {
		t.Errorf("got %d assets, want 0", len(doc.Assets))
	}
}

func TestLoadDocxMalformed(t *testing.T) {
	l := New(Config{})

	// Not a zip at all.
	_, err := l.Load(context.Background(), "broken.docx", []byte("this is not a zip archive"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Name != "broken" {
		t.Errorf("ParseError.Name = %q", perr.Name)
	}

	// A zip missing word/document.xml.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("unrelated.txt")
	w.Write([]byte("x"))
	zw.Close()
	if _, err := l.Load(context.Background(), "empty.docx", buf.Bytes()); !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError for missing document.xml", err)
	}
}

func TestFullText(t *testing.T) {
	data := buildDocx(t, testDocumentXML, "", nil)
	l := New(Config{})
	doc, err := l.Load(context.Background(), "x.docx", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := "Giới thiệu trò chơi\nBước một\tcài đặt\nKết thúc\nhẹn gặp lại"
	if got := doc.FullText(); got != want {
		t.Errorf("full text = %q, want %q (empty paragraphs dropped)", got, want)
	}
}
