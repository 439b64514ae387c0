package segment

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/linkscan"
)

func paras(texts ...string) []docload.Paragraph {
	ps := make([]docload.Paragraph, len(texts))
	for i, t := range texts {
		ps[i] = docload.Paragraph{Index: i, Text: t}
	}
	return ps
}

// Three 600-rune paragraphs with max 1000 and overlap 200 must produce
// exactly three chunks with ranges [0,601), [401,1202), [1002,1803),
// and each later chunk must begin with the literal 200-rune tail of the
// previous chunk's content.
func TestSplitOverlapScenario(t *testing.T) {
	a := strings.Repeat("A", 600)
	b := strings.Repeat("B", 600)
	c := strings.Repeat("C", 600)
	opts := Options{MaxChunkSize: 1000, Overlap: 200}

	chunks := Split(paras(a, b, c), nil, nil, opts)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	wantRanges := [][2]int{{0, 601}, {401, 1202}, {1002, 1803}}
	for i, want := range wantRanges {
		if chunks[i].Start != want[0] || chunks[i].End != want[1] {
			t.Errorf("chunk %d range = [%d,%d), want [%d,%d)",
				i, chunks[i].Start, chunks[i].End, want[0], want[1])
		}
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		tail := string(prev[len(prev)-200:])
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Errorf("chunk %d does not begin with the 200-rune tail of chunk %d", i, i-1)
		}
	}

	if chunks[0].Content != a {
		t.Errorf("chunk 0 content = %d runes, want the first paragraph", utf8.RuneCountInString(chunks[0].Content))
	}
}

// A single paragraph larger than the budget passes through whole.
func TestSplitOversizedParagraph(t *testing.T) {
	big := strings.Repeat("x", 5000)
	chunks := Split(paras(big), nil, nil, Options{MaxChunkSize: 1000, Overlap: 200})
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != big {
		t.Errorf("oversized paragraph was truncated: %d runes", utf8.RuneCountInString(chunks[0].Content))
	}
	if chunks[0].Start != 0 || chunks[0].End != 5001 {
		t.Errorf("range = [%d,%d), want [0,5001)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if chunks := Split(nil, nil, nil, Options{}); len(chunks) != 0 {
		t.Errorf("nil paragraphs: got %d chunks, want 0", len(chunks))
	}
	if chunks := Split(paras("", "   ", "\t\n"), nil, nil, Options{}); len(chunks) != 0 {
		t.Errorf("blank paragraphs: got %d chunks, want 0", len(chunks))
	}
}

func TestSplitSkipsBlankParagraphsWithoutAdvancingOffsets(t *testing.T) {
	a := strings.Repeat("A", 600)
	b := strings.Repeat("B", 600)
	// Blank paragraphs interleaved must not change any range.
	chunks := Split(paras(a, "", "   ", b), nil, nil, Options{MaxChunkSize: 1000, Overlap: 200})
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != 601 {
		t.Errorf("chunk 0 range = [%d,%d), want [0,601)", chunks[0].Start, chunks[0].End)
	}
	if chunks[1].Start != 401 || chunks[1].End != 1202 {
		t.Errorf("chunk 1 range = [%d,%d), want [401,1202)", chunks[1].Start, chunks[1].End)
	}
}

func TestSplitIndicesContiguous(t *testing.T) {
	var texts []string
	for range 20 {
		texts = append(texts, strings.Repeat("p", 300))
	}
	chunks := Split(paras(texts...), nil, nil, Options{MaxChunkSize: 1000, Overlap: 100})
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk at slot %d has index %d", i, c.Index)
		}
	}
}

// Every recorded link position must lie inside its chunk's range; a link in
// the overlap span is attributed to both chunks sharing it.
func TestSplitLinkAttribution(t *testing.T) {
	a := strings.Repeat("A", 600)
	b := strings.Repeat("B", 600)
	links := []linkscan.Reference{
		{URL: "https://one.example.com", Position: 100, Type: linkscan.TypeExternal},
		{URL: "https://two.example.com", Position: 450, Type: linkscan.TypeExternal}, // overlap span of [401,601)
		{URL: "https://three.example.com", Position: 700, Type: linkscan.TypeExternal},
	}
	chunks := Split(paras(a, b), nil, links, Options{MaxChunkSize: 1000, Overlap: 200})
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	urls := func(c Chunk) []string {
		var out []string
		for _, l := range c.Links {
			out = append(out, l.URL)
		}
		return out
	}
	want0 := []string{"https://one.example.com", "https://two.example.com"}
	want1 := []string{"https://two.example.com", "https://three.example.com"}
	if !reflect.DeepEqual(urls(chunks[0]), want0) {
		t.Errorf("chunk 0 links = %v, want %v", urls(chunks[0]), want0)
	}
	if !reflect.DeepEqual(urls(chunks[1]), want1) {
		t.Errorf("chunk 1 links = %v, want %v", urls(chunks[1]), want1)
	}

	for _, c := range chunks {
		for _, l := range c.Links {
			if l.Position < c.Start || l.Position >= c.End {
				t.Errorf("chunk %d: link %s at %d outside [%d,%d)", c.Index, l.URL, l.Position, c.Start, c.End)
			}
		}
	}
}

// Crossing a chunk boundary resets the image set to the triggering
// paragraph's images; overlap text never drags images along.
func TestSplitImageResetAtBoundary(t *testing.T) {
	a := strings.Repeat("A", 600)
	b := strings.Repeat("B", 600)
	ps := []docload.Paragraph{
		{Index: 0, Text: a, ImageRefs: []string{"rId1", "rId1", "rIdMissing"}},
		{Index: 1, Text: b, ImageRefs: []string{"rId2"}},
	}
	images := map[string]string{
		"rId1": "https://cdn.example.com/doc_aaa.png",
		"rId2": "https://cdn.example.com/doc_bbb.png",
	}
	chunks := Split(ps, images, nil, Options{MaxChunkSize: 1000, Overlap: 200})
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if !reflect.DeepEqual(chunks[0].Images, []string{"https://cdn.example.com/doc_aaa.png"}) {
		t.Errorf("chunk 0 images = %v: want rId1 once, duplicates collapsed, unresolved dropped", chunks[0].Images)
	}
	if !reflect.DeepEqual(chunks[1].Images, []string{"https://cdn.example.com/doc_bbb.png"}) {
		t.Errorf("chunk 1 images = %v: want only the triggering paragraph's image", chunks[1].Images)
	}
}

// Identical input must produce byte-identical output across runs.
func TestSplitIdempotent(t *testing.T) {
	ps := []docload.Paragraph{
		{Index: 0, Text: strings.Repeat("Một hai ba ", 60), ImageRefs: []string{"r1", "r2"}},
		{Index: 1, Text: strings.Repeat("bốn năm sáu ", 60), ImageRefs: []string{"r2"}},
		{Index: 2, Text: "Tải về tại https://pokemmo.com/downloads nhé"},
	}
	images := map[string]string{"r1": "u1", "r2": "u2"}
	links := []linkscan.Reference{{URL: "https://pokemmo.com/downloads", Position: 1330, Type: linkscan.TypeDownload}}
	opts := Options{MaxChunkSize: 500, Overlap: 100}

	first := Split(ps, images, links, opts)
	second := Split(ps, images, links, opts)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical input differ")
	}
}

func TestSplitSizeBound(t *testing.T) {
	var texts []string
	for i := range 30 {
		texts = append(texts, strings.Repeat(string(rune('a'+i%26)), 150+i*17%200))
	}
	opts := Options{MaxChunkSize: 800, Overlap: 150}
	for _, c := range Split(paras(texts...), nil, nil, opts) {
		n := utf8.RuneCountInString(c.Content)
		// Bound holds whenever no single paragraph exceeds the budget;
		// +1 allows for the separator trimmed at the end.
		if n > opts.MaxChunkSize+1 {
			t.Errorf("chunk %d has %d runes, budget %d", c.Index, n, opts.MaxChunkSize)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.defaults()
	if o.MaxChunkSize != 1000 || o.Overlap != 200 {
		t.Errorf("defaults = %+v, want 1000/200", o)
	}

	bad := Options{MaxChunkSize: 100, Overlap: 100}
	bad.defaults()
	if bad.Overlap != 25 {
		t.Errorf("overlap >= max: clamped to %d, want 25", bad.Overlap)
	}
}
