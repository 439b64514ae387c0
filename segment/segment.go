// Package segment converts an ordered paragraph sequence into overlapping,
// size-bounded chunks, each attributed with the images and links whose
// position falls inside its span of the original document text.
//
// The central invariant: link attribution is computed from offsets in the
// canonical (non-duplicated) document text. The accumulator re-inserts
// overlap text across chunk boundaries, so its length must never feed the
// running offset — trueOffset counts only original characters. Using
// chunk-local lengths instead would shift every offset after the first
// boundary and silently misattribute links.
//
// Lengths and offsets are runes: the corpus is Vietnamese and the size
// budget means characters, not bytes.
package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/linkscan"
)

// Options configures segmentation.
type Options struct {
	// MaxChunkSize is the rune budget per chunk (default: 1000). A soft
	// target: a single paragraph longer than this is still emitted whole,
	// never truncated.
	MaxChunkSize int `json:"max_chunk_size" yaml:"max_chunk_size"`

	// Overlap is the number of trailing runes carried from one chunk into
	// the start of the next (default: 200). Always kept below MaxChunkSize.
	Overlap int `json:"overlap" yaml:"overlap"`
}

func (o *Options) defaults() {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = 1000
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.MaxChunkSize {
		o.Overlap = o.MaxChunkSize / 4
	}
}

// Chunk is one bounded segment of document text.
type Chunk struct {
	Index   int    // 0-based, contiguous
	Content string // trimmed chunk text, may begin with overlap from the prior chunk
	Start   int    // inclusive rune offset in the canonical document text
	End     int    // exclusive rune offset
	Images  []string
	Links   []linkscan.Reference
}

// Split segments paragraphs in document order. images maps relationship id
// to external URL (unresolved ids are dropped); links must carry rune
// offsets into the canonical text and be ordered by position.
func Split(paragraphs []docload.Paragraph, images map[string]string, links []linkscan.Reference, opts Options) []Chunk {
	opts.defaults()

	var chunks []Chunk
	var buf strings.Builder
	bufLen := 0 // rune length of buf, overlap prefix included
	var bufImages []string

	// Original-text runes consumed so far. Advanced per folded paragraph,
	// never by overlap re-insertion.
	trueOffset := 0

	// Emitted content of the previous chunk; source of the overlap prefix.
	lastContent := ""

	finalize := func() {
		if bufLen == 0 {
			return
		}
		start := trueOffset - bufLen
		end := trueOffset
		content := strings.TrimSpace(buf.String())
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Content: content,
			Start:   start,
			End:     end,
			Images:  dedupe(bufImages),
			Links:   linksInRange(links, start, end),
		})
		lastContent = content
	}

	for _, para := range paragraphs {
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}
		textLen := utf8.RuneCountInString(text)

		var paraImages []string
		for _, relID := range para.ImageRefs {
			if url, ok := images[relID]; ok {
				paraImages = append(paraImages, url)
			}
		}

		if bufLen+textLen <= opts.MaxChunkSize {
			buf.WriteString(text)
			buf.WriteByte('\n')
			bufLen += textLen + 1
			bufImages = append(bufImages, paraImages...)
		} else {
			finalize()

			// Seed the next chunk with the tail of the one just emitted.
			// Overlap images are not re-attributed; only the triggering
			// paragraph's images carry over.
			overlap := tailRunes(lastContent, opts.Overlap)
			buf.Reset()
			buf.WriteString(overlap)
			buf.WriteString(text)
			buf.WriteByte('\n')
			bufLen = utf8.RuneCountInString(overlap) + textLen + 1
			bufImages = append([]string(nil), paraImages...)
		}

		// The +1 accounts for the newline separator in the canonical text.
		trueOffset += textLen + 1
	}

	finalize()
	return chunks
}

// tailRunes returns the last n runes of s, or all of s when shorter.
func tailRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// linksInRange selects references whose position lies in [start, end).
func linksInRange(links []linkscan.Reference, start, end int) []linkscan.Reference {
	var out []linkscan.Reference
	for _, l := range links {
		if l.Position >= start && l.Position < end {
			out = append(out, l)
		}
	}
	return out
}

// dedupe removes duplicate urls preserving first-seen order, so identical
// inputs always produce identical output.
func dedupe(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
