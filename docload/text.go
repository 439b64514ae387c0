package docload

import "strings"

// parseText splits plain text into paragraphs on blank lines.
func parseText(name string, data []byte) *Document {
	return textDocument(name, FormatTXT, splitBlocks(string(data)))
}

// parseMarkdown is parseText with ATX heading markers stripped, so heading
// lines survive as ordinary paragraphs instead of leaking '#' into chunks.
func parseMarkdown(name string, data []byte) *Document {
	var blocks []string
	for _, block := range splitBlocks(string(data)) {
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") {
				heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
				heading = strings.TrimSpace(strings.TrimRight(heading, "#"))
				lines[i] = heading
			}
		}
		if joined := strings.TrimSpace(strings.Join(lines, "\n")); joined != "" {
			blocks = append(blocks, joined)
		}
	}
	return textDocument(name, FormatMD, blocks)
}

func textDocument(name string, format Format, blocks []string) *Document {
	paragraphs := make([]Paragraph, len(blocks))
	for i, b := range blocks {
		paragraphs[i] = Paragraph{Index: i, Text: b}
	}
	return &Document{
		Name:       name,
		Format:     format,
		Paragraphs: paragraphs,
		Assets:     map[string]Asset{},
	}
}

// splitBlocks splits text on blank lines, trimming each block and dropping
// empties. Line endings are normalised first.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var blocks []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}
