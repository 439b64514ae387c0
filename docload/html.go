package docload

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTML extracts block-level text from an HTML document: headings,
// paragraphs, list items and tables each become one Paragraph, in DOM
// order. Script, style and navigation boilerplate are skipped.
func parseHTML(name string, data []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}

	var texts []string
	collectBlocks(root, &texts)

	paragraphs := make([]Paragraph, len(texts))
	for i, t := range texts {
		paragraphs[i] = Paragraph{Index: i, Text: t}
	}

	return &Document{
		Name:       name,
		Format:     FormatHTML,
		Paragraphs: paragraphs,
		Assets:     map[string]Asset{},
	}, nil
}

func collectBlocks(n *html.Node, out *[]string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
			atom.P, atom.Li, atom.Table, atom.Blockquote, atom.Pre:
			if text := nodeText(n); text != "" {
				*out = append(*out, text)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
