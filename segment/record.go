package segment

import "github.com/pikahelper/docmill/linkscan"

// Record is the persistable projection of a Chunk: deduplicated image
// references, the flat url list alongside full link details for audit,
// and derived flags and counts. Building records is a pure function.
type Record struct {
	ChunkIndex int                  `json:"chunk_index"`
	Content    string               `json:"content"`
	Start      int                  `json:"start_offset"`
	End        int                  `json:"end_offset"`
	Images     []string             `json:"images"`
	URLs       []string             `json:"urls"`
	URLDetails []linkscan.Reference `json:"url_details"`
	HasImages  bool                 `json:"has_images"`
	HasLinks   bool                 `json:"has_links"`
	ImageCount int                  `json:"image_count"`
	LinkCount  int                  `json:"link_count"`
}

// BuildRecords projects chunks into their persisted shape.
func BuildRecords(chunks []Chunk) []Record {
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		images := dedupe(c.Images)

		urls := make([]string, len(c.Links))
		for j, l := range c.Links {
			urls[j] = l.URL
		}

		records[i] = Record{
			ChunkIndex: c.Index,
			Content:    c.Content,
			Start:      c.Start,
			End:        c.End,
			Images:     images,
			URLs:       urls,
			URLDetails: c.Links,
			HasImages:  len(images) > 0,
			HasLinks:   len(c.Links) > 0,
			ImageCount: len(images),
			LinkCount:  len(c.Links),
		}
	}
	return records
}
