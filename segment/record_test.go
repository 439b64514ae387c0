package segment

import (
	"reflect"
	"testing"

	"github.com/pikahelper/docmill/linkscan"
)

func TestBuildRecords(t *testing.T) {
	chunks := []Chunk{
		{
			Index:   0,
			Content: "first chunk",
			Start:   0,
			End:     12,
			Images:  []string{"u1", "u1", "u2"},
			Links: []linkscan.Reference{
				{URL: "https://a.example.com", Position: 3, Type: linkscan.TypeExternal},
			},
		},
		{Index: 1, Content: "second chunk", Start: 8, End: 25},
	}

	recs := BuildRecords(chunks)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	r := recs[0]
	if r.ChunkIndex != 0 || r.Content != "first chunk" || r.Start != 0 || r.End != 12 {
		t.Errorf("lifted fields wrong: %+v", r)
	}
	if !reflect.DeepEqual(r.Images, []string{"u1", "u2"}) {
		t.Errorf("images = %v, want deduplicated [u1 u2]", r.Images)
	}
	if r.ImageCount != 2 {
		t.Errorf("image_count = %d, want 2 (counts deduplicated urls)", r.ImageCount)
	}
	if !reflect.DeepEqual(r.URLs, []string{"https://a.example.com"}) {
		t.Errorf("urls = %v", r.URLs)
	}
	if !r.HasImages || !r.HasLinks || r.LinkCount != 1 {
		t.Errorf("flags wrong: %+v", r)
	}
	if len(r.URLDetails) != 1 || r.URLDetails[0].Position != 3 {
		t.Errorf("url_details = %+v", r.URLDetails)
	}

	empty := recs[1]
	if empty.HasImages || empty.HasLinks || empty.ImageCount != 0 || empty.LinkCount != 0 {
		t.Errorf("chunk without attachments: %+v", empty)
	}
	if len(empty.URLs) != 0 {
		t.Errorf("urls should be empty, got %v", empty.URLs)
	}
}

func TestBuildRecordsEmpty(t *testing.T) {
	if recs := BuildRecords(nil); len(recs) != 0 {
		t.Errorf("got %d records, want 0", len(recs))
	}
}
