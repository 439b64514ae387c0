package store

import "fmt"

// Document statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusEmpty      = "empty" // parsed fine but produced zero chunks
	StatusFailed     = "failed"
)

// Document is one processing attempt for one input file.
type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	ChunkCount  int    `json:"chunk_count"`
	LinkCount   int    `json:"link_count"`
	ImageCount  int    `json:"image_count"`
	CreatedAt   int64  `json:"created_at"`
	ProcessedAt *int64 `json:"processed_at,omitempty"`
}

// Chunk is one stored segment. MetadataJSON carries the serialized
// segment.Record minus the columns lifted out of it.
type Chunk struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	MetadataJSON string `json:"metadata_json"`
	CreatedAt    int64  `json:"created_at"`
}

// ChunkID builds the stable chunk identifier {doc}_chunk_{index}, so
// re-processing a document addresses the same ids.
func ChunkID(docName string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docName, index)
}
