package model

import (
	"time"
)

// DefaultSearchTopK is used when a search does not ask for a result count.
const DefaultSearchTopK = 5

// KnowledgeBaseChunk is one stored piece of a knowledge base entry.
type KnowledgeBaseChunk struct {
	ID         string    `json:"id,omitempty"`
	Content    string    `json:"content"`
	ChunkID    string    `json:"chunk_id"`
	ChunkIndex int       `json:"chunk_index,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// KnowledgeBaseEntry groups chunks under a unique title. Chunk order is kept
// as received.
type KnowledgeBaseEntry struct {
	Title     string               `json:"title"`
	Chunks    []KnowledgeBaseChunk `json:"chunks"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// KnowledgeBaseUpsert creates or replaces the entry with the given title.
type KnowledgeBaseUpsert struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	Content string `json:"content" validate:"required,notblank"`
}

// KnowledgeBaseUpsertResult reports how the content was chunked.
type KnowledgeBaseUpsertResult struct {
	Title       string               `json:"title"`
	ChunksCount int                  `json:"chunks_count"`
	Chunks      []KnowledgeBaseChunk `json:"chunks"`
}

// KnowledgeBaseSearchRequest is a similarity query. TopK of 0 means the default.
type KnowledgeBaseSearchRequest struct {
	Query string `json:"query" validate:"required,notblank"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=50"`
}

// Normalize fills in the default result count.
func (r *KnowledgeBaseSearchRequest) Normalize() {
	if r.TopK == 0 {
		r.TopK = DefaultSearchTopK
	}
}

// KnowledgeBaseSearchResult is one scored match.
type KnowledgeBaseSearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
}

// KnowledgeBaseSearchResponse is the backend's search answer.
type KnowledgeBaseSearchResponse struct {
	Results      []KnowledgeBaseSearchResult `json:"results"`
	Query        string                      `json:"query"`
	TotalResults int                         `json:"total_results"`
}
