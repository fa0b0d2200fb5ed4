package domain

import "time"

// ScoredChunk is a search candidate with its cosine score and the owning
// document's metadata carried along for source attribution.
type ScoredChunk struct {
	Chunk      Chunk
	DocumentID string
	Filename   string
	Score      float64
}

// Source is one cited document slice in an answer.
type Source struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// QueryRecord is one question/answer/provenance tuple. Append-only.
type QueryRecord struct {
	ID          string
	RequesterID string
	Question    string
	Answer      string
	// Sources holds the distinct document IDs contributing to the ranked
	// chunks, in first-seen rank order.
	Sources   []string
	CreatedAt time.Time
}
