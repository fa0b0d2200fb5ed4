package domain

// SheetMarker prefixes a sheet-boundary line in spreadsheet extractions.
// The parser emits it between sheets; the chunker switches to row-level
// segmentation when it sees it.
const SheetMarker = "=== Sheet: "

// Chunk is a bounded contiguous slice of a document's extracted text, the
// unit of retrieval. Indices for a document are contiguous 0..n-1 in original
// reading order. Chunk rows are written once by the pipeline and never mutated.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
}

// CandidateChunk pairs a chunk with its stored vector for similarity ranking.
// Only chunks that actually have an embedding become candidates.
type CandidateChunk struct {
	Chunk  Chunk
	Vector []float32
}

// Embedding is the fixed-dimension vector for exactly one chunk. A chunk
// without an embedding (mid-pipeline failure) is never a search candidate.
type Embedding struct {
	ID      string
	ChunkID string
	Vector  []float32
}
