package domain

// Document represents a single text file loaded into the system.
// It is read once per index build and dropped after chunking.
type Document struct {
	Name    string
	Content string
}

// Chunk is the atomic retrievable unit: a bounded window of a document.
type Chunk struct {
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// SearchResult represents a matching chunk with a relevance score in [0, 1].
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Citation is the caller-facing record of one accepted search result.
type Citation struct {
	Rank    int     `json:"rank"`
	Source  string  `json:"source"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}
