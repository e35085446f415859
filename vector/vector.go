package vector

import (
	"context"
	"math"
)

// Metadata carries the provenance attached to every indexed passage or link.
// For the rules index SourcePath is a document path; for the live-source index
// it is the reference URL and Text holds the link description.
type Metadata struct {
	SourcePath    string `json:"document_path"`
	Authority     string `json:"authority,omitempty"`
	RuleType      string `json:"rule_type,omitempty"`
	Priority      int    `json:"priority,omitempty"`
	EffectiveYear int    `json:"effective_year,omitempty"`
	Page          int    `json:"page_number,omitempty"`
	Section       int    `json:"section_index,omitempty"`
	Text          string `json:"text"`
}

// Record is one stored embedding with its metadata.
type Record struct {
	ID     string    `json:"chunk_id"`
	Vector []float32 `json:"vector"`
	Meta   Metadata  `json:"meta"`
}

// Match is a single similarity-search hit. Score is in [-1, 1], higher is closer.
type Match struct {
	ID    string
	Score float32
	Meta  Metadata
}

// Store defines the interface for vector storage and similarity search.
// Implementations are loaded once at startup and treated as read-only afterwards.
type Store interface {
	// Add inserts a record into the store.
	Add(ctx context.Context, rec *Record) error

	// Search finds the topK records closest to the query vector,
	// ordered by similarity descending.
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}

// Embedder defines the interface for creating embeddings from text.
type Embedder interface {
	// Embed converts text to a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts to embeddings.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the number of embedding dimensions.
	Dimension() int
}

// CosineSimilarityOperator returns the PostgreSQL operator used for
// cosine distance ordering with pgvector.
func CosineSimilarityOperator() string {
	return "<=>"
}

// CosineSimilarity calculates the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dotProduct / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-8))
}

// Normalize scales the vector to unit length (L2 norm).
func Normalize(vec []float32) []float32 {
	if len(vec) == 0 {
		return vec
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
