package embeddings

import "context"

// Provider turns situation texts into vectors for similarity search.
type Provider interface {
	// GenerateEmbedding creates a vector embedding for a single text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateBatchEmbeddings embeds several texts in one call, preserving order
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embeddings produced by this provider
	Dimensions() int

	// Name identifies the model; stored next to each vector so mismatched models are never compared
	Name() string
}
