// Package embedder defines the opaque text-embedding contract the
// ingestor drives before writing to the vector store, shaped after
// original_source/news_store/weaviate_writer_test.py's mock of
// SentenceTransformer.encode (a single text-in, vector-out call).
package embedder

import "context"

// Embedder turns text into a fixed-dimension embedding vector.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
