// Package mock provides a test double for ai.Embedder.
//
// The mock allows tests to run without an embedding service and enables
// controlled, deterministic behaviour.
//
// # Usage in Tests
//
//	mockEmbedder := mock.NewMockEmbedder(4)
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3, 0.4}, nil
//	}
//
//	count := mockEmbedder.CallCount()
//
// Without injected funcs the mock returns deterministic unit vectors derived
// from a hash of the text.
package mock
