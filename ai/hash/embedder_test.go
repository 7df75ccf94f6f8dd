package hash

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/docsearch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}

func TestEmbedder_Dimension(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		dim  int
		want int
	}{
		{"default", 0, ai.DefaultDimension},
		{"negative", -3, ai.DefaultDimension},
		{"custom", 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmbedder(tt.dim)
			assert.Equal(t, tt.want, e.Dimension())

			for _, text := range []string{"", "   ", "hello", "!!!", "a much longer piece of text with many words"} {
				vec, err := e.EmbedText(ctx, text)
				require.NoError(t, err)
				assert.Len(t, vec, tt.want, "text %q", text)
			}
		})
	}
}

func TestEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, _ := NewEmbedder(64).EmbedText(ctx, "the quick brown fox")
	b, _ := NewEmbedder(64).EmbedText(ctx, "the quick brown fox")
	assert.Equal(t, a, b)
}

func TestEmbedder_UnitLength(t *testing.T) {
	vec, err := NewEmbedder(0).EmbedText(context.Background(), "hello world")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEmbedder_SharedTokensAreCloser(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder(0)

	query, _ := e.EmbedText(ctx, "golang concurrency patterns")
	related, _ := e.EmbedText(ctx, "Golang: concurrency, PATTERNS!")
	near, _ := e.EmbedText(ctx, "concurrency patterns in golang")
	unrelated, _ := e.EmbedText(ctx, "baking sourdough bread at home")

	assert.InDelta(t, 0, l2(query, related), 1e-9)
	assert.Greater(t, l2(query, unrelated), l2(query, near))
	assert.Greater(t, l2(query, near), l2(query, related))
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder(32)

	texts := []string{"one", "two", "three"}
	vecs, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, text := range texts {
		single, _ := e.EmbedText(ctx, text)
		assert.Equal(t, single, vecs[i])
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.EmbedTexts(cancelled, texts)
	assert.ErrorIs(t, err, context.Canceled)
}
