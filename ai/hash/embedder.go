// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hash provides a deterministic, dependency-free embedder.
//
// Each lowercased token seeds a pseudo-random dense vector; the text's
// embedding is the L2-normalised sum of its token vectors. Texts sharing
// tokens therefore land closer together than unrelated texts, and identical
// texts always produce identical vectors.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/poiesic/docsearch/ai"
)

// Embedder implements ai.Embedder without any external service.
type Embedder struct {
	dim int
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder producing vectors of the given dimension.
// A non-positive dimension selects ai.DefaultDimension.
func NewEmbedder(dim int) *Embedder {
	if dim < 1 {
		dim = ai.DefaultDimension
	}
	return &Embedder{dim: dim}
}

// Dimension reports the vector length.
func (e *Embedder) Dimension() int {
	return e.dim
}

// EmbedText embeds a single text. It never fails.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts embeds texts in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float32 {
	acc := make([]float64, e.dim)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		// Texts without word characters still get a stable vector.
		tokens = []string{text}
	}
	for _, tok := range tokens {
		addTokenVector(acc, tok)
	}

	var sumSquares float64
	for _, v := range acc {
		sumSquares += v * v
	}
	vec := make([]float32, e.dim)
	if sumSquares == 0 {
		return vec
	}
	norm := 1 / math.Sqrt(sumSquares)
	for i, v := range acc {
		vec[i] = float32(v * norm)
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// addTokenVector adds the token's pseudo-random vector, components in [-1, 1), to acc.
func addTokenVector(acc []float64, token string) {
	h := fnv.New64a()
	h.Write([]byte(token))
	seed := h.Sum64()
	for i := range acc {
		seed = seed*6364136223846793005 + 1442695040888963407
		acc[i] += float64(seed>>11)/float64(1<<52) - 1
	}
}
