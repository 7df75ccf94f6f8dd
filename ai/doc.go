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

// Package ai provides the text embedding abstraction used by docsearch.
//
// The Embedder interface maps text to a fixed-dimension vector. Everything
// downstream (the vector index, the search service) depends only on this
// interface and on Dimension(), so embedding implementations can be swapped
// through configuration.
//
// # Implementation Packages
//
//   - ai/hash: deterministic feature-hashing embedder, the default
//   - ai/openai: OpenAI-compatible embedding APIs via langchaingo
//   - ai/mock: test double with call counting and injectable behaviour
//
// Public constructors for production embedders return the ai.Embedder
// interface. mock.NewMockEmbedder returns the concrete type so tests can
// inspect CallCount and inject behaviour.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithDimension(300))
//	embedder := hash.NewEmbedder(cfg.Dimension)
//	vec, err := embedder.EmbedText(ctx, "Hello world")
package ai
