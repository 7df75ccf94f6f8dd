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

// Package index holds embeddings in memory for exact nearest-neighbour search.
//
// Flat is a brute-force index over fixed-dimension vectors addressed by
// insertion position. It knows nothing about documents. Catalog pairs a Flat
// index with a side table mapping each position to the document id it was
// inserted for, and guards both with one read-write lock so the mapping can
// never drift from the index contents.
//
// Distances are squared Euclidean. Results are ordered by ascending distance;
// equal distances are ordered by ascending position.
package index
