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

// Package search answers similarity queries over stored documents.
//
// Service composes the pieces of the query path: input validation, the
// per-user rate limiter, the result cache, the embedder, and the in-memory
// vector catalog whose side table maps index positions back to document ids.
// It also owns the two write paths into the catalog: AddDocument for single
// documents and Populate for the startup bulk load, which must finish before
// the service takes search traffic.
//
// A Monitor observes each stage; the metrics package provides a Prometheus
// implementation.
package search
