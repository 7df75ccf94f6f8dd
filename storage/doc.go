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

// Package storage provides the storage abstraction layer for docsearch.
//
// This package defines repository interfaces that decouple storage implementation
// from the search service. Two backends implement them:
//
//   - storage/badger: embedded BadgerDB, the default
//   - storage/sqlite: a SQLite file accessed through sqlx
//
// # Repositories
//
//   - DocumentRepository: create, fetch and list documents
//   - UserRepository: per-user call counters for rate limiting
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	docs, err := badger.NewDocumentRepository(backend)
//	users := badger.NewUserRepository(backend)
//
// Use in tests with in-memory storage:
//
//	docs, users, backend, err := badger.NewMemoryRepositories()
//
// # Serialization
//
// Records are encoded with the mus binary codecs defined in core. Decoding is
// strict: a value that does not match the expected layout is reported as
// ErrSerializationFailed and is never interpreted any other way.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
