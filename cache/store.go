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

// Package cache stores computed search results keyed by a fingerprint of the
// inputs that produced them.
//
// Store is a plain byte cache with Redis, in-process LRU and no-op
// implementations. ResultCache layers the versioned hit-list codec on top of
// a Store and treats undecodable entries as misses. Entries are never
// invalidated when documents are added; a cached list may therefore omit
// documents indexed after it was computed.
package cache

import "context"

// Store is a byte-oriented key-value cache. Implementations must be safe for
// concurrent use; concurrent Sets to one key are last-writer-wins.
type Store interface {
	// Get returns the stored value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases resources held by the store.
	Close() error
}

// NopStore never stores anything. Every Get is a miss.
type NopStore struct{}

var _ Store = NopStore{}

// Get always returns ErrCacheMiss.
func (NopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

// Set discards value.
func (NopStore) Set(ctx context.Context, key string, value []byte) error {
	return nil
}

// Close is a no-op.
func (NopStore) Close() error {
	return nil
}
