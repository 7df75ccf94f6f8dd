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

// Package ratelimit decides whether a user's search call may proceed.
//
// Every call, admitted or not, increments the user's persisted call counter.
// Lifetime admits a user's first Limit calls ever and rejects the rest.
// Window admits Limit calls per sliding time window using a token bucket.
package ratelimit

import (
	"context"
	"fmt"
)

// DefaultLimit is the call threshold used when none is configured.
const DefaultLimit = 5

const (
	// PolicyLifetime caps the total number of calls a user may ever make.
	PolicyLifetime = "lifetime"
	// PolicyWindow caps calls per time window.
	PolicyWindow = "window"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Calls is the user's counter after this call was recorded.
	Calls int64
	Limit int64
}

// Limiter admits or rejects a user's call. Errors are infrastructure
// failures; a rejection is reported through Decision.Allowed.
type Limiter interface {
	Allow(ctx context.Context, userID string) (Decision, error)
}

func checkLimit(limit int64) error {
	if limit < 1 {
		return fmt.Errorf("ratelimit: limit must be positive, got %d", limit)
	}
	return nil
}
