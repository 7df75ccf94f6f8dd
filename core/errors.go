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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyUserID indicates a missing user id.
	ErrEmptyUserID = errors.New("user_id is required")

	// ErrInvalidTopK indicates a result count outside the accepted range.
	ErrInvalidTopK = errors.New("top_k out of range")

	// ErrInvalidThreshold indicates a threshold that is not a finite number.
	ErrInvalidThreshold = errors.New("threshold must be a finite number")

	// ErrMalformedRecord indicates encoded bytes that do not match the record layout.
	ErrMalformedRecord = errors.New("malformed record")
)
