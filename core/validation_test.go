package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "valid document",
			doc:     &Document{Content: "hello world"},
			wantErr: nil,
		},
		{
			name:    "valid document with ID 0",
			doc:     &Document{ID: 0, Content: "x"},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "empty content",
			doc:     &Document{Content: ""},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "whitespace content",
			doc:     &Document{Content: " \t\n"},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error should wrap ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	if err := ValidateUserID("alice"); err != nil {
		t.Errorf("ValidateUserID(alice) unexpected error = %v", err)
	}
	for _, id := range []string{"", " ", "\t"} {
		if err := ValidateUserID(id); !errors.Is(err, ErrEmptyUserID) {
			t.Errorf("ValidateUserID(%q) error = %v, want ErrEmptyUserID", id, err)
		}
	}
}

func TestValidateTopK(t *testing.T) {
	tests := []struct {
		topK    int
		wantErr bool
	}{
		{-1, true},
		{0, true},
		{1, false},
		{5, false},
		{MaxTopK, false},
		{MaxTopK + 1, true},
	}

	for _, tt := range tests {
		err := ValidateTopK(tt.topK)
		if tt.wantErr && !errors.Is(err, ErrInvalidTopK) {
			t.Errorf("ValidateTopK(%d) error = %v, want ErrInvalidTopK", tt.topK, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ValidateTopK(%d) unexpected error = %v", tt.topK, err)
		}
	}
}

func TestValidateThreshold(t *testing.T) {
	for _, v := range []float64{0, 0.8, -3, 1e9} {
		if err := ValidateThreshold(v); err != nil {
			t.Errorf("ValidateThreshold(%v) unexpected error = %v", v, err)
		}
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := ValidateThreshold(v); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("ValidateThreshold(%v) error = %v, want ErrInvalidThreshold", v, err)
		}
	}
}
