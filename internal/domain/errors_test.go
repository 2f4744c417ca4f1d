package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("difficulty_rating", "required")

	if got := err.Error(); got != "validation: difficulty_rating: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "flashcard_id", Message: "required"},
		{Field: "difficulty_rating", Message: "must be again, hard, good, or easy"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestValidationError_Collector(t *testing.T) {
	t.Parallel()

	var empty ValidationError
	if err := empty.Err(); err != nil {
		t.Fatalf("empty collector Err() = %v, want nil", err)
	}

	var v ValidationError
	v.Add("flashcard_id", "required").Add("submitted_at", "is in the future")

	err := v.Err()
	var got *ValidationError
	if !errors.As(err, &got) {
		t.Fatalf("Err() = %T, want *ValidationError", err)
	}
	if len(got.Errors) != 2 || got.Errors[1].Field != "submitted_at" {
		t.Fatalf("unexpected fields: %+v", got.Errors)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrConflict, ErrTransient,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", fmt.Errorf("save: %w", ErrTransient), true},
		{"conflict", fmt.Errorf("card_review x: %w", ErrConflict), true},
		{"validation", NewValidationError("difficulty_rating", "invalid"), false},
		{"not found", fmt.Errorf("flashcard: %w", ErrNotFound), false},
		{"unauthorized", ErrUnauthorized, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
