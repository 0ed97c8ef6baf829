// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

type feedRequest struct {
	Offset    int     `query:"offset" validate:"min=0,max=100000"`
	Limit     int     `query:"limit" validate:"min=1,max=50"`
	MinRating float64 `query:"min_rating" validate:"gte=0,lte=5"`
}

type interactionRequest struct {
	UserID string `json:"user_id" validate:"required,objectid"`
	DishID string `json:"dish_id" validate:"required,objectid"`
	Type   string `json:"type" validate:"required,oneof=view favorite like cook"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	const id = "65f000000000000000000001"

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{"valid feed", &feedRequest{Offset: 0, Limit: 6, MinRating: 4.5}, "", ""},
		{"limit too high", &feedRequest{Limit: 51}, "limit", "limit must be at most 50"},
		{"limit zero", &feedRequest{Limit: 0}, "limit", "limit must be at least 1"},
		{"negative offset", &feedRequest{Offset: -1, Limit: 1}, "offset", "offset must be at least 0"},
		{"rating too high", &feedRequest{Limit: 1, MinRating: 6}, "min_rating", "min_rating must be less than or equal to 5"},
		{"valid interaction", &interactionRequest{UserID: id, DishID: id, Type: "cook"}, "", ""},
		{"missing user", &interactionRequest{DishID: id, Type: "view"}, "user_id", "user_id is required"},
		{"bad dish id", &interactionRequest{UserID: id, DishID: "xyz", Type: "view"}, "dish_id", "dish_id must be a 24 character hex id"},
		{"bad type", &interactionRequest{UserID: id, DishID: id, Type: "share"}, "type", "type must be one of: view favorite like cook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&interactionRequest{})
	if err == nil {
		t.Fatal("expected errors for empty request")
	}
	if n := len(err.Errors()); n != 3 {
		t.Errorf("got %d errors, want 3", n)
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q", apiErr.Code)
	}
	for _, field := range []string{"user_id", "dish_id", "type"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("message %q does not mention %s", apiErr.Message, field)
		}
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty message = %q", empty.Message)
	}
}
