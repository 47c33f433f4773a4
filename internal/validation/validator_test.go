// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

type explainRequest struct {
	ItemType string   `json:"item_type" validate:"required,item_type"`
	ItemID   string   `json:"item_id" validate:"required,catalog_id"`
	Price    string   `json:"price_range" validate:"omitempty,price_level"`
	PageSize int      `json:"page_size" validate:"omitempty,min=1,max=50"`
	IDs      []string `json:"item_ids" validate:"max=3,dive,required"`
	Internal string   `json:"-" validate:"omitempty,max=2"`
}

func validRequest() explainRequest {
	return explainRequest{ItemType: "tour", ItemID: "t-1", Price: "$$", PageSize: 10, IDs: []string{"a"}}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*explainRequest)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"valid", func(*explainRequest) {}, "", "", ""},
		{"any price", func(r *explainRequest) { r.Price = "Any" }, "", "", ""},
		{"missing item type", func(r *explainRequest) { r.ItemType = "" }, "item_type", "required", "item_type is required"},
		{"bad item type", func(r *explainRequest) { r.ItemType = "hotel" }, "item_type", "item_type", "item_type must be tour or restaurant"},
		{"bad price", func(r *explainRequest) { r.Price = "$$$$$" }, "price_range", "price_level", "price_range must be one of $, $$, $$$, $$$$ or any"},
		{"page size too large", func(r *explainRequest) { r.PageSize = 51 }, "page_size", "max", "page_size must be at most 50"},
		{"id too long", func(r *explainRequest) { r.ItemID = strings.Repeat("x", 129) }, "item_id", "catalog_id", "item_id must be 1-128 printable characters without spaces"},
		{"id with space", func(r *explainRequest) { r.ItemID = "t 1" }, "item_id", "catalog_id", "item_id must be 1-128 printable characters without spaces"},
		{"too many ids", func(r *explainRequest) { r.IDs = []string{"a", "b", "c", "d"} }, "item_ids", "max", "item_ids must contain at most 3 items"},
		{"empty id element", func(r *explainRequest) { r.IDs = []string{""} }, "item_ids[0]", "required", "item_ids[0] is required"},
		{"json dash keeps go name", func(r *explainRequest) { r.Internal = "abc" }, "Internal", "max", "Internal must be at most 2 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			verr := ValidateStruct(&req)

			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(verr.Fields), verr)
			}
			fe := verr.Fields[0]
			if fe.Field != tt.wantField || fe.Tag != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", fe.Field, fe.Tag, tt.wantField, tt.wantTag)
			}
			if fe.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		req := validRequest()
		req.PageSize = 0
		req.ItemType = "hotel"
		apiErr := ValidateStruct(&req).ToAPIError()
		if apiErr.Code != ErrorCode {
			t.Errorf("code = %s", apiErr.Code)
		}
		if apiErr.Details["field"] != "item_type" || apiErr.Details["value"] != "hotel" {
			t.Errorf("details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		req := validRequest()
		req.ItemType = ""
		req.ItemID = ""
		verr := ValidateStruct(&req)
		apiErr := verr.ToAPIError()

		fields, ok := apiErr.Details["fields"].([]FieldError)
		if !ok || len(fields) != 2 {
			t.Fatalf("details = %v", apiErr.Details)
		}
		if apiErr.Message != "item_type is required; item_id is required" {
			t.Errorf("message = %q", apiErr.Message)
		}
		if verr.Error() != apiErr.Message {
			t.Errorf("Error() = %q, want %q", verr.Error(), apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Code != ErrorCode || apiErr.Message != "Validation failed" {
			t.Errorf("got %+v", apiErr)
		}
	})
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("expected error for non-struct input")
	}
	if verr.Fields[0].Field != "unknown" {
		t.Errorf("field = %s, want unknown", verr.Fields[0].Field)
	}
}

func TestValidCatalogID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"lisbon", true},
		{"lis-sintra-hike", true},
		{"r:42/b", true},
		{"", false},
		{"has space", false},
		{"tab\there", false},
		{"caf\u00e9", false},
		{strings.Repeat("x", 128), true},
		{strings.Repeat("x", 129), false},
	}
	for _, tt := range tests {
		if got := ValidCatalogID(tt.id); got != tt.want {
			t.Errorf("ValidCatalogID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
