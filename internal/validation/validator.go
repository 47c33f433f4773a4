// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator instance is shared by all handlers. Besides the built-in
// tags it understands the request vocabulary of the ranking API:
//
//	item_type    tour or restaurant
//	price_level  $, $$, $$$, $$$$ or any (case-insensitive)
//	catalog_id   1-128 printable ASCII characters without spaces
//
// Fields are reported by their json name:
//
//	type explainRequest struct {
//	    ItemType string `json:"item_type" validate:"required,item_type"`
//	    ItemID   string `json:"item_id" validate:"required,catalog_id"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // VALIDATION_ERROR with per-field details
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/tripmatch/internal/match"
)

// ErrorCode is the API error code for validation failures.
const ErrorCode = "VALIDATION_ERROR"

// maxCatalogIDLength bounds destination and item identifiers.
const maxCatalogIDLength = 128

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// RequestValidationError collects the field errors of one request.
type RequestValidationError struct {
	Fields []FieldError
}

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i := range ve.Fields {
		messages[i] = ve.Fields[i].Message
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the errors to the API error format. A single failure
// is flattened into field, tag and value details; several are listed under
// "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.Fields) {
	case 0:
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	case 1:
		fe := ve.Fields[0]
		return &APIError{
			Code:    ErrorCode,
			Message: fe.Message,
			Details: map[string]interface{}{
				"field": fe.Field,
				"tag":   fe.Tag,
				"value": fe.Value,
			},
		}
	default:
		return &APIError{
			Code:    ErrorCode,
			Message: ve.Error(),
			Details: map[string]interface{}{"fields": ve.Fields},
		}
	}
}

var priceLevels = map[string]struct{}{
	"$": {}, "$$": {}, "$$$": {}, "$$$$": {}, match.AnyValue: {},
}

// GetValidator returns the shared validator, registering the custom tags on
// first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// Registration only fails for empty tags or nil functions.
		_ = validate.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
			return match.ItemType(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("price_level", func(fl validator.FieldLevel) bool {
			_, ok := priceLevels[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
			return ok
		})
		_ = validate.RegisterValidation("catalog_id", func(fl validator.FieldLevel) bool {
			return validCatalogID(fl.Field().String())
		})
	})
	return validate
}

func validCatalogID(id string) bool {
	if id == "" || len(id) > maxCatalogIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// ValidCatalogID reports whether id is usable as a destination or item id.
func ValidCatalogID(id string) bool {
	return GetValidator().Var(id, "catalog_id") == nil
}

// ValidateStruct validates s, returning nil when every constraint holds.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

var messageTemplates = map[string]string{
	"required":    "%s is required",
	"item_type":   "%s must be tour or restaurant",
	"price_level": "%s must be one of $, $$, $$$, $$$$ or any",
	"catalog_id":  "%s must be 1-128 printable characters without spaces",
}

var paramTemplates = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}
	if tag != "min" && tag != "max" {
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}

	bound := "at least"
	if tag == "max" {
		bound = "at most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters", field, bound, param)
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("%s must contain %s %s items", field, bound, param)
	default:
		return fmt.Sprintf("%s must be %s %s", field, bound, param)
	}
}
