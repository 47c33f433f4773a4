// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/tripmatch/internal/catalog"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/models"
	"github.com/tomtom215/tripmatch/internal/prefstore"
)

// Common API errors
var (
	// ErrMissingDeviceID indicates the X-Device-ID header is required but absent.
	ErrMissingDeviceID = errors.New("missing device id")

	// ErrItemNotFound indicates the requested catalog item does not exist.
	ErrItemNotFound = errors.New("item not found")
)

// respondServiceError maps an error returned by the catalog, engine or
// preference store to a response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	respondAPIError(w, r, status, apiErr, err)
}

func classifyError(err error) (int, *models.APIError) {
	switch {
	case errors.Is(err, match.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:      models.ErrCodeCatalogUnavailable,
			Message:   "Catalog temporarily unavailable",
			Retryable: true,
		}
	case errors.Is(err, ErrMissingDeviceID):
		return http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeMissingDeviceID,
			Message: "The " + DeviceIDHeader + " header is required",
		}
	case errors.Is(err, prefstore.ErrInvalidKey):
		return http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "Invalid device or profile identifier",
		}
	case errors.Is(err, catalog.ErrInvalidItemType):
		return http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "item type must be tour or restaurant",
		}
	case errors.Is(err, catalog.ErrTooManyPromotions):
		return http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "Too many promoted items",
		}
	case errors.Is(err, catalog.ErrUnknownItem), errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound, &models.APIError{
			Code:    models.ErrCodeNotFound,
			Message: "Item not found in destination",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:      models.ErrCodeCatalogUnavailable,
			Message:   "Request timed out",
			Retryable: true,
		}
	default:
		return http.StatusInternalServerError, &models.APIError{
			Code:    models.ErrCodeInternal,
			Message: "Internal server error",
		}
	}
}

// asCatalogError marks infrastructure failures from the catalog as
// ErrCatalogUnavailable. Domain errors and cancellations pass through.
func asCatalogError(err error) error {
	switch {
	case err == nil,
		errors.Is(err, match.ErrCatalogUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, catalog.ErrUnknownItem),
		errors.Is(err, catalog.ErrTooManyPromotions),
		errors.Is(err, catalog.ErrInvalidItemType):
		return err
	default:
		return fmt.Errorf("%w: %w", match.ErrCatalogUnavailable, err)
	}
}
