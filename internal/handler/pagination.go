package handler

import (
	"net/http"
	"strconv"

	"github.com/contactdir/contact-server-go/internal/config"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
)

type PaginationParams struct {
	Page int
	Size int
}

// ParsePagination reads zero-based ?page= and ?size=. Missing values take
// the defaults; malformed ones are rejected.
func ParsePagination(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{Page: 0, Size: config.DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperrors.InvalidInput("page", "must be an integer")
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperrors.InvalidInput("size", "must be an integer")
		}
		params.Size = size
	}

	return params, nil
}
