package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// pathSlug returns the {slug} route parameter.
func pathSlug(r *http.Request) (string, error) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		return "", fmt.Errorf("%w: slug is required", errBadRequest)
	}
	return slug, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", errBadRequest, name)
	}
	return v, nil
}
