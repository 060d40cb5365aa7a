package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ParsePage reads a 1-based page number, defaulting on absence or junk
func ParsePage(r *http.Request, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		return v
	}
	return def
}

// ParseLimit reads a page size, defaulting on absence or junk
func ParseLimit(r *http.Request, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		return v
	}
	return def
}

// ParseDate reads an ISO date or datetime query parameter. Plain dates are
// accepted alongside RFC3339 timestamps.
func ParseDate(r *http.Request, key string) (*time.Time, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, str); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s format. Use ISO dates (e.g., 2025-11-13 or 2025-11-13T10:00:00Z)", key)
}
