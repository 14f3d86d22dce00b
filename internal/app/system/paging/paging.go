// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPage is the page returned when no "page" query parameter is given.
const DefaultPage = 1

// DefaultLimit is the number of rows per page when no "limit" query
// parameter is given. Keep this as an int because call sites cast to
// int64 for Mongo Find().SetLimit().
const DefaultLimit = 10

// ParsePage extracts the 1-based "page" query parameter. Absent means
// DefaultPage; a non-integer or non-positive value is an error.
func ParsePage(r *http.Request) (int, error) {
	s := query.Get(r, "page")
	if s == "" {
		return DefaultPage, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("page must be a positive integer, got %q", s)
	}
	return n, nil
}

// ParseLimit extracts the "limit" query parameter. Absent means
// DefaultLimit; a non-integer or non-positive value is an error.
func ParseLimit(r *http.Request) (int, error) {
	s := query.Get(r, "limit")
	if s == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", s)
	}
	return n, nil
}

// Skip returns the number of documents to skip for the given page.
func Skip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

// PageCount returns how many pages a collection of total rows spans at
// the given limit. Zero rows means zero pages.
func PageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
