package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every failure to get data from the catalog backend.
	ErrFetch = errors.New("catalog fetch failed")
	// ErrProductNotFound matches a 404 for a single product.
	ErrProductNotFound = errors.New("product not found")
)

// FetchError reports a network failure, a timeout, a non-2xx status or an
// undecodable body.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrFetch:
		return true
	case ErrProductNotFound:
		return e.Op == opByID && e.StatusCode == 404
	}
	return false
}
