package search

import (
	"strings"
	"sync"

	"github.com/fjod/gamingmarket/internal/domain"
)

// Field extracts one searchable value from a product.
type Field func(domain.Product) string

func Name(p domain.Product) string             { return p.Name }
func ShortDescription(p domain.Product) string { return p.ShortDescription }
func Brand(p domain.Product) string            { return p.Brand }
func Category(p domain.Product) string         { return p.Category }

var (
	// HomeFields are matched on the all-products page.
	HomeFields = []Field{Name, ShortDescription, Brand, Category}
	// CategoryFields are matched inside a category listing.
	CategoryFields = []Field{Name, ShortDescription}
)

// Active reports whether query filters anything.
func Active(query string) bool {
	return strings.TrimSpace(query) != ""
}

// Matches reports whether any of the fields contains query, ignoring case.
// A blank query matches everything.
func Matches(p domain.Product, query string, fields ...Field) bool {
	if !Active(query) {
		return true
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(p)), q) {
			return true
		}
	}
	return false
}

// Filter keeps the products that match query, preserving order. The input is
// returned as is for a blank query.
func Filter(products []domain.Product, query string, fields ...Field) []domain.Product {
	if !Active(query) {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, query, fields...) {
			out = append(out, p)
		}
	}
	return out
}

// Query is the shared search box value. One writer sets it, every catalog
// view reads it.
type Query struct {
	mu    sync.RWMutex
	value string
}

func (q *Query) Set(value string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.value = value
}

func (q *Query) Get() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value
}
