// Package views builds the read-only storefront pages from catalog data and
// the session's search query.
package views

import (
	"context"
	"errors"

	"github.com/fjod/gamingmarket/internal/domain"
	"go.uber.org/zap"
)

// PageSize is how many products one "show more" step reveals on the home page.
const PageSize = 30

// ErrStaleResult is returned when the request that asked for a page went away
// before its data arrived. The result must not be rendered.
var ErrStaleResult = errors.New("stale view result")

// Catalog is the subset of the catalog client the pages read from.
type Catalog interface {
	All(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	ByCategory(ctx context.Context, category, sub string) ([]domain.Product, error)
	ByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	catalog  Catalog
	pageSize int
	log      *zap.Logger
}

func NewService(catalog Catalog, log *zap.Logger) *Service {
	return &Service{
		catalog:  catalog,
		pageSize: PageSize,
		log:      log,
	}
}

// stale reports whether ctx ended while a fetch was in flight.
func stale(ctx context.Context) bool {
	return ctx.Err() != nil
}
