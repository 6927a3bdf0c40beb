package views

import (
	"context"
	"fmt"

	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/fjod/gamingmarket/internal/search"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	TitleAllProducts   = "All Products"
	TitleSearchResults = "Search Results"
	TitleFeatured      = "Recommended for You"
)

type HomePage struct {
	Title         string           `json:"title"`
	Query         string           `json:"query,omitempty"`
	FeaturedTitle string           `json:"featured_title,omitempty"`
	Featured      []domain.Product `json:"featured"`
	Products      []domain.Product `json:"products"`
	Page          int              `json:"page"`
	TotalMatches  int              `json:"total_matches"`
	HasMore       bool             `json:"has_more"`
	Message       string           `json:"message,omitempty"`
}

// Home loads featured and all products concurrently. A featured failure only
// empties the recommended row; an all-products failure fails the page.
// page is 1-based and cumulative: page n shows the first n*PageSize matches.
func (s *Service) Home(ctx context.Context, query string, page int) (*HomePage, error) {
	if page < 1 {
		page = 1
	}

	var featured, all []domain.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.catalog.Featured(gctx)
		if err != nil {
			s.log.Warn("featured products unavailable", zap.Error(err))
			return nil
		}
		featured = products
		return nil
	})
	g.Go(func() error {
		products, err := s.catalog.All(gctx)
		if err != nil {
			return err
		}
		all = products
		return nil
	})
	err := g.Wait()
	if stale(ctx) {
		return nil, ErrStaleResult
	}
	if err != nil {
		return nil, fmt.Errorf("load home products: %w", err)
	}

	hp := &HomePage{
		Title:    TitleAllProducts,
		Featured: []domain.Product{},
		Page:     page,
	}

	matches := all
	if search.Active(query) {
		hp.Title = TitleSearchResults
		hp.Query = query
		matches = search.Filter(all, query, search.HomeFields...)
		if len(matches) == 0 {
			hp.Message = fmt.Sprintf("No results for %q", query)
		}
	} else if len(featured) > 0 {
		hp.FeaturedTitle = TitleFeatured
		hp.Featured = featured
	}

	// compare before multiplying so a huge page cannot overflow
	visible := len(matches)
	if page <= visible/s.pageSize {
		visible = page * s.pageSize
	}
	hp.Products = matches[:visible]
	if hp.Products == nil {
		hp.Products = []domain.Product{}
	}
	hp.TotalMatches = len(matches)
	hp.HasMore = visible < len(matches)
	return hp, nil
}
