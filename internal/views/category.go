package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/fjod/gamingmarket/internal/search"
	"go.uber.org/zap"
)

const (
	MsgCategoryUnavailable = "No products found in this category."
	MsgFilterEmpty         = "No products found for this filter."
)

var categoryTitles = map[string]string{
	"desktop":     "Desktop Computers",
	"laptop":      "Laptops",
	"peripherals": "Peripherals",
	"components":  "Computer Components",
}

// CategoryTitle falls back to the slug for categories without a display name.
func CategoryTitle(slug string) string {
	if title, ok := categoryTitles[slug]; ok {
		return title
	}
	return slug
}

type CategoryPage struct {
	Slug     string           `json:"slug"`
	Title    string           `json:"title"`
	Sub      string           `json:"sub,omitempty"`
	SubLabel string           `json:"sub_label,omitempty"`
	Query    string           `json:"query,omitempty"`
	Products []domain.Product `json:"products"`
	Message  string           `json:"message,omitempty"`
	// Error is set instead of Products when the backend could not be read.
	Error string `json:"error,omitempty"`
}

func (s *Service) Category(ctx context.Context, slug, sub, query string) (*CategoryPage, error) {
	sub = strings.ToLower(strings.TrimSpace(sub))
	cp := &CategoryPage{
		Slug:     slug,
		Title:    CategoryTitle(slug),
		Sub:      sub,
		SubLabel: strings.ToUpper(sub),
		Query:    query,
		Products: []domain.Product{},
	}

	products, err := s.catalog.ByCategory(ctx, slug, sub)
	if stale(ctx) {
		return nil, ErrStaleResult
	}
	if err != nil {
		s.log.Warn("category load failed",
			zap.String("category", slug),
			zap.String("sub", sub),
			zap.Error(err))
		cp.Error = MsgCategoryUnavailable
		return cp, nil
	}

	if filtered := search.Filter(products, query, search.CategoryFields...); len(filtered) > 0 {
		cp.Products = filtered
		return cp, nil
	}
	if search.Active(query) {
		cp.Message = fmt.Sprintf("No products matching %q found in this category.", query)
	} else {
		cp.Message = MsgFilterEmpty
	}
	return cp, nil
}
