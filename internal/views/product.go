package views

import (
	"context"
	"strings"

	"github.com/fjod/gamingmarket/internal/domain"
)

const (
	GallerySize = 3

	DefaultDescription = "This product is designed for high-performance use. Detailed information can be found in the technical specs tab."
	MsgNoSpecs         = "No technical specifications added yet."
	ShippingCopy       = "Your order will be shipped within 1–3 business days."
	WarrantyCopy       = "All products are covered by a 2-year warranty. 14-day return policy."
)

type ProductPage struct {
	Product     domain.Product `json:"product"`
	Gallery     []string       `json:"gallery"`
	Description string         `json:"description"`
	Specs       []string       `json:"specs"`
	SpecsNote   string         `json:"specs_note,omitempty"`
	Shipping    string         `json:"shipping"`
	Warranty    string         `json:"warranty"`
}

// Product returns catalog errors unchanged so callers can tell a missing
// product from an unreachable backend.
func (s *Service) Product(ctx context.Context, id int64) (*ProductPage, error) {
	p, err := s.catalog.ByID(ctx, id)
	if stale(ctx) {
		return nil, ErrStaleResult
	}
	if err != nil {
		return nil, err
	}

	pp := &ProductPage{
		Product:     *p,
		Gallery:     p.Gallery(GallerySize),
		Description: strings.TrimSpace(p.Details),
		Specs:       p.Specs(),
		Shipping:    ShippingCopy,
		Warranty:    WarrantyCopy,
	}
	if pp.Description == "" {
		pp.Description = DefaultDescription
	}
	if len(pp.Specs) == 0 {
		pp.Specs = []string{}
		pp.SpecsNote = MsgNoSpecs
	}
	return pp, nil
}
