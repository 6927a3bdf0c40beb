package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown when a product carries no usable image reference.
const PlaceholderImage = "https://via.placeholder.com/1200x600"

type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	ShortDescription string          `json:"shortDescription"`
	Details          string          `json:"details,omitempty"`
	TechnicalDetails string          `json:"technicalDetails,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Category         string          `json:"category"`
	SubCategory      string          `json:"subCategory,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	Stock            int             `json:"stock,omitempty"`
	Featured         bool            `json:"featured,omitempty"`
	Images           Images          `json:"imageUrl"`
}

// Normalize applies the ingestion rules every product passes through once it
// leaves the catalog backend: a non-empty image list and a non-negative price.
func (p *Product) Normalize() {
	if len(p.Images) == 0 {
		p.Images = Images{PlaceholderImage}
	}
	if p.Price.IsNegative() {
		p.Price = decimal.Zero
	}
}

// Gallery returns exactly n images, repeating the first one when the product
// has fewer.
func (p Product) Gallery(n int) []string {
	if n <= 0 {
		return nil
	}
	src := p.Images
	if len(src) == 0 {
		src = Images{PlaceholderImage}
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(src) {
			out = append(out, src[i])
			continue
		}
		out = append(out, src[0])
	}
	return out
}

// Specs splits the free-form technical details into display lines.
func (p Product) Specs() []string {
	text := strings.TrimSpace(p.TechnicalDetails)
	if text == "" {
		return nil
	}
	var specs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, bullet := range []string{"-", "•"} {
			if strings.HasPrefix(line, bullet) {
				line = strings.TrimLeft(line[len(bullet):], " \t")
				break
			}
		}
		specs = append(specs, line)
	}
	return specs
}

// Images is the canonical ordered list of image URLs. On the wire the backend
// sends either a comma-joined string or an array of strings.
type Images []string

func (im *Images) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*im = nil
		return nil
	}

	var parts []string
	switch {
	case len(data) > 0 && data[0] == '"':
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return fmt.Errorf("decode image string: %w", err)
		}
		parts = strings.Split(joined, ",")
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode image list: %w", err)
		}
		for _, s := range list {
			parts = append(parts, strings.Split(s, ",")...)
		}
	default:
		return fmt.Errorf("decode images: unexpected JSON %q", data)
	}

	out := make(Images, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*im = out
	return nil
}
