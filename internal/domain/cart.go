package domain

import "github.com/shopspring/decimal"

// LineItem is one product-quantity pairing. The JSON shape is the persisted
// cart format.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"qty"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of line items with at most one item per product id.
// Count and Total are always derived from Items.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Index returns the position of the line item for productID, or -1.
func (c Cart) Index(productID int64) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}
