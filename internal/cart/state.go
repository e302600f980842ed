package cart

import (
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

// State is the cart aggregate. Subtotal and Total are derived from Items after
// every transition and are never set directly; delivery is never included.
type State struct {
	Items        []Line          `json:"items"`
	Postcode     string          `json:"postcode"`
	DeliveryDate *types.Date     `json:"delivery_date,omitempty"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
}

// NewState returns the empty cart.
func NewState() State {
	return State{Items: []Line{}}
}

// Clone returns a copy whose Items slice can be modified independently.
func (s State) Clone() State {
	out := s
	out.Items = make([]Line, len(s.Items))
	copy(out.Items, s.Items)
	if s.DeliveryDate != nil {
		d := *s.DeliveryDate
		out.DeliveryDate = &d
	}
	return out
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// ItemCount sums line quantities.
func (s State) ItemCount() int {
	n := 0
	for _, line := range s.Items {
		n += line.Quantity
	}
	return n
}

// Line returns the line stored under key.
func (s State) Line(key string) (Line, bool) {
	if i := indexOfKey(s.Items, key); i >= 0 {
		return s.Items[i], true
	}
	return Line{}, false
}

func sumLines(items []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.Amount())
	}
	return total
}
