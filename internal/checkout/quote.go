package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

// Quote is a cart priced for checkout. The cart total never includes delivery;
// Total here does.
type Quote struct {
	Items        []QuoteLine     `json:"items"`
	ItemCount    int             `json:"item_count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Total        decimal.Decimal `json:"total"`
	Postcode     string          `json:"postcode"`
	DeliveryDate *types.Date     `json:"delivery_date,omitempty"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
}

// QuoteLine is a cart line with its line amount.
type QuoteLine struct {
	cart.Line
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// BuildQuote layers the delivery fee onto state.
func BuildQuote(state cart.State, rules pricing.FeeRules) Quote {
	lines := make([]QuoteLine, 0, len(state.Items))
	for _, line := range state.Items {
		lines = append(lines, QuoteLine{
			Line:   line,
			Key:    line.Key(),
			Amount: line.Amount(),
		})
	}

	fee := decimal.Zero
	if !state.IsEmpty() {
		fee = pricing.DeliveryFee(state.Subtotal, state.Postcode, rules)
	}

	return Quote{
		Items:        lines,
		ItemCount:    state.ItemCount(),
		Subtotal:     state.Subtotal,
		DeliveryFee:  fee,
		Total:        state.Subtotal.Add(fee),
		Postcode:     state.Postcode,
		DeliveryDate: state.DeliveryDate,
		DeliveryTime: state.DeliveryTime,
	}
}
