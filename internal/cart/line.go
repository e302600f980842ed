package cart

import "github.com/shopspring/decimal"

// Line is one purchasable entry in the cart. Two lines are the same line iff
// their ProductID and Weight match; see LineKey.
type Line struct {
	ProductID     string            `json:"id"`
	Name          string            `json:"name"`
	Image         string            `json:"image,omitempty"`
	UnitPrice     decimal.Decimal   `json:"price"`
	Weight        *decimal.Decimal  `json:"weight,omitempty"`
	WeightOptions []decimal.Decimal `json:"weight_options,omitempty"`
	Quantity      int               `json:"quantity"`
}

// Key returns the line's identity key.
func (l Line) Key() string {
	return LineKey(l.ProductID, l.Weight)
}

// Amount is UnitPrice × weight (1 when unweighted) × Quantity.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(weightFactor(l.Weight)).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey derives the identity of a cart line. An absent or zero weight keys by
// product alone; otherwise the key is "{productID}-{weight}".
func LineKey(productID string, weight *decimal.Decimal) string {
	if !hasWeight(weight) {
		return productID
	}
	return productID + "-" + weight.String()
}

func hasWeight(weight *decimal.Decimal) bool {
	return weight != nil && !weight.IsZero()
}

func weightFactor(weight *decimal.Decimal) decimal.Decimal {
	if !hasWeight(weight) {
		return decimal.NewFromInt(1)
	}
	return *weight
}
