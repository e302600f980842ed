package cart

import (
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

// Reduce applies action to state and returns the next state. It never mutates
// state and never fails: unknown actions return the state unchanged. Totals are
// recomputed from the resulting items after every action.
func Reduce(state State, action Action) State {
	next := state.Clone()

	switch a := action.(type) {
	case AddItem:
		next.Items = addItem(next.Items, a)
	case RemoveItem:
		if i := indexOfKey(next.Items, LineKey(a.ID, a.Weight)); i >= 0 {
			next.Items = removeAt(next.Items, i)
		}
	case UpdateQuantity:
		if i := indexOfKey(next.Items, LineKey(a.ID, a.Weight)); i >= 0 {
			next.Items[i].Quantity = a.Quantity
		}
	case ChangeWeight:
		next.Items = changeWeight(next.Items, a)
	case SetDeliveryDate:
		next.DeliveryDate = copyDate(a.Date)
	case SetDeliveryTime:
		next.DeliveryTime = a.Time
	case SetPostcode:
		next.Postcode = a.Postcode
	case ClearCart:
		next = NewState()
	}

	next.Subtotal = sumLines(next.Items)
	next.Total = next.Subtotal
	return next
}

func addItem(items []Line, a AddItem) []Line {
	qty := 1
	if a.Quantity != nil {
		qty = *a.Quantity
	}

	if i := indexOfKey(items, LineKey(a.ID, a.Weight)); i >= 0 {
		items[i].Quantity += qty
		return items
	}

	var options []decimal.Decimal
	if len(a.WeightOptions) > 0 {
		options = make([]decimal.Decimal, len(a.WeightOptions))
		copy(options, a.WeightOptions)
	}
	return append(items, Line{
		ProductID:     a.ID,
		Name:          a.Name,
		Image:         a.Image,
		UnitPrice:     a.Price,
		Weight:        normalizeWeight(a.Weight),
		WeightOptions: options,
		Quantity:      qty,
	})
}

func changeWeight(items []Line, a ChangeWeight) []Line {
	src := indexOfKey(items, LineKey(a.ID, a.OldWeight))
	if src < 0 {
		return items
	}

	dst := indexOfKey(items, LineKey(a.ID, a.NewWeight))
	if dst < 0 || dst == src {
		items[src].Weight = normalizeWeight(a.NewWeight)
		items[src].UnitPrice = a.Price
		return items
	}

	// merge: the destination keeps its own price and position
	items[dst].Quantity += items[src].Quantity
	return removeAt(items, src)
}

func indexOfKey(items []Line, key string) int {
	for i, line := range items {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

func removeAt(items []Line, i int) []Line {
	out := make([]Line, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func normalizeWeight(weight *decimal.Decimal) *decimal.Decimal {
	if !hasWeight(weight) {
		return nil
	}
	w := *weight
	return &w
}

func copyDate(date *types.Date) *types.Date {
	if date == nil {
		return nil
	}
	d := *date
	return &d
}
