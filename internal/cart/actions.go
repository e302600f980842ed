package cart

import (
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

// ActionType is the wire tag of an Action.
type ActionType string

const (
	ActionAddItem         ActionType = "ADD_ITEM"
	ActionRemoveItem      ActionType = "REMOVE_ITEM"
	ActionUpdateQuantity  ActionType = "UPDATE_QUANTITY"
	ActionChangeWeight    ActionType = "CHANGE_WEIGHT"
	ActionSetDeliveryDate ActionType = "SET_DELIVERY_DATE"
	ActionSetDeliveryTime ActionType = "SET_DELIVERY_TIME"
	ActionSetPostcode     ActionType = "SET_POSTCODE"
	ActionClearCart       ActionType = "CLEAR_CART"
)

// Action is the closed set of cart transitions accepted by Reduce.
type Action interface {
	Type() ActionType
	cartAction()
}

// AddItem appends a line or, when the (ID, Weight) line exists, bumps its quantity.
// Price is the unit price already adjusted for the delivery date by the caller.
type AddItem struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	Image         string
	Weight        *decimal.Decimal
	WeightOptions []decimal.Decimal
	Quantity      *int // nil means 1
}

type RemoveItem struct {
	ID     string
	Weight *decimal.Decimal
}

// UpdateQuantity sets the quantity verbatim; callers remove lines instead of sending zero.
type UpdateQuantity struct {
	ID       string
	Quantity int
	Weight   *decimal.Decimal
}

// ChangeWeight re-keys a line to NewWeight, merging into an existing NewWeight line.
type ChangeWeight struct {
	ID        string
	OldWeight *decimal.Decimal
	NewWeight *decimal.Decimal
	Price     decimal.Decimal
}

type SetDeliveryDate struct {
	Date *types.Date
}

type SetDeliveryTime struct {
	Time string
}

type SetPostcode struct {
	Postcode string
}

type ClearCart struct{}

func (AddItem) Type() ActionType         { return ActionAddItem }
func (RemoveItem) Type() ActionType      { return ActionRemoveItem }
func (UpdateQuantity) Type() ActionType  { return ActionUpdateQuantity }
func (ChangeWeight) Type() ActionType    { return ActionChangeWeight }
func (SetDeliveryDate) Type() ActionType { return ActionSetDeliveryDate }
func (SetDeliveryTime) Type() ActionType { return ActionSetDeliveryTime }
func (SetPostcode) Type() ActionType     { return ActionSetPostcode }
func (ClearCart) Type() ActionType       { return ActionClearCart }

func (AddItem) cartAction()         {}
func (RemoveItem) cartAction()      {}
func (UpdateQuantity) cartAction()  {}
func (ChangeWeight) cartAction()    {}
func (SetDeliveryDate) cartAction() {}
func (SetDeliveryTime) cartAction() {}
func (SetPostcode) cartAction()     {}
func (ClearCart) cartAction()       {}
