package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/types"
	"github.com/hedgerow/hedgerow-backend/pkg/validation"
)

// ActionEnvelope is the wire shape of an action: {"type": "...", "payload": {...}}.
type ActionEnvelope struct {
	Type    ActionType      `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type addItemPayload struct {
	ID            string            `json:"id" validate:"required"`
	Name          string            `json:"name" validate:"required"`
	Price         decimal.Decimal   `json:"price"`
	Image         string            `json:"image"`
	Weight        *decimal.Decimal  `json:"weight"`
	WeightOptions []decimal.Decimal `json:"weight_options"`
	Quantity      *int              `json:"quantity" validate:"omitempty,min=1"`
}

type removeItemPayload struct {
	ID     string           `json:"id" validate:"required"`
	Weight *decimal.Decimal `json:"weight"`
}

type updateQuantityPayload struct {
	ID       string           `json:"id" validate:"required"`
	Quantity *int             `json:"quantity" validate:"required,min=0"`
	Weight   *decimal.Decimal `json:"weight"`
}

type changeWeightPayload struct {
	ID        string           `json:"id" validate:"required"`
	OldWeight *decimal.Decimal `json:"old_weight"`
	NewWeight *decimal.Decimal `json:"new_weight" validate:"required"`
	Price     decimal.Decimal  `json:"price"`
}

type setDeliveryDatePayload struct {
	Date *types.Date `json:"date"`
}

type setDeliveryTimePayload struct {
	Time string `json:"time"`
}

type setPostcodePayload struct {
	Postcode string `json:"postcode"`
}

// DecodeAction parses a wire envelope into a typed Action. Unknown types and
// malformed payloads are VALIDATION_ERRORs; Reduce never sees them.
func DecodeAction(data []byte) (Action, error) {
	var env ActionEnvelope
	if err := strictUnmarshal(data, &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action body")
	}
	return env.Decode()
}

// Decode converts the envelope's payload into the Action named by Type.
func (env ActionEnvelope) Decode() (Action, error) {
	if err := validation.Struct(env); err != nil {
		return nil, err
	}

	switch env.Type {
	case ActionAddItem:
		var p addItemPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		if err := checkAmounts(map[string]*decimal.Decimal{"price": &p.Price, "weight": p.Weight}); err != nil {
			return nil, err
		}
		for _, opt := range p.WeightOptions {
			if !opt.IsPositive() {
				return nil, fieldError("weight_options", "must contain positive weights")
			}
		}
		return AddItem{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Image:         p.Image,
			Weight:        p.Weight,
			WeightOptions: p.WeightOptions,
			Quantity:      p.Quantity,
		}, nil

	case ActionRemoveItem:
		var p removeItemPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return RemoveItem{ID: p.ID, Weight: p.Weight}, nil

	case ActionUpdateQuantity:
		var p updateQuantityPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return UpdateQuantity{ID: p.ID, Quantity: *p.Quantity, Weight: p.Weight}, nil

	case ActionChangeWeight:
		var p changeWeightPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		if err := checkAmounts(map[string]*decimal.Decimal{"price": &p.Price, "new_weight": p.NewWeight}); err != nil {
			return nil, err
		}
		return ChangeWeight{ID: p.ID, OldWeight: p.OldWeight, NewWeight: p.NewWeight, Price: p.Price}, nil

	case ActionSetDeliveryDate:
		var p setDeliveryDatePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return SetDeliveryDate{Date: p.Date}, nil

	case ActionSetDeliveryTime:
		var p setDeliveryTimePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return SetDeliveryTime{Time: p.Time}, nil

	case ActionSetPostcode:
		var p setPostcodePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return SetPostcode{Postcode: p.Postcode}, nil

	case ActionClearCart:
		return ClearCart{}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown action type").
		WithDetails(map[string]string{"type": string(env.Type)})
}

func decodePayload(env ActionEnvelope, dest any) error {
	if len(bytes.TrimSpace(env.Payload)) == 0 || bytes.Equal(bytes.TrimSpace(env.Payload), []byte("null")) {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload is required").
			WithDetails(map[string]string{"payload": "is required"})
	}
	if err := strictUnmarshal(env.Payload, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s payload", env.Type))
	}
	return validation.Struct(dest)
}

func strictUnmarshal(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// checkAmounts rejects negative prices and non-positive weights; nil weights are allowed.
func checkAmounts(fields map[string]*decimal.Decimal) error {
	for name, value := range fields {
		if value == nil {
			continue
		}
		if name == "price" {
			if value.IsNegative() {
				return fieldError(name, "must not be negative")
			}
			continue
		}
		if !value.IsPositive() {
			return fieldError(name, "must be positive")
		}
	}
	return nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}

// EncodeAction renders action in its wire envelope.
func EncodeAction(action Action) ([]byte, error) {
	var payload any
	switch a := action.(type) {
	case AddItem:
		payload = addItemPayload{
			ID:            a.ID,
			Name:          a.Name,
			Price:         a.Price,
			Image:         a.Image,
			Weight:        a.Weight,
			WeightOptions: a.WeightOptions,
			Quantity:      a.Quantity,
		}
	case RemoveItem:
		payload = removeItemPayload{ID: a.ID, Weight: a.Weight}
	case UpdateQuantity:
		qty := a.Quantity
		payload = updateQuantityPayload{ID: a.ID, Quantity: &qty, Weight: a.Weight}
	case ChangeWeight:
		payload = changeWeightPayload{ID: a.ID, OldWeight: a.OldWeight, NewWeight: a.NewWeight, Price: a.Price}
	case SetDeliveryDate:
		payload = setDeliveryDatePayload{Date: a.Date}
	case SetDeliveryTime:
		payload = setDeliveryTimePayload{Time: a.Time}
	case SetPostcode:
		payload = setPostcodePayload{Postcode: a.Postcode}
	case ClearCart:
	default:
		return nil, fmt.Errorf("unsupported action %T", action)
	}

	env := struct {
		Type    ActionType `json:"type"`
		Payload any        `json:"payload,omitempty"`
	}{Type: action.Type(), Payload: payload}
	return json.Marshal(env)
}
