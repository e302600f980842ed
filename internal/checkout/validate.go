package checkout

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
)

// Issue is one reason a cart cannot be submitted.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Validate checks that state is ready to submit against the offered slots. All
// problems are reported together as one STATE_CONFLICT whose details list each Issue.
func Validate(state cart.State, slots []string) error {
	var err error

	if state.IsEmpty() {
		err = multierr.Append(err, Issue{Field: "items", Message: "cart is empty"})
	}
	for _, line := range state.Items {
		if line.Quantity <= 0 {
			err = multierr.Append(err, Issue{Field: "items." + line.Key(), Message: "quantity must be at least 1"})
		}
	}

	if strings.TrimSpace(state.Postcode) == "" {
		err = multierr.Append(err, Issue{Field: "postcode", Message: "postcode is required"})
	} else if !pricing.ValidPostcode(state.Postcode) {
		err = multierr.Append(err, Issue{Field: "postcode", Message: "postcode is not a valid UK postcode"})
	}

	switch {
	case state.DeliveryDate == nil:
		err = multierr.Append(err, Issue{Field: "delivery_date", Message: "delivery date is required"})
	case !pricing.IsDeliveryDay(*state.DeliveryDate):
		err = multierr.Append(err, Issue{Field: "delivery_date", Message: "we deliver on Thursday, Friday and Saturday only"})
	}

	switch {
	case state.DeliveryTime == "":
		err = multierr.Append(err, Issue{Field: "delivery_time", Message: "delivery time slot is required"})
	case !containsSlot(slots, state.DeliveryTime):
		err = multierr.Append(err, Issue{Field: "delivery_time", Message: "delivery time slot is not offered"})
	}

	if err == nil {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not ready for checkout").
		WithDetails(issuesOf(err))
}

// Issues extracts the individual issues from a Validate error.
func Issues(err error) []Issue {
	typed := pkgerrors.As(err)
	if typed == nil {
		return nil
	}
	issues, _ := typed.Details().([]Issue)
	return issues
}

func issuesOf(err error) []Issue {
	errs := multierr.Errors(err)
	out := make([]Issue, 0, len(errs))
	for _, e := range errs {
		var issue Issue
		if errors.As(e, &issue) {
			out = append(out, issue)
		}
	}
	return out
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
