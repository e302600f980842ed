package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/api/responses"
	"github.com/hedgerow/hedgerow-backend/api/validators"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

type priceResponse struct {
	Base          decimal.Decimal `json:"base"`
	Date          *types.Date     `json:"date,omitempty"`
	Multiplier    decimal.Decimal `json:"multiplier"`
	Price         decimal.Decimal `json:"price"`
	IsDeliveryDay bool            `json:"is_delivery_day"`
}

// PricingPrice applies the delivery-day multiplier to a catalogue price.
func PricingPrice(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := validators.ParseQueryDecimal(r, "base")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := priceResponse{
			Base:       base,
			Date:       date,
			Multiplier: decimal.NewFromInt(1),
			Price:      pricing.PriceForDate(base, date),
		}
		if date != nil {
			resp.Multiplier = pricing.Multiplier(*date)
			resp.IsDeliveryDay = pricing.IsDeliveryDay(*date)
		}
		responses.WriteSuccess(w, resp)
	}
}
