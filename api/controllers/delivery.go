package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/api/responses"
	"github.com/hedgerow/hedgerow-backend/api/validators"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

const (
	defaultDeliveryDays = 6
	maxDeliveryDays     = 21
)

type deliveryDayResponse struct {
	Date       types.Date      `json:"date"`
	Weekday    string          `json:"weekday"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// DeliveryDays lists upcoming delivery dates, starting the day after now.
func DeliveryDays(now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := validators.ParseQueryInt(r, "count", defaultDeliveryDays, 1, maxDeliveryDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days := pricing.UpcomingDeliveryDays(now(), count)
		out := make([]deliveryDayResponse, 0, len(days))
		for _, day := range days {
			out = append(out, deliveryDayResponse{
				Date:       day,
				Weekday:    day.Weekday().String(),
				Multiplier: pricing.Multiplier(day),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func DeliverySlots(slots []string) http.HandlerFunc {
	out := make([]string, len(slots))
	copy(out, slots)
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, out)
	}
}
