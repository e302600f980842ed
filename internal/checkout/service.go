package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

// Submission is an order handed to fulfilment.
type Submission struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Quote       Quote     `json:"quote"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type submissionRecorder interface {
	OrderSubmitted(outcome string)
}

const (
	outcomeSubmitted = "submitted"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Service prices and submits a client's cart.
type Service interface {
	Quote(ctx context.Context, clientID string) (Quote, error)
	Submit(ctx context.Context, clientID string) (*Submission, error)
}

type ServiceParams struct {
	Carts     cart.Service
	Submitter OrderSubmitter
	FeeRules  pricing.FeeRules
	Slots     []string
	Logger    *logger.Logger
	Recorder  submissionRecorder
	Clock     func() time.Time
}

type service struct {
	carts     cart.Service
	submitter OrderSubmitter
	rules     pricing.FeeRules
	slots     []string
	logg      *logger.Logger
	rec       submissionRecorder
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if len(params.Slots) == 0 {
		return nil, fmt.Errorf("delivery slots required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	slots := make([]string, len(params.Slots))
	copy(slots, params.Slots)
	return &service{
		carts:     params.Carts,
		submitter: params.Submitter,
		rules:     params.FeeRules,
		slots:     slots,
		logg:      params.Logger,
		rec:       params.Recorder,
		now:       now,
	}, nil
}

func (s *service) Quote(ctx context.Context, clientID string) (Quote, error) {
	state, err := s.carts.Get(ctx, clientID)
	if err != nil {
		return Quote{}, err
	}
	return BuildQuote(state, s.rules), nil
}

// Submit validates the cart, hands it to the submitter and clears the cart. A
// submitter failure leaves the cart untouched.
func (s *service) Submit(ctx context.Context, clientID string) (*Submission, error) {
	state, err := s.carts.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := Validate(state, s.slots); err != nil {
		s.record(outcomeRejected)
		return nil, err
	}

	submission := Submission{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Quote:       BuildQuote(state, s.rules),
		SubmittedAt: s.now().UTC(),
	}

	if err := s.submitter.Submit(ctx, submission); err != nil {
		s.record(outcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order could not be submitted")
	}
	s.record(outcomeSubmitted)

	if _, err := s.carts.Dispatch(ctx, clientID, cart.ClearCart{}); err != nil {
		// order already submitted; log and return it
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "submission_id", submission.ID), "checkout.clear_cart_failed", err)
		}
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"submission_id": submission.ID,
			"total":         submission.Quote.Total.StringFixed(2),
		})
		s.logg.Info(ctx, "checkout.submitted")
	}
	return &submission, nil
}

func (s *service) record(outcome string) {
	if s.rec != nil {
		s.rec.OrderSubmitted(outcome)
	}
}
