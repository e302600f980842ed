package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

const (
	EventOrderSubmitted   = "order_submitted"
	defaultPublishTimeout = 15 * time.Second
)

// OrderSubmitter hands a validated order to fulfilment.
type OrderSubmitter interface {
	Submit(ctx context.Context, submission Submission) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.pub.Publish(ctx, msg)
}

// PubSubSubmitter publishes each submission as a JSON message on the orders topic.
type PubSubSubmitter struct {
	pub     publisher
	timeout time.Duration
}

// NewPubSubSubmitter wraps a Pub/Sub publisher handle.
func NewPubSubSubmitter(pub *gcppubsub.Publisher) (*PubSubSubmitter, error) {
	if pub == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &PubSubSubmitter{pub: gcpPublisher{pub: pub}, timeout: defaultPublishTimeout}, nil
}

func (s *PubSubSubmitter) Submit(ctx context.Context, submission Submission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":     submission.ID,
			"event_type":   EventOrderSubmitted,
			"client_id":    submission.ClientID,
			"submitted_at": submission.SubmittedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	result := s.pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish submission %s: %w", submission.ID, err)
	}
	return nil
}

// LogSubmitter only logs submissions; cmd/api uses it when no orders topic is configured.
type LogSubmitter struct {
	logg *logger.Logger
}

func NewLogSubmitter(logg *logger.Logger) *LogSubmitter {
	return &LogSubmitter{logg: logg}
}

func (s *LogSubmitter) Submit(ctx context.Context, submission Submission) error {
	if s.logg == nil {
		return nil
	}
	fields := map[string]any{
		"submission_id": submission.ID,
		"item_count":    submission.Quote.ItemCount,
		"total":         submission.Quote.Total.StringFixed(2),
		"delivery_time": submission.Quote.DeliveryTime,
	}
	if submission.Quote.DeliveryDate != nil {
		fields["delivery_date"] = submission.Quote.DeliveryDate.String()
	}
	ctx = s.logg.WithFields(ctx, fields)
	s.logg.Info(ctx, "checkout.order_submitted")
	return nil
}
