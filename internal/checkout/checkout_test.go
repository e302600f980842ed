package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

var testSlots = []string{"08:00-10:00", "10:00-12:00"}

var testRules = pricing.FeeRules{
	FlatFee:       decimal.RequireFromString("4.99"),
	FreeThreshold: decimal.RequireFromString("50"),
}

func intPtr(n int) *int { return &n }

func readyState(t *testing.T) cart.State {
	t.Helper()
	friday := types.NewDate(2026, 10, 23)
	state := cart.NewState()
	for _, a := range []cart.Action{
		cart.AddItem{ID: "apple", Name: "Apple", Price: decimal.RequireFromString("2.00"), Quantity: intPtr(3)},
		cart.SetDeliveryDate{Date: &friday},
		cart.SetDeliveryTime{Time: "08:00-10:00"},
		cart.SetPostcode{Postcode: "SW1A 1AA"},
	} {
		state = cart.Reduce(state, a)
	}
	return state
}

func TestBuildQuoteAddsDeliveryFee(t *testing.T) {
	t.Parallel()

	q := BuildQuote(readyState(t), testRules)

	assert.True(t, q.Subtotal.Equal(decimal.RequireFromString("6")))
	assert.True(t, q.DeliveryFee.Equal(decimal.RequireFromString("4.99")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("10.99")))
	require.Len(t, q.Items, 1)
	assert.Equal(t, "apple", q.Items[0].Key)
	assert.True(t, q.Items[0].Amount.Equal(decimal.RequireFromString("6")))
	assert.Equal(t, 3, q.ItemCount)
}

func TestBuildQuoteEmptyCartHasNoFee(t *testing.T) {
	t.Parallel()

	q := BuildQuote(cart.NewState(), testRules)
	assert.True(t, q.DeliveryFee.IsZero())
	assert.True(t, q.Total.IsZero())
	assert.NotNil(t, q.Items)
}

func TestValidateAcceptsReadyCart(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(readyState(t), testSlots))
}

func TestValidateCollectsEveryIssue(t *testing.T) {
	t.Parallel()

	err := Validate(cart.NewState(), testSlots)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	fields := map[string]bool{}
	for _, issue := range Issues(err) {
		fields[issue.Field] = true
	}
	for _, field := range []string{"items", "postcode", "delivery_date", "delivery_time"} {
		assert.True(t, fields[field], "missing issue for %s in %v", field, Issues(err))
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	sunday := types.NewDate(2026, 10, 25)
	cases := []struct {
		name   string
		action cart.Action
		field  string
	}{
		{"zero quantity line", cart.UpdateQuantity{ID: "apple", Quantity: 0}, "items.apple"},
		{"bad postcode", cart.SetPostcode{Postcode: "NOT A CODE"}, "postcode"},
		{"non delivery day", cart.SetDeliveryDate{Date: &sunday}, "delivery_date"},
		{"unknown slot", cart.SetDeliveryTime{Time: "20:00-22:00"}, "delivery_time"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := cart.Reduce(readyState(t), tc.action)
			issues := Issues(Validate(state, testSlots))
			require.Len(t, issues, 1)
			assert.Equal(t, tc.field, issues[0].Field)
		})
	}
}

type submitterStub struct {
	err         error
	submissions []Submission
}

func (s *submitterStub) Submit(_ context.Context, submission Submission) error {
	s.submissions = append(s.submissions, submission)
	return s.err
}

type outcomeStub struct {
	outcomes []string
}

func (o *outcomeStub) OrderSubmitted(outcome string) { o.outcomes = append(o.outcomes, outcome) }

func newTestService(t *testing.T, submitter OrderSubmitter, rec submissionRecorder) (Service, cart.Service) {
	t.Helper()
	carts, err := cart.NewService(cart.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Carts:     carts,
		Submitter: submitter,
		FeeRules:  testRules,
		Slots:     testSlots,
		Logger:    logger.Nop(),
		Recorder:  rec,
		Clock:     func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, carts
}

func fillCart(t *testing.T, carts cart.Service, clientID string) {
	t.Helper()
	ctx := context.Background()
	friday := types.NewDate(2026, 10, 23)
	for _, a := range []cart.Action{
		cart.AddItem{ID: "apple", Name: "Apple", Price: decimal.RequireFromString("20"), Quantity: intPtr(3)},
		cart.SetDeliveryDate{Date: &friday},
		cart.SetDeliveryTime{Time: "10:00-12:00"},
		cart.SetPostcode{Postcode: "n1 9gu"},
	} {
		_, err := carts.Dispatch(ctx, clientID, a)
		require.NoError(t, err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestSubmitSendsOrderAndClearsCart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	submitter := &submitterStub{}
	rec := &outcomeStub{}
	svc, carts := newTestService(t, submitter, rec)
	fillCart(t, carts, "device-1")

	submission, err := svc.Submit(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, submission)
	assert.NotEmpty(t, submission.ID)
	assert.Equal(t, "device-1", submission.ClientID)
	assert.True(t, submission.Quote.DeliveryFee.IsZero(), "subtotal above threshold ships free")
	assert.True(t, submission.Quote.Total.Equal(decimal.RequireFromString("60")))
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), submission.SubmittedAt)
	require.Len(t, submitter.submissions, 1)
	assert.Equal(t, []string{outcomeSubmitted}, rec.outcomes)

	state, err := carts.Get(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestSubmitRejectsIncompleteCart(t *testing.T) {
	t.Parallel()

	submitter := &submitterStub{}
	rec := &outcomeStub{}
	svc, _ := newTestService(t, submitter, rec)

	_, err := svc.Submit(context.Background(), "device-2")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Empty(t, submitter.submissions)
	assert.Equal(t, []string{outcomeRejected}, rec.outcomes)
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	submitter := &submitterStub{err: errors.New("topic unavailable")}
	svc, carts := newTestService(t, submitter, nil)
	fillCart(t, carts, "device-3")

	_, err := svc.Submit(ctx, "device-3")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	state, err := carts.Get(ctx, "device-3")
	require.NoError(t, err)
	assert.Len(t, state.Items, 1)
}

func TestQuoteReadsClientCart(t *testing.T) {
	t.Parallel()

	svc, carts := newTestService(t, &submitterStub{}, nil)
	_, err := carts.Dispatch(context.Background(), "device-4", cart.AddItem{ID: "kale", Name: "Kale", Price: decimal.RequireFromString("1.25")})
	require.NoError(t, err)

	q, err := svc.Quote(context.Background(), "device-4")
	require.NoError(t, err)
	assert.True(t, q.Total.Equal(decimal.RequireFromString("6.24")), "got %s", q.Total)
}

type publisherStub struct {
	msgs []*gcppubsub.Message
	err  error
}

type resultStub struct {
	err error
}

func (r resultStub) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

func (p *publisherStub) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.msgs = append(p.msgs, msg)
	return resultStub{err: p.err}
}

func TestPubSubSubmitterPublishesSubmission(t *testing.T) {
	t.Parallel()

	pub := &publisherStub{}
	submitter := &PubSubSubmitter{pub: pub, timeout: time.Second}
	submission := Submission{
		ID:          "sub-1",
		ClientID:    "device-1",
		Quote:       BuildQuote(readyState(t), testRules),
		SubmittedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, submitter.Submit(context.Background(), submission))
	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, EventOrderSubmitted, msg.Attributes["event_type"])
	assert.Equal(t, "sub-1", msg.Attributes["event_id"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "device-1", decoded["client_id"])

	pub.err = errors.New("deadline exceeded")
	assert.Error(t, submitter.Submit(context.Background(), submission))
}

func TestNewPubSubSubmitterRequiresPublisher(t *testing.T) {
	t.Parallel()
	_, err := NewPubSubSubmitter(nil)
	assert.Error(t, err)
}

func TestLogSubmitterNeverFails(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewLogSubmitter(logger.Nop()).Submit(context.Background(), Submission{ID: "x"}))
	assert.NoError(t, NewLogSubmitter(nil).Submit(context.Background(), Submission{ID: "y"}))
}
