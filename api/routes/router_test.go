package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/api/controllers"
	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/checkout"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	"github.com/hedgerow/hedgerow-backend/pkg/config"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		Cart: config.CartConfig{
			StorageDriver:      "memory",
			ClientCookieName:   "hedgerow_cart_client",
			ClientCookieMaxAge: time.Hour,
		},
		Delivery: config.DeliveryConfig{Location: time.UTC},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

// monday 2026-10-19 09:00 UTC
func testClock() time.Time {
	return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T, cfg *config.Config, ready ...controllers.Dependency) http.Handler {
	t.Helper()
	logg := logger.Nop()
	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	carts, err := cart.NewService(cart.NewMemoryStore(), logg, cartMetrics)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Carts:     carts,
		Submitter: checkout.NewLogSubmitter(logg),
		FeeRules: pricing.FeeRules{
			FlatFee:       decimal.RequireFromString("4.99"),
			FreeThreshold: decimal.RequireFromString("50"),
		},
		Slots:    cfg.Delivery.SlotLabels(),
		Logger:   logg,
		Recorder: cartMetrics,
		Clock:    testClock,
	})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	return NewRouter(cfg, logg, Dependencies{
		Carts:       carts,
		Checkout:    checkoutSvc,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Ready:       ready,
		Clock:       testClock,
	})
}

func do(t *testing.T, router http.Handler, method, path, clientID, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if clientID != "" {
		req.Header.Set("X-Cart-Client", clientID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp, env
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	resp, _ := do(t, router, http.MethodGet, "/health/live", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Hedgerow-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Hedgerow-Env"))
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(t, testConfig(), controllers.Dependency{Name: "redis", Pinger: stubPinger{}})
	resp, _ := do(t, router, http.MethodGet, "/health/ready", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	router = newTestRouter(t, testConfig(),
		controllers.Dependency{Name: "redis", Pinger: stubPinger{}},
		controllers.Dependency{Name: "db", Pinger: stubPinger{err: errors.New("down")}},
	)
	resp, env := do(t, router, http.MethodGet, "/health/ready", "", "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if env.Error == nil || env.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected DEPENDENCY_ERROR, got %+v", env.Error)
	}
	var checks map[string]string
	if err := json.Unmarshal(env.Error.Details, &checks); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if checks["db"] != "down" || checks["redis"] != "up" {
		t.Fatalf("unexpected checks %v", checks)
	}
}

func TestUnknownRoutesUseTypedErrors(t *testing.T) {
	router := newTestRouter(t, testConfig())

	resp, env := do(t, router, http.MethodGet, "/api/v1/nope", "", "")
	if resp.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected typed 404, got %d %+v", resp.Code, env.Error)
	}

	resp, env = do(t, router, http.MethodPut, "/api/v1/cart/actions", "", "")
	if resp.Code != http.StatusMethodNotAllowed || env.Error == nil || env.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Fatalf("expected typed 405, got %d %+v", resp.Code, env.Error)
	}
}

func TestCartIssuesClientCookie(t *testing.T) {
	router := newTestRouter(t, testConfig())

	resp, _ := do(t, router, http.MethodGet, "/api/v1/cart", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	clientID := resp.Header().Get("X-Cart-Client")
	if clientID == "" {
		t.Fatal("expected issued client id")
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "hedgerow_cart_client" || cookies[0].Value != clientID {
		t.Fatalf("unexpected cookies %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}

	resp, _ = do(t, router, http.MethodGet, "/api/v1/cart", clientID, "")
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("known client should not be issued a new cookie")
	}
}

func TestCartActionsAndCheckout(t *testing.T) {
	router := newTestRouter(t, testConfig())
	const client = "client-0001"

	resp, env := do(t, router, http.MethodPost, "/api/v1/cart/actions", client,
		`{"type":"ADD_ITEM","payload":{"id":"apple","name":"Apple","price":"2.00","quantity":3}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("add item: expected 200 got %d %s", resp.Code, resp.Body.String())
	}
	var state cart.State
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Items) != 1 || !state.Total.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("unexpected state %+v", state)
	}

	resp, env = do(t, router, http.MethodPost, "/api/v1/checkout", client, "")
	if resp.Code != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("expected STATE_CONFLICT, got %d %+v", resp.Code, env.Error)
	}
	var issues []checkout.Issue
	if err := json.Unmarshal(env.Error.Details, &issues); err != nil {
		t.Fatalf("decode issues: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("expected postcode, date and time issues, got %+v", issues)
	}

	for _, body := range []string{
		`{"type":"SET_POSTCODE","payload":{"postcode":"SW1A 1AA"}}`,
		`{"type":"SET_DELIVERY_DATE","payload":{"date":"2026-10-23"}}`,
		`{"type":"SET_DELIVERY_TIME","payload":{"time":"08:00-10:00"}}`,
	} {
		resp, _ = do(t, router, http.MethodPost, "/api/v1/cart/actions", client, body)
		if resp.Code != http.StatusOK {
			t.Fatalf("action %s: expected 200 got %d %s", body, resp.Code, resp.Body.String())
		}
	}

	resp, env = do(t, router, http.MethodGet, "/api/v1/cart/quote", client, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("quote: expected 200 got %d", resp.Code)
	}
	var quote checkout.Quote
	if err := json.Unmarshal(env.Data, &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !quote.Total.Equal(decimal.RequireFromString("10.99")) {
		t.Fatalf("expected total 10.99 got %s", quote.Total)
	}

	resp, env = do(t, router, http.MethodPost, "/api/v1/checkout", client, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d %s", resp.Code, resp.Body.String())
	}
	var submission checkout.Submission
	if err := json.Unmarshal(env.Data, &submission); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if submission.ID == "" || submission.ClientID != client {
		t.Fatalf("unexpected submission %+v", submission)
	}

	_, env = do(t, router, http.MethodGet, "/api/v1/cart", client, "")
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Items) != 0 || state.Postcode != "" {
		t.Fatalf("expected cleared cart, got %+v", state)
	}
}

func TestCartActionRejectsBadEnvelope(t *testing.T) {
	router := newTestRouter(t, testConfig())
	for _, body := range []string{
		`{"type":"EXPLODE"}`,
		`{"type":"ADD_ITEM"}`,
		`{"type":"ADD_ITEM","payload":{"id":"a","name":"A","price":"-1"}}`,
		`{"type":"ADD_ITEM","payload":{},"extra":true}`,
		`not json`,
	} {
		resp, env := do(t, router, http.MethodPost, "/api/v1/cart/actions", "client-0002", body)
		if resp.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %d %+v", body, resp.Code, env.Error)
		}
	}
}

func TestCartClear(t *testing.T) {
	router := newTestRouter(t, testConfig())
	const client = "client-0003"
	do(t, router, http.MethodPost, "/api/v1/cart/actions", client,
		`{"type":"ADD_ITEM","payload":{"id":"pear","name":"Pear","price":"1.50"}}`)

	resp, env := do(t, router, http.MethodDelete, "/api/v1/cart", client, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var state cart.State
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Items) != 0 || !state.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", state)
	}
}

func TestDeliveryDays(t *testing.T) {
	router := newTestRouter(t, testConfig())

	resp, env := do(t, router, http.MethodGet, "/api/v1/delivery/days?count=4", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var days []struct {
		Date       string          `json:"date"`
		Weekday    string          `json:"weekday"`
		Multiplier decimal.Decimal `json:"multiplier"`
	}
	if err := json.Unmarshal(env.Data, &days); err != nil {
		t.Fatalf("decode days: %v", err)
	}
	want := []string{"2026-10-22", "2026-10-23", "2026-10-24", "2026-10-29"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days got %d", len(want), len(days))
	}
	for i, day := range days {
		if day.Date != want[i] {
			t.Fatalf("day %d: expected %s got %s", i, want[i], day.Date)
		}
	}
	if days[2].Weekday != "Saturday" || !days[2].Multiplier.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("unexpected saturday %+v", days[2])
	}

	resp, _ = do(t, router, http.MethodGet, "/api/v1/delivery/days?count=22", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range count got %d", resp.Code)
	}
}

func TestDeliverySlots(t *testing.T) {
	router := newTestRouter(t, testConfig())
	_, env := do(t, router, http.MethodGet, "/api/v1/delivery/slots", "", "")
	var slots []string
	if err := json.Unmarshal(env.Data, &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots) != 5 || slots[0] != "08:00-10:00" {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestPricingPrice(t *testing.T) {
	router := newTestRouter(t, testConfig())

	resp, env := do(t, router, http.MethodGet, "/api/v1/pricing/price?base=2.00&date=2026-10-24", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var price struct {
		Price         decimal.Decimal `json:"price"`
		IsDeliveryDay bool            `json:"is_delivery_day"`
	}
	if err := json.Unmarshal(env.Data, &price); err != nil {
		t.Fatalf("decode price: %v", err)
	}
	if !price.Price.Equal(decimal.RequireFromString("2.40")) || !price.IsDeliveryDay {
		t.Fatalf("unexpected price %+v", price)
	}

	resp, _ = do(t, router, http.MethodGet, "/api/v1/pricing/price?base=-1", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, testConfig())
	do(t, router, http.MethodPost, "/api/v1/cart/actions", "client-0004",
		`{"type":"ADD_ITEM","payload":{"id":"plum","name":"Plum","price":"0.80"}}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`cart_actions_total{action="ADD_ITEM"} 1`,
		`http_requests_total{method="POST",route="/api/v1/cart/actions",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
