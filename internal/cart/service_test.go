package cart

import (
	"context"
	"testing"

	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
)

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestServiceDispatchPersistsPerClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &recorderStub{}
	svc, err := NewService(NewMemoryStore(), nil, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Dispatch(ctx, "alice-phone", AddItem{ID: "apple", Name: "Apple", Price: dec("2"), Quantity: qty(3)}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	state, err := svc.Dispatch(ctx, "alice-phone", AddItem{ID: "apple", Name: "Apple", Price: dec("2")})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if state.Items[0].Quantity != 4 || !state.Total.Equal(dec("8")) {
		t.Fatalf("unexpected state %+v", state)
	}

	got, err := svc.Get(ctx, "alice-phone")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Items[0].Quantity != 4 {
		t.Fatalf("expected persisted quantity 4, got %d", got.Items[0].Quantity)
	}

	other, err := svc.Get(ctx, "bob-laptop")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !other.IsEmpty() {
		t.Fatalf("expected another client to see an empty cart, got %+v", other)
	}

	if len(rec.dispatched) != 2 || rec.dispatched[0] != "ADD_ITEM" {
		t.Fatalf("expected dispatches to be recorded, got %v", rec.dispatched)
	}
}

func TestServiceRequiresClientID(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(NewMemoryStore(), nil, nil)
	_, err := svc.Get(context.Background(), "  ")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Dispatch(context.Background(), "c", nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil action, got %v", err)
	}
}

func TestServiceClearCart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := NewService(NewMemoryStore(), nil, nil)
	_, _ = svc.Dispatch(ctx, "c", AddItem{ID: "apple", Name: "Apple", Price: dec("2")})
	_, _ = svc.Dispatch(ctx, "c", SetPostcode{Postcode: "N1 9GU"})
	if _, err := svc.Dispatch(ctx, "c", ClearCart{}); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	state, _ := svc.Get(ctx, "c")
	if !state.IsEmpty() || state.Postcode != "" {
		t.Fatalf("expected cleared cart, got %+v", state)
	}
}
