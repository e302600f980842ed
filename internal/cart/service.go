package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

// Service exposes a client's persisted cart to the HTTP layer.
type Service interface {
	Get(ctx context.Context, clientID string) (State, error)
	Dispatch(ctx context.Context, clientID string, action Action) (State, error)
}

type service struct {
	store BlobStore
	logg  *logger.Logger
	rec   Recorder
}

// NewService builds a cart service over store. logg and rec may be nil.
func NewService(store BlobStore, logg *logger.Logger, rec Recorder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart blob store required")
	}
	return &service{
		store: store,
		logg:  logg,
		rec:   rec,
	}, nil
}

// Get restores the client's cart without writing it back.
func (s *service) Get(ctx context.Context, clientID string) (State, error) {
	adapter, err := s.adapter(clientID)
	if err != nil {
		return State{}, err
	}
	return adapter.Restore(ctx).Snapshot(), nil
}

// Dispatch restores the client's cart, applies action and persists the result.
// Concurrent dispatches for the same client are last-writer-wins.
func (s *service) Dispatch(ctx context.Context, clientID string, action Action) (State, error) {
	if action == nil {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "action is required")
	}
	adapter, err := s.adapter(clientID)
	if err != nil {
		return State{}, err
	}

	engine := adapter.Restore(ctx)
	detach := adapter.Attach(ctx, engine)
	defer detach()

	next := engine.Dispatch(action)
	if s.rec != nil {
		s.rec.ActionDispatched(string(action.Type()))
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"action":     string(action.Type()),
			"line_count": len(next.Items),
			"total":      next.Total.StringFixed(2),
		})
		s.logg.Debug(ctx, "cart.action_dispatched")
	}
	return next, nil
}

func (s *service) adapter(clientID string) (*Adapter, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart client id is required")
	}
	return NewAdapter(s.store, clientID, s.logg, s.rec), nil
}
