package controllers

import (
	"net/http"

	"github.com/hedgerow/hedgerow-backend/api/middleware"
	"github.com/hedgerow/hedgerow-backend/api/responses"
	"github.com/hedgerow/hedgerow-backend/api/validators"
	"github.com/hedgerow/hedgerow-backend/internal/cart"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

// CartGet returns the caller's cart snapshot.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		clientID := middleware.CartClientIDFromContext(r.Context())
		state, err := svc.Get(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CartAction decodes one action envelope and dispatches it.
func CartAction(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var env cart.ActionEnvelope
		if err := validators.DecodeJSONBody(r, &env); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := env.Decode()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientID := middleware.CartClientIDFromContext(r.Context())
		state, err := svc.Dispatch(r.Context(), clientID, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		clientID := middleware.CartClientIDFromContext(r.Context())
		state, err := svc.Dispatch(r.Context(), clientID, cart.ClearCart{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}
