package controllers

import (
	"net/http"

	"github.com/hedgerow/hedgerow-backend/api/middleware"
	"github.com/hedgerow/hedgerow-backend/api/responses"
	"github.com/hedgerow/hedgerow-backend/internal/checkout"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

// CartQuote prices the caller's cart with the delivery fee layered on.
func CartQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		quote, err := svc.Quote(r.Context(), middleware.CartClientIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutSubmit validates and submits the caller's cart, answering 201 with
// the submission. An incomplete cart yields STATE_CONFLICT with every issue.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		submission, err := svc.Submit(r.Context(), middleware.CartClientIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submission)
	}
}
