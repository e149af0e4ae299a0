package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/api/middleware"
	"github.com/serviqo/serviqo-backend/api/responses"
	"github.com/serviqo/serviqo-backend/api/validators"
	"github.com/serviqo/serviqo-backend/internal/accounts"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/logger"
	"github.com/serviqo/serviqo-backend/pkg/types"
)

// AccountProfile returns the authenticated account.
func AccountProfile(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountUUIDFromContext(r.Context())
		if accountID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		account, err := svc.GetProfile(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accounts.FromModel(account))
	}
}

// AccountBalance returns the current balance only.
func AccountBalance(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountUUIDFromContext(r.Context())
		if accountID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		balance, err := svc.GetBalance(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"balance_cents": balance,
			"balance":       types.FormatDollars(balance),
		})
	}
}

type devCreditRequest struct {
	AccountID   uuid.UUID `json:"account_id" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
}

// DevCredit grants demo balance. The route is only mounted outside prod.
func DevCredit(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body devCreditRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Credit(r.Context(), body.AccountID, body.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accounts.FromModel(account))
	}
}
