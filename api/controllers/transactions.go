package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/api/middleware"
	"github.com/serviqo/serviqo-backend/api/responses"
	"github.com/serviqo/serviqo-backend/api/validators"
	"github.com/serviqo/serviqo-backend/internal/transactions"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/logger"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

// AccountTransactions returns the authenticated account's ledger history,
// optionally filtered by type (payment or refund).
func AccountTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := middleware.AccountUUIDFromContext(r.Context())
		if accountID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListForAccount(r.Context(), transactions.ListInput{
			AccountID: accountID,
			Type:      r.URL.Query().Get("type"),
			Limit:     limit,
			Cursor:    r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage(transactionsFromModels(rows), next))
	}
}
