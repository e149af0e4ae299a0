package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/api/middleware"
	"github.com/serviqo/serviqo-backend/api/responses"
	"github.com/serviqo/serviqo-backend/api/validators"
	"github.com/serviqo/serviqo-backend/internal/listings"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/logger"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

type createListingRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	PriceCents  int64   `json:"price_cents" validate:"required,gt=0"`
}

type setListingActiveRequest struct {
	Active bool `json:"active"`
}

// ServiceList returns active listings with cursor pagination. Public.
func ServiceList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListActive(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage(listingsFromModels(rows), next))
	}
}

// ServiceDetail returns a single listing. Public.
func ServiceDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceId"), "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listingFromModel(listing))
	}
}

// ProviderCreateService publishes a new listing for the authenticated provider.
func ProviderCreateService(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := middleware.AccountUUIDFromContext(r.Context())
		if providerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body createListingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), providerID, listings.CreateListingInput{
			Title:       body.Title,
			Description: body.Description,
			PriceCents:  body.PriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listingFromModel(listing))
	}
}

// ProviderListServices returns every listing owned by the provider, active or not.
func ProviderListServices(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := middleware.AccountUUIDFromContext(r.Context())
		if providerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		rows, err := svc.ListByProvider(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listingsFromModels(rows))
	}
}

// ProviderSetServiceActive toggles whether a listing accepts new bookings.
func ProviderSetServiceActive(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := middleware.AccountUUIDFromContext(r.Context())
		if providerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "serviceId"), "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setListingActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.SetActive(r.Context(), providerID, listingID, body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listingFromModel(listing))
	}
}
