package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

type accountLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// CreateListingInput captures the fields a provider supplies for a new listing.
type CreateListingInput struct {
	Title       string
	Description *string
	PriceCents  int64
}

// Service exposes listing management and discovery.
type Service interface {
	Create(ctx context.Context, providerID uuid.UUID, input CreateListingInput) (*models.ServiceListing, error)
	SetActive(ctx context.Context, providerID, listingID uuid.UUID, active bool) (*models.ServiceListing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	ListActive(ctx context.Context, params pagination.Params) ([]models.ServiceListing, *pagination.Cursor, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceListing, error)
}

type service struct {
	repo     Repository
	accounts accountLoader
}

// NewService wires a listing service with the provided dependencies.
func NewService(repo Repository, accounts accountLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	return &service{repo: repo, accounts: accounts}, nil
}

func (s *service) Create(ctx context.Context, providerID uuid.UUID, input CreateListingInput) (*models.ServiceListing, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	account, err := s.accounts.FindByID(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading provider account")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	if account.Role != enums.AccountRoleProvider {
		return nil, pkgerrors.New(pkgerrors.CodeWrongRole, "only providers can publish services")
	}

	listing := &models.ServiceListing{
		ID:          uuid.New(),
		ProviderID:  providerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Active:      true,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating listing")
	}
	return listing, nil
}

func (s *service) SetActive(ctx context.Context, providerID, listingID uuid.UUID, active bool) (*models.ServiceListing, error) {
	if providerID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id and listing id required")
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if listing.ProviderID != providerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotOwner, "listing belongs to another provider")
	}

	if listing.Active != active {
		if err := s.repo.SetActive(ctx, listingID, active); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating listing")
		}
	}

	updated, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading listing")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return listing, nil
}

func (s *service) ListActive(ctx context.Context, params pagination.Params) ([]models.ServiceListing, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	listings, next, err := s.repo.ListActive(ctx, ListQuery{Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing services")
	}
	return listings, next, nil
}

func (s *service) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceListing, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	listings, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing provider services")
	}
	return listings, nil
}
