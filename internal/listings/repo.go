package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

// Repository handles service listing persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.ServiceListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	// FindForUpdate locks the listing row so activation and price changes
	// serialize against in-flight bookings.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	ListActive(ctx context.Context, params ListQuery) ([]models.ServiceListing, *pagination.Cursor, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceListing, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ListQuery configures active listing queries.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a listing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.ServiceListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	if err := r.db.WithContext(ctx).
		Preload("Provider").
		Where("id = ?", id).
		First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListActive(ctx context.Context, params ListQuery) ([]models.ServiceListing, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.ServiceListing{}).
		Where("active = ?", true)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var listings []models.ServiceListing
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&listings).Error; err != nil {
		return nil, nil, err
	}

	if len(listings) > limit {
		next := listings[limit]
		listings = listings[:limit]
		return listings, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return listings, nil, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.ServiceListing, error) {
	var listings []models.ServiceListing
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceListing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     active,
			"updated_at": time.Now(),
		}).Error
}
