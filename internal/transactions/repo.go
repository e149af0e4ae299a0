package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

// Repository handles the immutable transaction ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.TransactionRecord) error
	ListByAccount(ctx context.Context, params ListQuery) ([]models.TransactionRecord, *pagination.Cursor, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionRecord, error)
}

// ListQuery configures account transaction history queries.
type ListQuery struct {
	AccountID uuid.UUID
	Type      *enums.TransactionType
	Limit     int
	Cursor    *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.TransactionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByAccount(ctx context.Context, params ListQuery) ([]models.TransactionRecord, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.TransactionRecord{}).
		Where("client_id = ? OR provider_id = ?", params.AccountID, params.AccountID)
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var records []models.TransactionRecord
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&records).Error; err != nil {
		return nil, nil, err
	}

	if len(records) > limit {
		next := records[limit]
		records = records[:limit]
		return records, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return records, nil, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
