package transactions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

type fakeTransactionRepo struct {
	records   []models.TransactionRecord
	lastQuery ListQuery
}

func (f *fakeTransactionRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeTransactionRepo) Create(_ context.Context, record *models.TransactionRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeTransactionRepo) ListByAccount(_ context.Context, params ListQuery) ([]models.TransactionRecord, *pagination.Cursor, error) {
	f.lastQuery = params
	out := []models.TransactionRecord{}
	for _, r := range f.records {
		if r.ClientID != params.AccountID && r.ProviderID != params.AccountID {
			continue
		}
		if params.Type != nil && r.Type != *params.Type {
			continue
		}
		out = append(out, r)
	}
	return out, nil, nil
}

func (f *fakeTransactionRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]models.TransactionRecord, error) {
	out := []models.TransactionRecord{}
	for _, r := range f.records {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestListForAccountFiltersByParticipant(t *testing.T) {
	client := uuid.New()
	provider := uuid.New()
	stranger := uuid.New()
	repo := &fakeTransactionRepo{records: []models.TransactionRecord{
		{ID: uuid.New(), ClientID: client, ProviderID: provider, Type: enums.TransactionTypePayment},
		{ID: uuid.New(), ClientID: stranger, ProviderID: provider, Type: enums.TransactionTypePayment},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	records, _, err := svc.ListForAccount(context.Background(), ListInput{AccountID: client})
	if err != nil {
		t.Fatalf("ListForAccount: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for client, got %d", len(records))
	}

	records, _, err = svc.ListForAccount(context.Background(), ListInput{AccountID: provider})
	if err != nil {
		t.Fatalf("ListForAccount: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for provider, got %d", len(records))
	}
}

func TestListForAccountTypeFilter(t *testing.T) {
	client := uuid.New()
	repo := &fakeTransactionRepo{records: []models.TransactionRecord{
		{ID: uuid.New(), ClientID: client, Type: enums.TransactionTypePayment},
		{ID: uuid.New(), ClientID: client, Type: enums.TransactionTypeRefund},
	}}
	svc, _ := NewService(repo)

	records, _, err := svc.ListForAccount(context.Background(), ListInput{AccountID: client, Type: "refund"})
	if err != nil {
		t.Fatalf("ListForAccount: %v", err)
	}
	if len(records) != 1 || records[0].Type != enums.TransactionTypeRefund {
		t.Fatalf("unexpected records: %+v", records)
	}

	if _, _, err := svc.ListForAccount(context.Background(), ListInput{AccountID: client, Type: "chargeback"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for unknown type, got %v", err)
	}
}

func TestListForAccountRequiresAccountID(t *testing.T) {
	svc, _ := NewService(&fakeTransactionRepo{})
	if _, _, err := svc.ListForAccount(context.Background(), ListInput{}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
