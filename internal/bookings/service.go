package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/internal/accounts"
	"github.com/serviqo/serviqo-backend/internal/listings"
	"github.com/serviqo/serviqo-backend/internal/transactions"
	"github.com/serviqo/serviqo-backend/pkg/config"
	dbpkg "github.com/serviqo/serviqo-backend/pkg/db"
	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/logger"
	"github.com/serviqo/serviqo-backend/pkg/metrics"
	"github.com/serviqo/serviqo-backend/pkg/outbox"
	"github.com/serviqo/serviqo-backend/pkg/outbox/payloads"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CancelInput captures cancellation parameters.
type CancelInput struct {
	BookingID uuid.UUID
	Reason    *string
}

// Service orchestrates booking money movement. Every mutation runs inside a
// single transaction with both account rows locked in sorted-id order and
// eligibility re-checked under the locks.
type Service interface {
	Create(ctx context.Context, clientID, serviceID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, actorID uuid.UUID, input CancelInput) (*models.Booking, error)
	Get(ctx context.Context, actorID, bookingID uuid.UUID) (*models.Booking, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error)
}

type service struct {
	tx           txRunner
	bookingRepo  Repository
	accountRepo  accounts.Repository
	listingRepo  listings.Repository
	txRecordRepo transactions.Repository
	outbox       outboxPublisher
	metrics      *metrics.BookingMetrics
	logg         *logger.Logger
	cfg          config.BookingConfig
}

// NewService builds the booking orchestrator.
func NewService(
	tx txRunner,
	bookingRepo Repository,
	accountRepo accounts.Repository,
	listingRepo listings.Repository,
	txRecordRepo transactions.Repository,
	publisher outboxPublisher,
	bookingMetrics *metrics.BookingMetrics,
	logg *logger.Logger,
	cfg config.BookingConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if bookingRepo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if listingRepo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if txRecordRepo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.ConflictRetries <= 0 {
		cfg.ConflictRetries = 3
	}
	return &service{
		tx:           tx,
		bookingRepo:  bookingRepo,
		accountRepo:  accountRepo,
		listingRepo:  listingRepo,
		txRecordRepo: txRecordRepo,
		outbox:       publisher,
		metrics:      bookingMetrics,
		logg:         logg,
		cfg:          cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, clientID, serviceID uuid.UUID) (*models.Booking, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}

	started := time.Now()
	booking, err := s.withConflictRetry(ctx, "create", func() (*models.Booking, error) {
		return s.createOnce(ctx, clientID, serviceID)
	})
	s.metrics.ObserveDuration("create", time.Since(started))
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected("create", string(typed.Code()))
		}
		return nil, err
	}
	s.metrics.IncCompleted("create")
	return booking, nil
}

func (s *service) createOnce(ctx context.Context, clientID, serviceID uuid.UUID) (*models.Booking, error) {
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		accountRepo := s.accountRepo.WithTx(tx)
		listingRepo := s.listingRepo.WithTx(tx)
		txRecordRepo := s.txRecordRepo.WithTx(tx)

		listing, err := listingRepo.FindByID(ctx, serviceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading service")
		}
		if listing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}

		client, provider, err := lockAccountPair(ctx, accountRepo, clientID, listing.ProviderID)
		if err != nil {
			return err
		}
		if client == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}

		// The listing was read before the locks; re-read it FOR UPDATE so the
		// active flag and price hold until commit and a concurrent deactivate
		// serializes behind this booking.
		listing, err = listingRepo.FindForUpdate(ctx, serviceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading service")
		}

		if err := CanCreateBooking(client, listing, provider); err != nil {
			return err
		}

		amount := listing.PriceCents
		if err := accountRepo.AdjustBalance(ctx, client.ID, -amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting client")
		}
		if err := accountRepo.AdjustBalance(ctx, provider.ID, amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting provider")
		}

		booking := &models.Booking{
			ID:          uuid.New(),
			ClientID:    client.ID,
			ProviderID:  provider.ID,
			ServiceID:   listing.ID,
			AmountCents: amount,
			Status:      enums.BookingStatusConfirmed,
		}
		if err := bookingRepo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating booking")
		}

		record := &models.TransactionRecord{
			ID:           uuid.New(),
			BookingID:    booking.ID,
			ClientID:     client.ID,
			ProviderID:   provider.ID,
			ServiceName:  listing.Title,
			ClientName:   client.Name,
			ProviderName: provider.Name,
			AmountCents:  amount,
			Type:         enums.TransactionTypePayment,
			Status:       enums.TransactionStatusCompleted,
		}
		if err := txRecordRepo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{AccountID: client.ID, Role: string(client.Role)},
			Data: payloads.BookingCreatedV1{
				BookingID:   booking.ID,
				ClientID:    client.ID,
				ProviderID:  provider.ID,
				ServiceID:   listing.ID,
				AmountCents: amount,
				CreatedAt:   time.Now().UTC(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing booking event")
		}

		// Hand back the row as committed, not the struct we assembled.
		created, err := bookingRepo.FindByID(ctx, booking.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading booking")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, input CancelInput) (*models.Booking, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	started := time.Now()
	booking, err := s.withConflictRetry(ctx, "cancel", func() (*models.Booking, error) {
		return s.cancelOnce(ctx, actorID, input)
	})
	s.metrics.ObserveDuration("cancel", time.Since(started))
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected("cancel", string(typed.Code()))
		}
		return nil, err
	}
	s.metrics.IncCompleted("cancel")
	return booking, nil
}

func (s *service) cancelOnce(ctx context.Context, actorID uuid.UUID, input CancelInput) (*models.Booking, error) {
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		accountRepo := s.accountRepo.WithTx(tx)
		listingRepo := s.listingRepo.WithTx(tx)
		txRecordRepo := s.txRecordRepo.WithTx(tx)

		// The booking row lock is what makes concurrent cancels lose: the
		// second transaction blocks here, then fails the terminal check.
		booking, err := bookingRepo.FindForUpdate(ctx, input.BookingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking booking")
		}
		if err := CanCancelBooking(actorID, booking); err != nil {
			return err
		}

		client, provider, err := lockAccountPair(ctx, accountRepo, booking.ClientID, booking.ProviderID)
		if err != nil {
			return err
		}
		if client == nil || provider == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking account not found")
		}

		// Reverse exactly the captured amount. The provider must still hold
		// it; balances are never allowed to go observably negative.
		if provider.BalanceCents < booking.AmountCents {
			return pkgerrors.New(pkgerrors.CodeConflict, "provider balance cannot cover the refund")
		}

		if err := accountRepo.AdjustBalance(ctx, client.ID, booking.AmountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refunding client")
		}
		if err := accountRepo.AdjustBalance(ctx, provider.ID, -booking.AmountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting provider")
		}

		now := time.Now().UTC()
		if err := bookingRepo.MarkCancelled(ctx, booking.ID, now, input.Reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling booking")
		}

		serviceName := ""
		if listing, err := listingRepo.FindByID(ctx, booking.ServiceID); err == nil && listing != nil {
			serviceName = listing.Title
		}

		record := &models.TransactionRecord{
			ID:           uuid.New(),
			BookingID:    booking.ID,
			ClientID:     client.ID,
			ProviderID:   provider.ID,
			ServiceName:  serviceName,
			ClientName:   client.Name,
			ProviderName: provider.Name,
			AmountCents:  booking.AmountCents,
			Type:         enums.TransactionTypeRefund,
			Status:       enums.TransactionStatusCancelled,
		}
		if err := txRecordRepo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording refund")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCancelled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{AccountID: client.ID, Role: string(client.Role)},
			Data: payloads.BookingCancelledV1{
				BookingID:   booking.ID,
				ClientID:    client.ID,
				ProviderID:  provider.ID,
				AmountCents: booking.AmountCents,
				Reason:      input.Reason,
				CancelledAt: now,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing cancellation event")
		}

		cancelled, err := bookingRepo.FindByID(ctx, booking.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading booking")
		}
		result = cancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actorID, bookingID uuid.UUID) (*models.Booking, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
	}
	if booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if booking.ClientID != actorID && booking.ProviderID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotOwner, "booking belongs to another account")
	}
	return booking, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	if accountID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.bookingRepo.ListByAccount(ctx, ListQuery{
		AccountID: accountID,
		Limit:     params.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bookings")
	}
	return rows, next, nil
}

// withConflictRetry re-runs fn on lock/serialization failures, bounded by the
// configured attempt count, then surfaces CONFLICT.
func (s *service) withConflictRetry(ctx context.Context, operation string, fn func() (*models.Booking, error)) (*models.Booking, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.ConflictRetries; attempt++ {
		booking, err := fn()
		if err == nil {
			return booking, nil
		}
		if !dbpkg.IsSerializationFailure(err) {
			return nil, err
		}

		lastErr = err
		s.metrics.IncConflict()
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"operation": operation,
				"attempt":   attempt + 1,
			})
			s.logg.Warn(logCtx, "booking transaction conflicted, retrying")
		}

		if s.cfg.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryBackoff):
			}
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "booking conflicted with concurrent activity")
}

// lockAccountPair locks both account rows FOR UPDATE in sorted-id order and
// returns them keyed by the requested ids. Missing rows come back nil.
func lockAccountPair(ctx context.Context, repo accounts.Repository, firstID, secondID uuid.UUID) (*models.Account, *models.Account, error) {
	locked, err := repo.FindForUpdate(ctx, firstID, secondID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking accounts")
	}
	var first, second *models.Account
	for i := range locked {
		account := locked[i]
		if account.ID == firstID {
			first = &account
		}
		if account.ID == secondID {
			second = &account
		}
	}
	return first, second, nil
}
