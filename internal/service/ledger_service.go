package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"lakbay.com/lakbaypoints/internal/event"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/pkg/apperror"
)

type LedgerService interface {
	// Append writes one ledger entry and the matching total_points/level
	// update as a single transaction.
	Append(ctx context.Context, userID uuid.UUID, delta int, sourceType, sourceID, description string) (*model.PointsLedgerEntry, error)
	// AppendTx is the same write against an already-open unit of work, for
	// flows (check-in, badge award) that need the entry inside a larger
	// transaction. It does not publish events; the owner of the transaction
	// publishes after commit.
	AppendTx(ctx context.Context, tx repository.Repos, userID uuid.UUID, delta int, sourceType, sourceID, description string) (*model.PointsLedgerEntry, error)
	CurrentBalance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsLedgerEntry, error)
	// Reconcile replays the ledger and checks it against the denormalized
	// balance. A mismatch is a bug, never a valid state.
	Reconcile(ctx context.Context, userID uuid.UUID) (int, error)
}

type ledgerService struct {
	uow       repository.UnitOfWork
	publisher event.Publisher
}

func NewLedgerService(uow repository.UnitOfWork, publisher event.Publisher) LedgerService {
	return &ledgerService{uow: uow, publisher: publisher}
}

func (s *ledgerService) Append(ctx context.Context, userID uuid.UUID, delta int, sourceType, sourceID, description string) (*model.PointsLedgerEntry, error) {
	var entry *model.PointsLedgerEntry
	err := s.uow.Do(ctx, func(tx repository.Repos) error {
		var txErr error
		entry, txErr = s.AppendTx(ctx, tx, userID, delta, sourceType, sourceID, description)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishLedgerChanged(ctx, event.LedgerChanged{UserID: userID, Balance: entry.BalanceAfter})
	return entry, nil
}

func (s *ledgerService) AppendTx(ctx context.Context, tx repository.Repos, userID uuid.UUID, delta int, sourceType, sourceID, description string) (*model.PointsLedgerEntry, error) {
	// The row lock serializes appends per user; concurrent appends for
	// different users do not contend.
	balance, err := tx.Users().BalanceForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &model.PointsLedgerEntry{
		UserID:       userID,
		Delta:        delta,
		BalanceAfter: balance + delta,
		SourceType:   sourceType,
		SourceID:     sourceID,
		Description:  description,
		OccurredAt:   time.Now(),
	}
	if err := tx.Ledger().Insert(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Users().SetPoints(ctx, userID, entry.BalanceAfter, LevelFor(entry.BalanceAfter)); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *ledgerService) CurrentBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.uow.Users().FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TotalPoints, nil
}

func (s *ledgerService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsLedgerEntry, error) {
	return s.uow.Ledger().ListByUser(ctx, userID, limit, offset)
}

func (s *ledgerService) Reconcile(ctx context.Context, userID uuid.UUID) (int, error) {
	sum, err := s.uow.Ledger().SumDeltas(ctx, userID)
	if err != nil {
		return 0, err
	}
	user, err := s.uow.Users().FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if sum != user.TotalPoints {
		return sum, fmt.Errorf("user %s: ledger sum %d vs total_points %d: %w",
			userID, sum, user.TotalPoints, apperror.ErrLedgerOutOfSync)
	}
	return sum, nil
}
