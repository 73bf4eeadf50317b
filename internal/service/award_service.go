package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"lakbay.com/lakbaypoints/internal/event"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
)

// AwardedBadge is what a single award pass hands back to the caller, which
// may use it to drive notifications.
type AwardedBadge struct {
	Badge         model.Badge `json:"badge"`
	PointsAwarded int         `json:"points_awarded"`
	EarnedAt      time.Time   `json:"earned_at"`
}

type AwardService interface {
	// EvaluateAndAward scores every active badge the user has not yet
	// earned, persists progress, and atomically awards the completed ones.
	// Safe to re-run at any time: awards are gated on is_earned = false.
	EvaluateAndAward(ctx context.Context, userID uuid.UUID) ([]AwardedBadge, error)
	// Progress returns the user's per-badge progress, including active
	// badges the user has never been evaluated against. Hidden badges only
	// appear once earned.
	Progress(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error)
}

type awardService struct {
	uow       repository.UnitOfWork
	evaluator *Evaluator
	ledger    LedgerService
	publisher event.Publisher
}

func NewAwardService(uow repository.UnitOfWork, evaluator *Evaluator, ledger LedgerService, publisher event.Publisher) AwardService {
	return &awardService{
		uow:       uow,
		evaluator: evaluator,
		ledger:    ledger,
		publisher: publisher,
	}
}

func (s *awardService) EvaluateAndAward(ctx context.Context, userID uuid.UUID) ([]AwardedBadge, error) {
	badges, err := s.uow.Badges().ActiveBadges(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.uow.Badges().ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(existing))
	for _, p := range existing {
		if p.IsEarned {
			earned[p.BadgeID] = true
		}
	}

	var newlyEarned []AwardedBadge
	for _, badge := range badges {
		if earned[badge.ID] {
			continue
		}

		currentValue, err := s.evaluator.CurrentValue(ctx, userID, badge)
		if err != nil {
			// One badge's failure must not block the rest of the pass.
			log.Printf("badge %d evaluation failed for user %s: %v", badge.ID, userID, err)
			continue
		}

		progress := ProgressPercent(currentValue, badge.RequirementValue)
		if err := s.uow.Badges().UpsertProgress(ctx, userID, badge.ID, currentValue, progress); err != nil {
			return newlyEarned, err
		}

		if !Completed(currentValue, badge.RequirementValue) {
			continue
		}

		awarded, err := s.award(ctx, userID, badge, currentValue)
		if err != nil {
			return newlyEarned, err
		}
		if awarded != nil {
			newlyEarned = append(newlyEarned, *awarded)
		}
	}

	return newlyEarned, nil
}

// award runs the all-or-nothing transition: mark earned and credit the point
// reward, or neither. The compare-and-set on is_earned makes a losing
// concurrent attempt a silent no-op.
func (s *awardService) award(ctx context.Context, userID uuid.UUID, badge model.Badge, currentValue int) (*AwardedBadge, error) {
	now := time.Now()
	var (
		won   bool
		entry *model.PointsLedgerEntry
	)

	err := s.uow.Do(ctx, func(tx repository.Repos) error {
		var txErr error
		won, txErr = tx.Badges().MarkEarned(ctx, userID, badge.ID, currentValue, badge.PointsReward, now)
		if txErr != nil {
			return txErr
		}
		if !won {
			return nil
		}
		if badge.PointsReward > 0 {
			entry, txErr = s.ledger.AppendTx(ctx, tx, userID, badge.PointsReward,
				model.SourceBadge, fmt.Sprint(badge.ID), "Badge earned: "+badge.Name)
			if txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, nil
	}

	s.publisher.PublishBadgeAwarded(ctx, event.BadgeAwarded{
		UserID:  userID,
		BadgeID: badge.ID,
		Points:  badge.PointsReward,
	})
	if entry != nil {
		s.publisher.PublishLedgerChanged(ctx, event.LedgerChanged{UserID: userID, Balance: entry.BalanceAfter})
	}

	return &AwardedBadge{Badge: badge, PointsAwarded: badge.PointsReward, EarnedAt: now}, nil
}

func (s *awardService) Progress(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error) {
	badges, err := s.uow.Badges().ActiveBadges(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.uow.Badges().ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byBadge := make(map[uint]model.UserBadgeProgress, len(rows))
	for _, row := range rows {
		byBadge[row.BadgeID] = row
	}

	result := make([]model.UserBadgeProgress, 0, len(badges))
	for _, badge := range badges {
		row, ok := byBadge[badge.ID]
		if badge.Hidden && !(ok && row.IsEarned) {
			continue
		}
		if !ok {
			// Not yet evaluated: shown as zero progress, not persisted.
			row = model.UserBadgeProgress{UserID: userID, BadgeID: badge.ID}
		}
		row.Badge = badge
		result = append(result, row)
	}

	return result, nil
}
