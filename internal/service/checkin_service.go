package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/event"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/pkg/apperror"
	"lakbay.com/lakbaypoints/pkg/geo"
)

type CheckInInput struct {
	DestinationID uint
	Latitude      float64
	Longitude     float64
	Method        model.CheckInMethod
	QRToken       string
}

type CheckInResult struct {
	CheckIn   *model.CheckIn `json:"check_in"`
	NewBadges []AwardedBadge `json:"new_badges"`
}

type CheckInService interface {
	// CheckIn validates a reported position against the destination's
	// geofence, persists the check-in, credits its points and runs the badge
	// award pass.
	CheckIn(ctx context.Context, userID uuid.UUID, input CheckInInput) (*CheckInResult, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CheckIn, error)
}

type checkInService struct {
	uow       repository.UnitOfWork
	ledger    LedgerService
	awards    AwardService
	publisher event.Publisher

	rdb           *redis.Client
	rateLimit     time.Duration
	defaultRadius float64
}

func NewCheckInService(
	uow repository.UnitOfWork,
	ledger LedgerService,
	awards AwardService,
	publisher event.Publisher,
	rdb *redis.Client,
	rateLimit time.Duration,
	defaultRadiusM float64,
) CheckInService {
	return &checkInService{
		uow:           uow,
		ledger:        ledger,
		awards:        awards,
		publisher:     publisher,
		rdb:           rdb,
		rateLimit:     rateLimit,
		defaultRadius: defaultRadiusM,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, userID uuid.UUID, input CheckInInput) (*CheckInResult, error) {
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return nil, apperror.ErrInvalidCoordinates
	}

	destination, err := s.uow.Destinations().FindByID(ctx, input.DestinationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if !destination.Active {
		return nil, apperror.ErrNotFound
	}

	// QR mismatch is a hard rejection regardless of distance.
	if input.Method == model.MethodQRCode && input.QRToken != destination.QRCode {
		return nil, apperror.ErrInvalidQRToken
	}

	distance := geo.Distance(input.Latitude, input.Longitude, destination.Latitude, destination.Longitude)
	radius := destination.VisitRadiusM
	if radius <= 0 {
		radius = s.defaultRadius
	}
	// Exactly at the radius is still inside the geofence.
	if distance > radius {
		return nil, apperror.ErrOutOfRange
	}

	if ok, err := s.allowRate(ctx, userID); err != nil {
		log.Printf("rate limit check failed for user %s: %v", userID, err)
	} else if !ok {
		return nil, apperror.ErrRateLimitExceeded
	}

	base := destination.BasePoints
	bonus := 0
	if destination.BonusMultiplier > 1 {
		bonus = int(float64(base) * (destination.BonusMultiplier - 1))
	}

	now := time.Now()
	checkIn := &model.CheckIn{
		UserID:         userID,
		DestinationID:  destination.ID,
		Method:         input.Method,
		ReportedLat:    input.Latitude,
		ReportedLon:    input.Longitude,
		DistanceMeters: distance,
		PointsEarned:   base,
		BonusPoints:    bonus,
		Verified:       true,
		CheckedInAt:    now,
		CheckInDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}

	// Check-in row and its ledger credit land in one transaction; the daily
	// unique index rejects the duplicate inside it.
	var entry *model.PointsLedgerEntry
	err = s.uow.Do(ctx, func(tx repository.Repos) error {
		if txErr := tx.CheckIns().Create(ctx, checkIn); txErr != nil {
			return txErr
		}
		var txErr error
		entry, txErr = s.ledger.AppendTx(ctx, tx, userID, base+bonus,
			model.SourceCheckIn, fmt.Sprint(checkIn.ID), "Check-in at "+destination.Name)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishLedgerChanged(ctx, event.LedgerChanged{UserID: userID, Balance: entry.BalanceAfter})

	newBadges, err := s.awards.EvaluateAndAward(ctx, userID)
	if err != nil {
		// The check-in itself is committed; a failed award pass is reported
		// but the next pass will pick the badges up.
		log.Printf("award pass failed after check-in %d for user %s: %v", checkIn.ID, userID, err)
	}

	checkIn.Destination = *destination
	return &CheckInResult{CheckIn: checkIn, NewBadges: newBadges}, nil
}

// allowRate guards against rapid-fire submissions with a redis SetNX lock.
// Without redis the guard is disabled; the daily unique index still holds.
func (s *checkInService) allowRate(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.rdb == nil || s.rateLimit <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("rate_limit:checkin:%s", userID.String())
	return s.rdb.SetNX(ctx, key, "locked", s.rateLimit).Result()
}

func (s *checkInService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CheckIn, error) {
	return s.uow.CheckIns().ListByUser(ctx, userID, limit, offset)
}
