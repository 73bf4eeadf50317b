package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/service"
)

func TestAward_ProgressPersistedBeforeCompletion(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "Frequent Visitor",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 5,
		PointsReward:     20,
	})

	for day := 1; day <= 4; day++ {
		e.addVerifiedCheckIn(userID, destID, day)
	}

	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, newBadges)

	row := e.store.progress[progressKey{user: userID, badge: badgeID}]
	require.NotNil(t, row, "progress row is created lazily on first evaluation")
	assert.Equal(t, 80, row.Progress)
	assert.Equal(t, 4, row.CurrentValue)
	assert.False(t, row.IsEarned)
}

func TestAward_CompletionAwardsBadgeAndCreditsPoints(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "Frequent Visitor",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 5,
		PointsReward:     20,
	})

	for day := 1; day <= 5; day++ {
		e.addVerifiedCheckIn(userID, destID, day)
	}

	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	require.Len(t, newBadges, 1)
	assert.Equal(t, badgeID, newBadges[0].Badge.ID)
	assert.Equal(t, 20, newBadges[0].PointsAwarded)

	row := e.store.progress[progressKey{user: userID, badge: badgeID}]
	assert.True(t, row.IsEarned)
	assert.NotNil(t, row.EarnedAt)
	assert.Equal(t, 100, row.Progress)
	assert.Equal(t, 20, row.PointsAwarded)

	// Exactly one badge-sourced ledger entry, and the balance follows.
	entries, _ := e.ledger.History(ctx, userID, 10, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, model.SourceBadge, entries[0].SourceType)
	assert.Equal(t, 20, entries[0].Delta)

	balance, _ := e.ledger.CurrentBalance(ctx, userID)
	assert.Equal(t, 20, balance)
}

func TestAward_NoDoubleAwardOnRerun(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	e.addBadge(model.Badge{
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     10,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	first, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, second, "re-run must be a no-op")

	entries, _ := e.ledger.History(ctx, userID, 10, 0)
	assert.Len(t, entries, 1, "exactly one badge credit")
}

func TestAward_LostCompareAndSetSkipsCredit(t *testing.T) {
	// Simulates the losing side of a concurrent award: the CAS observes
	// is_earned already true and must not touch the ledger.
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     10,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	// The "other request" wins the race just before our pass awards.
	now := time.Now()
	require.NoError(t, e.uow.Badges().UpsertProgress(ctx, userID, badgeID, 1, 100))
	won, err := e.uow.Badges().MarkEarned(ctx, userID, badgeID, 1, 10, now)
	require.NoError(t, err)
	require.True(t, won)

	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, newBadges)

	entries, _ := e.ledger.History(ctx, userID, 10, 0)
	assert.Empty(t, entries, "loser must not credit points")
}

func TestAward_ReEvaluationNeverMutatesEarnedRow(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     10,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	_, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)

	before := *e.store.progress[progressKey{user: userID, badge: badgeID}]

	// More check-ins, more passes.
	e.addVerifiedCheckIn(userID, destID, 2)
	_, err = e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)

	after := *e.store.progress[progressKey{user: userID, badge: badgeID}]
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.PointsAwarded, after.PointsAwarded)
	assert.True(t, before.EarnedAt.Equal(*after.EarnedAt))
}

func TestAward_ZeroRewardBadgeEarnsWithoutLedgerEntry(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "Just Showing Up",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     0,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	require.Len(t, newBadges, 1)

	assert.True(t, e.store.progress[progressKey{user: userID, badge: badgeID}].IsEarned)
	entries, _ := e.ledger.History(ctx, userID, 10, 0)
	assert.Empty(t, entries)
}

func TestAward_FailedCreditRollsBackEarnFlag(t *testing.T) {
	// All-or-nothing: if the point credit cannot be written, the badge must
	// not stay marked earned.
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	badgeID := e.addBadge(model.Badge{
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     10,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	e.store.failLedgerInsert = errors.New("lock timeout")
	_, err := e.awards.EvaluateAndAward(ctx, userID)
	require.Error(t, err)

	row := e.store.progress[progressKey{user: userID, badge: badgeID}]
	require.NotNil(t, row)
	assert.False(t, row.IsEarned, "earn flag must roll back with the credit")

	// The next pass completes the award normally.
	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, newBadges, 1)
}

func TestAward_OneBadPayloadDoesNotBlockOthers(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	e.addBadge(model.Badge{
		ID:                 1,
		Name:               "Broken Custom",
		RequirementType:    model.RequirementCustom,
		RequirementValue:   1,
		RequirementDetails: "not json at all",
	})
	goodID := e.addBadge(model.Badge{
		ID:               2,
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     5,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	newBadges, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)
	require.Len(t, newBadges, 1)
	assert.Equal(t, goodID, newBadges[0].Badge.ID)
}

func TestAward_EventsPublishedAfterCommit(t *testing.T) {
	store := newMemStore()
	uow := &memUow{s: store}
	publisher := &recordingPublisher{}
	ledger := service.NewLedgerService(uow, publisher)
	awards := service.NewAwardService(uow, service.NewEvaluator(uow), ledger, publisher)

	e := &engine{store: store, uow: uow, ledger: ledger, awards: awards}
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})
	badgeID := e.addBadge(model.Badge{
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 1,
		PointsReward:     10,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	_, err := awards.EvaluateAndAward(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, publisher.badgeAwarded, 1)
	assert.Equal(t, badgeID, publisher.badgeAwarded[0].BadgeID)
	assert.Equal(t, 10, publisher.badgeAwarded[0].Points)

	require.Len(t, publisher.ledgerChanged, 1)
	assert.Equal(t, 10, publisher.ledgerChanged[0].Balance)
}

func TestAward_HiddenBadgeOnlyVisibleOnceEarned(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	userID := e.addUser()
	destID := e.addDestination(model.Destination{ID: 1})

	e.addBadge(model.Badge{
		ID:               1,
		Name:             "Secret Spot",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 50,
		Hidden:           true,
	})
	e.addBadge(model.Badge{
		ID:               2,
		Name:             "First Steps",
		RequirementType:  model.RequirementVisits,
		RequirementValue: 5,
	})
	e.addVerifiedCheckIn(userID, destID, 1)

	_, err := e.awards.EvaluateAndAward(ctx, userID)
	require.NoError(t, err)

	progress, err := e.awards.Progress(ctx, userID)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, uint(2), progress[0].BadgeID)
	assert.Equal(t, 20, progress[0].Progress)
}
