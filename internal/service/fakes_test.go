package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/event"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/apperror"
)

// memStore is an in-memory stand-in for the database, honoring the same
// contracts the GORM repositories get from Postgres: the daily check-in
// unique index, the is_earned compare-and-set, and transaction rollback.
type memStore struct {
	users        map[uuid.UUID]*model.User
	destinations map[uint]*model.Destination
	checkIns     []*model.CheckIn
	ledger       []*model.PointsLedgerEntry
	badges       map[uint]*model.Badge
	progress     map[progressKey]*model.UserBadgeProgress

	nextCheckInID uint
	nextLedgerID  uint

	// failLedgerInsert forces the next ledger insert to fail, for
	// all-or-nothing transaction tests.
	failLedgerInsert error
}

type progressKey struct {
	user  uuid.UUID
	badge uint
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*model.User),
		destinations: make(map[uint]*model.Destination),
		badges:       make(map[uint]*model.Badge),
		progress:     make(map[progressKey]*model.UserBadgeProgress),
	}
}

func (s *memStore) snapshot() *memStore {
	clone := newMemStore()
	for id, u := range s.users {
		cp := *u
		clone.users[id] = &cp
	}
	for id, d := range s.destinations {
		cp := *d
		clone.destinations[id] = &cp
	}
	for _, c := range s.checkIns {
		cp := *c
		clone.checkIns = append(clone.checkIns, &cp)
	}
	for _, e := range s.ledger {
		cp := *e
		clone.ledger = append(clone.ledger, &cp)
	}
	for id, b := range s.badges {
		cp := *b
		clone.badges[id] = &cp
	}
	for key, p := range s.progress {
		cp := *p
		clone.progress[key] = &cp
	}
	clone.nextCheckInID = s.nextCheckInID
	clone.nextLedgerID = s.nextLedgerID
	clone.failLedgerInsert = s.failLedgerInsert
	return clone
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.destinations = from.destinations
	s.checkIns = from.checkIns
	s.ledger = from.ledger
	s.badges = from.badges
	s.progress = from.progress
	s.nextCheckInID = from.nextCheckInID
	s.nextLedgerID = from.nextLedgerID
}

// memUow implements repository.UnitOfWork with snapshot-restore rollback.
type memUow struct {
	s *memStore
}

var _ repository.UnitOfWork = (*memUow)(nil)

func (m *memUow) Users() repository.UserRepository               { return &memUsers{s: m.s} }
func (m *memUow) Destinations() repository.DestinationRepository { return &memDestinations{s: m.s} }
func (m *memUow) CheckIns() repository.CheckInRepository         { return &memCheckIns{s: m.s} }
func (m *memUow) Ledger() repository.LedgerRepository            { return &memLedger{s: m.s} }
func (m *memUow) Badges() repository.BadgeRepository             { return &memBadges{s: m.s} }

func (m *memUow) Do(ctx context.Context, fn func(tx repository.Repos) error) error {
	before := m.s.snapshot()
	if err := fn(m); err != nil {
		m.s.restore(before)
		return err
	}
	return nil
}

// ---- users ----

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) BalanceForUpdate(ctx context.Context, id uuid.UUID) (int, error) {
	user, ok := r.s.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return user.TotalPoints, nil
}

func (r *memUsers) SetPoints(ctx context.Context, id uuid.UUID, totalPoints, level int) error {
	user, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.TotalPoints = totalPoints
	user.Level = level
	return nil
}

func (r *memUsers) TopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	for _, user := range r.s.users {
		users = append(users, *user)
	}
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			if users[j].TotalPoints > users[i].TotalPoints {
				users[i], users[j] = users[j], users[i]
			}
		}
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// ---- destinations ----

type memDestinations struct{ s *memStore }

func (r *memDestinations) Create(ctx context.Context, destination *model.Destination) error {
	cp := *destination
	r.s.destinations[destination.ID] = &cp
	return nil
}

func (r *memDestinations) FindByID(ctx context.Context, id uint) (*model.Destination, error) {
	destination, ok := r.s.destinations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *destination
	return &cp, nil
}

func (r *memDestinations) FindAll(ctx context.Context, city string, categoryID uint) ([]*model.Destination, error) {
	var result []*model.Destination
	for _, d := range r.s.destinations {
		if !d.Active {
			continue
		}
		if city != "" && d.City != city {
			continue
		}
		if categoryID != 0 && d.CategoryID != categoryID {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memDestinations) CreateCategory(ctx context.Context, category *model.Category) error {
	return nil
}

func (r *memDestinations) FindAllCategories(ctx context.Context) ([]*model.Category, error) {
	return nil, nil
}

// ---- check-ins ----

type memCheckIns struct{ s *memStore }

func (r *memCheckIns) Create(ctx context.Context, checkIn *model.CheckIn) error {
	for _, existing := range r.s.checkIns {
		if existing.UserID == checkIn.UserID &&
			existing.DestinationID == checkIn.DestinationID &&
			existing.CheckInDate.Equal(checkIn.CheckInDate) {
			return apperror.ErrAlreadyCheckedInToday
		}
	}
	r.s.nextCheckInID++
	checkIn.ID = r.s.nextCheckInID
	cp := *checkIn
	r.s.checkIns = append(r.s.checkIns, &cp)
	return nil
}

func (r *memCheckIns) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CheckIn, error) {
	var result []model.CheckIn
	for i := len(r.s.checkIns) - 1; i >= 0; i-- {
		if r.s.checkIns[i].UserID == userID {
			result = append(result, *r.s.checkIns[i])
		}
	}
	return result, nil
}

func (r *memCheckIns) forUser(userID uuid.UUID) []*model.CheckIn {
	var result []*model.CheckIn
	for _, c := range r.s.checkIns {
		if c.UserID == userID && c.Verified {
			result = append(result, c)
		}
	}
	return result
}

func (r *memCheckIns) CountVerified(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.forUser(userID))), nil
}

func (r *memCheckIns) CountDistinctDestinations(ctx context.Context, userID uuid.UUID) (int64, error) {
	seen := make(map[uint]bool)
	for _, c := range r.forUser(userID) {
		seen[c.DestinationID] = true
	}
	return int64(len(seen)), nil
}

func (r *memCheckIns) CountDistinctCategories(ctx context.Context, userID uuid.UUID) (int64, error) {
	seen := make(map[uint]bool)
	for _, c := range r.forUser(userID) {
		if d, ok := r.s.destinations[c.DestinationID]; ok {
			seen[d.CategoryID] = true
		}
	}
	return int64(len(seen)), nil
}

func (r *memCheckIns) CountAtDestinations(ctx context.Context, userID uuid.UUID, destinationIDs []uint) (int64, error) {
	wanted := make(map[uint]bool, len(destinationIDs))
	for _, id := range destinationIDs {
		wanted[id] = true
	}
	var count int64
	for _, c := range r.forUser(userID) {
		if wanted[c.DestinationID] {
			count++
		}
	}
	return count, nil
}

func (r *memCheckIns) CountInCity(ctx context.Context, userID uuid.UUID, city string) (int64, error) {
	var count int64
	for _, c := range r.forUser(userID) {
		if d, ok := r.s.destinations[c.DestinationID]; ok && d.City == city {
			count++
		}
	}
	return count, nil
}

func (r *memCheckIns) CountInCategory(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error) {
	var count int64
	for _, c := range r.forUser(userID) {
		if d, ok := r.s.destinations[c.DestinationID]; ok && d.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// ---- ledger ----

type memLedger struct{ s *memStore }

func (r *memLedger) Insert(ctx context.Context, entry *model.PointsLedgerEntry) error {
	if r.s.failLedgerInsert != nil {
		err := r.s.failLedgerInsert
		r.s.failLedgerInsert = nil
		return err
	}
	r.s.nextLedgerID++
	entry.ID = r.s.nextLedgerID
	cp := *entry
	r.s.ledger = append(r.s.ledger, &cp)
	return nil
}

func (r *memLedger) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsLedgerEntry, error) {
	var result []model.PointsLedgerEntry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			result = append(result, *r.s.ledger[i])
		}
	}
	return result, nil
}

func (r *memLedger) SumDeltas(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range r.s.ledger {
		if e.UserID == userID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (r *memLedger) SumEarned(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range r.s.ledger {
		if e.UserID == userID && e.Delta > 0 {
			sum += e.Delta
		}
	}
	return sum, nil
}

// ---- badges ----

type memBadges struct{ s *memStore }

func (r *memBadges) Create(ctx context.Context, badge *model.Badge) error {
	cp := *badge
	r.s.badges[badge.ID] = &cp
	return nil
}

func (r *memBadges) ActiveBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	for _, b := range r.s.badges {
		if b.Active {
			badges = append(badges, *b)
		}
	}
	for i := 0; i < len(badges); i++ {
		for j := i + 1; j < len(badges); j++ {
			if badges[j].ID < badges[i].ID {
				badges[i], badges[j] = badges[j], badges[i]
			}
		}
	}
	return badges, nil
}

func (r *memBadges) ProgressByUser(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error) {
	var result []model.UserBadgeProgress
	for key, p := range r.s.progress {
		if key.user == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *memBadges) UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, progress int) error {
	key := progressKey{user: userID, badge: badgeID}
	if existing, ok := r.s.progress[key]; ok {
		if existing.IsEarned {
			return nil
		}
		existing.CurrentValue = currentValue
		existing.Progress = progress
		return nil
	}
	r.s.progress[key] = &model.UserBadgeProgress{
		UserID:       userID,
		BadgeID:      badgeID,
		CurrentValue: currentValue,
		Progress:     progress,
	}
	return nil
}

func (r *memBadges) MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, pointsAwarded int, earnedAt time.Time) (bool, error) {
	key := progressKey{user: userID, badge: badgeID}
	existing, ok := r.s.progress[key]
	if !ok || existing.IsEarned {
		return false, nil
	}
	existing.IsEarned = true
	at := earnedAt
	existing.EarnedAt = &at
	existing.Progress = 100
	existing.CurrentValue = currentValue
	existing.PointsAwarded = pointsAwarded
	return true, nil
}

// recordingPublisher captures emitted events for assertions.
type recordingPublisher struct {
	ledgerChanged []event.LedgerChanged
	badgeAwarded  []event.BadgeAwarded
}

func (p *recordingPublisher) PublishLedgerChanged(_ context.Context, e event.LedgerChanged) {
	p.ledgerChanged = append(p.ledgerChanged, e)
}

func (p *recordingPublisher) PublishBadgeAwarded(_ context.Context, e event.BadgeAwarded) {
	p.badgeAwarded = append(p.badgeAwarded, e)
}

// ---- wiring helper ----

type engine struct {
	store   *memStore
	uow     *memUow
	ledger  service.LedgerService
	awards  service.AwardService
	checkin service.CheckInService
}

func newEngine() *engine {
	store := newMemStore()
	uow := &memUow{s: store}
	publisher := event.NopPublisher{}

	ledger := service.NewLedgerService(uow, publisher)
	evaluator := service.NewEvaluator(uow)
	awards := service.NewAwardService(uow, evaluator, ledger, publisher)
	checkin := service.NewCheckInService(uow, ledger, awards, publisher, nil, 0, 100)

	return &engine{
		store:   store,
		uow:     uow,
		ledger:  ledger,
		awards:  awards,
		checkin: checkin,
	}
}

func (e *engine) addUser() uuid.UUID {
	id := uuid.New()
	e.store.users[id] = &model.User{ID: id, Username: "traveler-" + id.String()[:8], Level: 1}
	return id
}

func (e *engine) addDestination(d model.Destination) uint {
	if d.ID == 0 {
		d.ID = uint(len(e.store.destinations) + 1)
	}
	if d.BonusMultiplier == 0 {
		d.BonusMultiplier = 1
	}
	d.Active = true
	cp := d
	e.store.destinations[d.ID] = &cp
	return d.ID
}

func (e *engine) addBadge(b model.Badge) uint {
	if b.ID == 0 {
		b.ID = uint(len(e.store.badges) + 1)
	}
	b.Active = true
	cp := b
	e.store.badges[b.ID] = &cp
	return b.ID
}

// addVerifiedCheckIn seeds a check-in directly, bypassing validation, dated
// daysAgo days in the past so daily dedupe never interferes.
func (e *engine) addVerifiedCheckIn(userID uuid.UUID, destinationID uint, daysAgo int) {
	at := time.Now().AddDate(0, 0, -daysAgo)
	e.store.nextCheckInID++
	e.store.checkIns = append(e.store.checkIns, &model.CheckIn{
		ID:            e.store.nextCheckInID,
		UserID:        userID,
		DestinationID: destinationID,
		Method:        model.MethodGPS,
		Verified:      true,
		CheckedInAt:   at,
		CheckInDate:   time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location()),
	})
}
