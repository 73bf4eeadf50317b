package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles the per-aggregate repositories so transactional flows can
// reach every table through one handle.
type Repos interface {
	Users() UserRepository
	Destinations() DestinationRepository
	CheckIns() CheckInRepository
	Ledger() LedgerRepository
	Badges() BadgeRepository
}

// UnitOfWork owns the transaction boundary. Do runs fn against tx-scoped
// repositories; fn returning an error rolls the whole unit back, so a caller
// can never leave a ledger entry without its balance update or a badge earn
// without its point credit.
type UnitOfWork interface {
	Repos
	Do(ctx context.Context, fn func(tx Repos) error) error
}

type gormRepos struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormRepos{db: db}
}

func (g *gormRepos) Users() UserRepository               { return &userRepository{db: g.db} }
func (g *gormRepos) Destinations() DestinationRepository { return &destinationRepository{db: g.db} }
func (g *gormRepos) CheckIns() CheckInRepository         { return &checkInRepository{db: g.db} }
func (g *gormRepos) Ledger() LedgerRepository            { return &ledgerRepository{db: g.db} }
func (g *gormRepos) Badges() BadgeRepository             { return &badgeRepository{db: g.db} }

func (g *gormRepos) Do(ctx context.Context, fn func(tx Repos) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepos{db: tx})
	})
}
