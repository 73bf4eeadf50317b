package model

import (
	"time"

	"github.com/google/uuid"
)

// RequirementType is a closed set; the evaluator switches over it
// exhaustively so adding a type is a compile-visible change.
type RequirementType string

const (
	RequirementVisits     RequirementType = "visits"     // total verified check-ins
	RequirementPoints     RequirementType = "points"     // lifetime earned points (positive deltas only)
	RequirementCheckIns   RequirementType = "checkins"   // distinct destinations visited
	RequirementCategories RequirementType = "categories" // distinct categories visited
	RequirementCustom     RequirementType = "custom"     // rule payload in RequirementDetails
)

type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:100" json:"icon"`

	RequirementType  RequirementType `gorm:"size:20;not null" json:"requirement_type"`
	RequirementValue int             `gorm:"not null" json:"requirement_value"`
	// RequirementDetails holds the JSON rule payload for custom badges, e.g.
	// {"destination_ids":[1,2]}, {"city":"Calapan City"} or {"category_id":3}.
	RequirementDetails string `gorm:"type:text" json:"requirement_details,omitempty"`

	PointsReward int  `gorm:"not null;default:0" json:"points_reward"`
	Active       bool `gorm:"not null;default:true" json:"active"`
	Hidden       bool `gorm:"not null;default:false" json:"hidden"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadgeProgress is created lazily on first evaluation and updated on
// every pass. IsEarned only ever goes false -> true; PointsAwarded is set at
// the award moment and never changes afterward.
type UserBadgeProgress struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BadgeID uint      `gorm:"primaryKey" json:"badge_id"`
	Badge   Badge     `gorm:"foreignKey:BadgeID" json:"badge"`

	// Progress is the 0-100 percentage; CurrentValue the raw metric behind it.
	Progress     int `gorm:"not null;default:0" json:"progress"`
	CurrentValue int `gorm:"not null;default:0" json:"current_value"`

	IsEarned      bool       `gorm:"not null;default:false" json:"is_earned"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
	PointsAwarded int        `gorm:"not null;default:0" json:"points_awarded"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserBadgeProgress) TableName() string {
	return "user_badge_progress"
}
