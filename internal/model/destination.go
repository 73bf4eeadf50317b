package model

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Destination struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"size:150;not null" json:"name"`
	Slug        string   `gorm:"size:170;uniqueIndex;not null" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	CategoryID  uint     `gorm:"index;not null" json:"category_id"`
	Category    Category `gorm:"constraint:OnDelete:RESTRICT" json:"category"`
	City        string   `gorm:"size:100;index" json:"city"`

	Latitude  float64 `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude float64 `gorm:"type:decimal(11,8);not null" json:"longitude"`

	// VisitRadiusM is the geofence radius in meters. Zero means "use the
	// configured default".
	VisitRadiusM float64 `gorm:"not null;default:0" json:"visit_radius_m"`
	QRCode       string  `gorm:"size:100;index" json:"-"`

	BasePoints int `gorm:"not null;default:10" json:"base_points"`
	// BonusMultiplier above 1.0 marks a promo destination; the extra share of
	// the base reward is recorded as bonus points on the check-in.
	BonusMultiplier float64 `gorm:"not null;default:1" json:"bonus_multiplier"`

	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
