package model

import (
	"time"

	"github.com/google/uuid"
)

type CheckInMethod string

const (
	MethodQRCode CheckInMethod = "qr_code"
	MethodGPS    CheckInMethod = "gps"
	MethodManual CheckInMethod = "manual"
)

type CheckIn struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_checkin_daily,priority:1" json:"user_id"`
	User          User          `gorm:"foreignKey:UserID" json:"-"`
	DestinationID uint          `gorm:"not null;index;uniqueIndex:idx_checkin_daily,priority:2" json:"destination_id"`
	Destination   Destination   `gorm:"foreignKey:DestinationID" json:"destination"`
	Method        CheckInMethod `gorm:"size:20;not null" json:"method"`

	ReportedLat    float64 `gorm:"type:decimal(10,8);not null" json:"reported_lat"`
	ReportedLon    float64 `gorm:"type:decimal(11,8);not null" json:"reported_lon"`
	DistanceMeters float64 `gorm:"not null" json:"distance_meters"`

	PointsEarned int  `gorm:"not null" json:"points_earned"`
	BonusPoints  int  `gorm:"not null;default:0" json:"bonus_points"`
	Verified     bool `gorm:"not null;default:false" json:"verified"`

	CheckedInAt time.Time `gorm:"not null" json:"checked_in_at"`
	// CheckInDate is CheckedInAt truncated to a calendar date. The composite
	// unique index on (user_id, destination_id, check_in_date) is what makes
	// "one verified check-in per destination per day" hold under concurrent
	// requests; the application only translates the violation.
	CheckInDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_checkin_daily,priority:3" json:"-"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}
