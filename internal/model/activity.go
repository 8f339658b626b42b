package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityCheckIn  ActivityType = "check_in"
	ActivityCheckOut ActivityType = "check_out"
)

// Activity is an append-only audit entry. There is deliberately no
// UpdatedAt: rows are never modified.
type Activity struct {
	ID           uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID    `json:"user_id" gorm:"type:char(36);not null;index"`
	AttendanceID *uuid.UUID   `json:"attendance_id" gorm:"type:char(36);index"`
	Type         ActivityType `json:"activity_type" gorm:"column:activity_type;type:varchar(30);not null"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	Description  string       `json:"description"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
}

func (Activity) TableName() string { return "activities" }

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
