package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	StatusActive    AttendanceStatus = "active"
	StatusCompleted AttendanceStatus = "completed"
)

func (s AttendanceStatus) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// DateLayout is the layout of AttendanceDate and ActiveDate.
const DateLayout = "2006-01-02"

// AttendanceRecord is one check-in/check-out session.
//
// ActiveDate mirrors AttendanceDate while the session is active and is NULL
// once completed; the unique index on (user_id, active_date) is what keeps a
// user to one active session per day even under racing requests.
type AttendanceRecord struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index;uniqueIndex:idx_attendance_user_active,priority:1;uniqueIndex:idx_attendance_user_check_in,priority:1"`
	LocationID uuid.UUID `json:"location_id" gorm:"type:char(36);not null;index"`

	AttendanceDate string  `json:"attendance_date" gorm:"type:varchar(10);not null;index"`
	ActiveDate     *string `json:"-" gorm:"type:varchar(10);uniqueIndex:idx_attendance_user_active,priority:2"`

	CheckInTime      time.Time `json:"check_in_time" gorm:"not null;uniqueIndex:idx_attendance_user_check_in,priority:2"`
	CheckInLatitude  float64   `json:"check_in_latitude"`
	CheckInLongitude float64   `json:"check_in_longitude"`
	CheckInNote      string    `json:"check_in_note"`

	CheckOutTime      *time.Time `json:"check_out_time"`
	CheckOutLatitude  *float64   `json:"check_out_latitude"`
	CheckOutLongitude *float64   `json:"check_out_longitude"`
	CheckOutNote      *string    `json:"check_out_note"`

	// WorkDuration is in whole minutes, set at check-out.
	WorkDuration *int             `json:"work_duration"`
	IsLate       bool             `json:"is_late"`
	Status       AttendanceStatus `json:"status" gorm:"type:varchar(20);not null;default:active;index"`
	DeviceInfo   datatypes.JSON   `json:"device_info,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// read-only join for presentation
	Location *Location `json:"-" gorm:"foreignKey:LocationID"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// WorkMinutes returns the elapsed whole minutes between check-in and
// check-out, never negative.
func WorkMinutes(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// AttendanceSummary aggregates a user's records over a filter.
type AttendanceSummary struct {
	TotalDays       int64   `json:"total_days" gorm:"column:total_days"`
	PresentDays     int64   `json:"present_days" gorm:"column:present_days"`
	LateDays        int64   `json:"late_days" gorm:"column:late_days"`
	AverageDuration float64 `json:"average_duration" gorm:"column:average_duration"`
}
