package usecase

import (
	"context"
	"time"

	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	descCheckedIn      = "Checked in"
	descCheckedOut     = "Checked out"
	descSyncedCheckIn  = "Check-in synced from offline device"
	descSyncedCheckOut = "Check-out synced from offline device"
)

// ActivityEntry is one audit fact to append.
type ActivityEntry struct {
	UserID       uuid.UUID
	AttendanceID uuid.UUID
	Type         model.ActivityType
	Latitude     *float64
	Longitude    *float64
	Note         string
	At           time.Time
}

// ActivityLogger appends to the activity trail. It runs inside the caller's
// transaction so the entry commits or rolls back with the state change it
// describes.
type ActivityLogger struct {
	repo repository.ActivityRepository
}

func NewActivityLogger(repo repository.ActivityRepository) *ActivityLogger {
	return &ActivityLogger{repo: repo}
}

func (l *ActivityLogger) WithTx(tx *gorm.DB) *ActivityLogger {
	return &ActivityLogger{repo: l.repo.WithTx(tx)}
}

// Log writes e. An empty note falls back to def.
func (l *ActivityLogger) Log(ctx context.Context, e ActivityEntry, def string) (*model.Activity, error) {
	desc := e.Note
	if desc == "" {
		desc = def
	}
	attendanceID := e.AttendanceID
	a := &model.Activity{
		UserID:       e.UserID,
		AttendanceID: &attendanceID,
		Type:         e.Type,
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		Description:  desc,
		CreatedAt:    e.At.UTC(),
	}
	if err := l.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Trail lists the activities of one attendance record, oldest first.
func (l *ActivityLogger) Trail(ctx context.Context, attendanceID uuid.UUID) ([]model.Activity, error) {
	return l.repo.ListByAttendance(ctx, attendanceID)
}

func float64Ptr(v float64) *float64 { return &v }
