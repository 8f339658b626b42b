package usecase

import (
	"context"
	"errors"
	"fmt"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/geo"
	"geo-attendance-backend/internal/logger"
	"geo-attendance-backend/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CheckInInput struct {
	UserID     uuid.UUID
	LocationID uuid.UUID
	Latitude   float64
	Longitude  float64
	Note       string
	DeviceInfo datatypes.JSON
}

type CheckOutInput struct {
	UserID       uuid.UUID
	AttendanceID uuid.UUID
	Latitude     float64
	Longitude    float64
	Note         string
}

// AttendanceUsecase owns the per-user session lifecycle: at most one active
// session per calendar day, created by CheckIn and closed by CheckOut.
type AttendanceUsecase struct {
	deps       Deps
	activities *ActivityLogger
}

func NewAttendanceUsecase(deps Deps) *AttendanceUsecase {
	deps = deps.withDefaults()
	return &AttendanceUsecase{deps: deps, activities: NewActivityLogger(deps.Activities)}
}

// CheckIn opens today's session if the caller is inside the location's
// geofence.
func (u *AttendanceUsecase) CheckIn(ctx context.Context, in CheckInInput) (rec *model.AttendanceRecord, err error) {
	defer func() { u.deps.Metrics.CheckIn(resultLabel(err)) }()

	now := u.deps.Clock.Now()
	today := u.deps.day(now)

	err = u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := u.deps.Attendance.WithTx(tx)

		// 1. One active session per day
		if _, err := records.GetActiveByDate(ctx, in.UserID, today); err == nil {
			return apperror.ErrDuplicateSession
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find active session: %w", err)
		}

		// 2. Location must exist and be active
		loc, err := u.deps.Locations.WithTx(tx).GetActiveByID(ctx, in.LocationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrLocationNotFound
		}
		if err != nil {
			return fmt.Errorf("find location: %w", err)
		}

		// 3. Geofence
		if !geo.WithinRadius(in.Latitude, in.Longitude, loc.Latitude, loc.Longitude, loc.Radius) {
			return apperror.ErrOutOfRange
		}

		rec = &model.AttendanceRecord{
			UserID:           in.UserID,
			LocationID:       loc.ID,
			AttendanceDate:   today,
			ActiveDate:       &today,
			CheckInTime:      now.UTC(),
			CheckInLatitude:  in.Latitude,
			CheckInLongitude: in.Longitude,
			CheckInNote:      in.Note,
			IsLate:           u.deps.isLate(now),
			Status:           model.StatusActive,
			DeviceInfo:       in.DeviceInfo,
		}
		if err := records.Create(ctx, rec); err != nil {
			// a concurrent check-in won the unique index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.ErrDuplicateSession
			}
			return fmt.Errorf("create attendance: %w", err)
		}

		if _, err := u.activities.WithTx(tx).Log(ctx, ActivityEntry{
			UserID:       in.UserID,
			AttendanceID: rec.ID,
			Type:         model.ActivityCheckIn,
			Latitude:     float64Ptr(in.Latitude),
			Longitude:    float64Ptr(in.Longitude),
			Note:         in.Note,
			At:           now,
		}, descCheckedIn); err != nil {
			return fmt.Errorf("log check-in: %w", err)
		}

		rec.Location = loc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("checked in",
		zap.String("user_id", in.UserID.String()),
		zap.String("attendance_id", rec.ID.String()),
		zap.Bool("is_late", rec.IsLate),
	)
	return rec, nil
}

// CheckOut closes one of the caller's active sessions. Any active session
// may be closed, including one opened on an earlier day.
func (u *AttendanceUsecase) CheckOut(ctx context.Context, in CheckOutInput) (rec *model.AttendanceRecord, err error) {
	defer func() { u.deps.Metrics.CheckOut(resultLabel(err)) }()

	now := u.deps.Clock.Now().UTC()

	err = u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := u.deps.Attendance.WithTx(tx)

		found, err := records.GetActiveByIDAndUser(ctx, in.AttendanceID, in.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("find active session: %w", err)
		}

		minutes := model.WorkMinutes(found.CheckInTime, now)
		found.CheckOutTime = &now
		found.CheckOutLatitude = float64Ptr(in.Latitude)
		found.CheckOutLongitude = float64Ptr(in.Longitude)
		if in.Note != "" {
			note := in.Note
			found.CheckOutNote = &note
		}
		found.WorkDuration = &minutes
		found.UpdatedAt = now

		if err := records.Complete(ctx, found); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrSessionNotFound
			}
			return fmt.Errorf("complete attendance: %w", err)
		}

		if _, err := u.activities.WithTx(tx).Log(ctx, ActivityEntry{
			UserID:       in.UserID,
			AttendanceID: found.ID,
			Type:         model.ActivityCheckOut,
			Latitude:     float64Ptr(in.Latitude),
			Longitude:    float64Ptr(in.Longitude),
			Note:         in.Note,
			At:           now,
		}, descCheckedOut); err != nil {
			return fmt.Errorf("log check-out: %w", err)
		}

		rec = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("checked out",
		zap.String("user_id", in.UserID.String()),
		zap.String("attendance_id", rec.ID.String()),
		zap.Int("work_duration", *rec.WorkDuration),
	)
	return rec, nil
}

// GetToday returns the caller's most recent record for today, active or
// completed. A nil record with a nil error means there is none.
func (u *AttendanceUsecase) GetToday(ctx context.Context, userID uuid.UUID) (*model.AttendanceRecord, error) {
	rec, err := u.deps.Attendance.GetLatestByDate(ctx, userID, u.deps.day(u.deps.Clock.Now()))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find today's attendance: %w", err)
	}
	return rec, nil
}
