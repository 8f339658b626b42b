package repository

import (
	"context"
	"time"

	"geo-attendance-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryFilter selects a user's records. Empty dates leave that side of
// the range open; both bounds are inclusive.
type HistoryFilter struct {
	UserID    uuid.UUID
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

type AttendanceRepository interface {
	WithTx(tx *gorm.DB) AttendanceRepository
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	GetActiveByDate(ctx context.Context, userID uuid.UUID, date string) (*model.AttendanceRecord, error)
	GetActiveByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.AttendanceRecord, error)
	GetLatestByDate(ctx context.Context, userID uuid.UUID, date string) (*model.AttendanceRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.AttendanceRecord, error)
	Complete(ctx context.Context, rec *model.AttendanceRecord) error
	ExistsByCheckIn(ctx context.Context, userID uuid.UUID, checkIn time.Time) (bool, error)
	GetHistory(ctx context.Context, f HistoryFilter) ([]model.AttendanceRecord, int64, error)
	GetSummary(ctx context.Context, f HistoryFilter) (model.AttendanceSummary, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db}
}

func (r *attendanceRepository) WithTx(tx *gorm.DB) AttendanceRepository {
	return &attendanceRepository{tx}
}

func (r *attendanceRepository) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepository) GetActiveByDate(ctx context.Context, userID uuid.UUID, date string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND attendance_date = ? AND status = ?", userID, date, model.StatusActive).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) GetActiveByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.StatusActive).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) GetLatestByDate(ctx context.Context, userID uuid.UUID, date string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Scopes(withLocation).
		Where("user_id = ? AND attendance_date = ?", userID, date).
		Order("check_in_time DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Scopes(withLocation).
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Complete writes the check-out fields, guarded on the record still being
// active. A concurrent check-out that got there first yields
// gorm.ErrRecordNotFound.
func (r *attendanceRepository) Complete(ctx context.Context, rec *model.AttendanceRecord) error {
	res := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("id = ? AND status = ?", rec.ID, model.StatusActive).
		Updates(map[string]interface{}{
			"check_out_time":      rec.CheckOutTime,
			"check_out_latitude":  rec.CheckOutLatitude,
			"check_out_longitude": rec.CheckOutLongitude,
			"check_out_note":      rec.CheckOutNote,
			"work_duration":       rec.WorkDuration,
			"status":              model.StatusCompleted,
			"active_date":         nil,
			"updated_at":          rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	rec.Status = model.StatusCompleted
	rec.ActiveDate = nil
	return nil
}

func (r *attendanceRepository) ExistsByCheckIn(ctx context.Context, userID uuid.UUID, checkIn time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("user_id = ? AND check_in_time = ?", userID, checkIn.UTC()).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepository) GetHistory(ctx context.Context, f HistoryFilter) ([]model.AttendanceRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Scopes(historyScope(f)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.AttendanceRecord
	q := r.db.WithContext(ctx).
		Scopes(historyScope(f), withLocation).
		Order("check_in_time DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *attendanceRepository) GetSummary(ctx context.Context, f HistoryFilter) (model.AttendanceSummary, error) {
	var s model.AttendanceSummary
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Select(`COUNT(*) AS total_days,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS present_days,
			COALESCE(SUM(CASE WHEN is_late = ? THEN 1 ELSE 0 END), 0) AS late_days,
			COALESCE(AVG(work_duration), 0) AS average_duration`, model.StatusCompleted, true).
		Scopes(historyScope(f)).
		Scan(&s).Error
	return s, err
}

func historyScope(f HistoryFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", f.UserID)
		if f.StartDate != "" {
			db = db.Where("attendance_date >= ?", f.StartDate)
		}
		if f.EndDate != "" {
			db = db.Where("attendance_date <= ?", f.EndDate)
		}
		return db
	}
}

// withLocation joins the location for presentation, including soft-deleted
// ones so old records keep their name.
func withLocation(db *gorm.DB) *gorm.DB {
	return db.Preload("Location", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}
