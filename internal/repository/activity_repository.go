package repository

import (
	"context"

	"geo-attendance-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository only appends and reads; the trail is immutable.
type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, a *model.Activity) error
	ListByAttendance(ctx context.Context, attendanceID uuid.UUID) ([]model.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{tx}
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepository) ListByAttendance(ctx context.Context, attendanceID uuid.UUID) ([]model.Activity, error) {
	var list []model.Activity
	err := r.db.WithContext(ctx).
		Where("attendance_id = ?", attendanceID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
