package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// HistoryQuery selects a user's own records. Dates are YYYY-MM-DD, both
// optional and inclusive.
type HistoryQuery struct {
	UserID    uuid.UUID
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	PerPage      int   `json:"per_page"`
	TotalPages   int   `json:"total_pages"`
	TotalRecords int64 `json:"total_records"`
}

type HistoryResult struct {
	Records    []model.AttendanceRecord
	Pagination Pagination
	Summary    model.AttendanceSummary
}

// RecordDetail is a single record with its audit trail.
type RecordDetail struct {
	Record     *model.AttendanceRecord
	Activities []model.Activity
}

type HistoryUsecase struct {
	records    repository.AttendanceRepository
	activities *ActivityLogger
}

func NewHistoryUsecase(deps Deps) *HistoryUsecase {
	return &HistoryUsecase{records: deps.Attendance, activities: NewActivityLogger(deps.Activities)}
}

// History pages through the caller's records, newest check-in first. The
// summary covers the whole filter, not just the page.
func (u *HistoryUsecase) History(ctx context.Context, q HistoryQuery) (*HistoryResult, error) {
	if err := validateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	page, limit := normalizePage(q.Page, q.Limit)

	f := repository.HistoryFilter{
		UserID:    q.UserID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	list, total, err := u.records.GetHistory(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	summary, err := u.records.GetSummary(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("summarize history: %w", err)
	}
	if list == nil {
		list = []model.AttendanceRecord{}
	}

	return &HistoryResult{
		Records: list,
		Pagination: Pagination{
			CurrentPage:  page,
			PerPage:      limit,
			TotalPages:   totalPages(total, limit),
			TotalRecords: total,
		},
		Summary: summary,
	}, nil
}

// GetByID returns a record to its owner, or to anyone allowed to view all
// records. Every other caller gets the same error as for a missing id.
func (u *HistoryUsecase) GetByID(ctx context.Context, id uuid.UUID, who model.Identity) (*RecordDetail, error) {
	rec, err := u.records.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFoundOrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	if rec.UserID != who.UserID && !who.CanViewAll() {
		return nil, apperror.ErrNotFoundOrForbidden
	}

	trail, err := u.activities.Trail(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return &RecordDetail{Record: rec, Activities: trail}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func validateRange(start, end string) error {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse(model.DateLayout, start); err != nil {
			return apperror.Validation("start_date must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if e, err = time.Parse(model.DateLayout, end); err != nil {
			return apperror.Validation("end_date must be YYYY-MM-DD")
		}
	}
	if start != "" && end != "" && s.After(e) {
		return apperror.Validation("start_date must not be after end_date")
	}
	return nil
}
