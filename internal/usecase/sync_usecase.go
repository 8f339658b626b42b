package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/logger"
	"geo-attendance-backend/internal/model"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const CodeSyncFailed = "SYNC_FAILED"

// SyncItem is one record captured offline. Timestamps are RFC 3339.
// Everything is validated per item so one bad record cannot fail the batch.
type SyncItem struct {
	LocalID           string         `json:"local_id"`
	LocationID        string         `json:"location_id"`
	CheckInTime       string         `json:"check_in_time"`
	CheckInLatitude   *float64       `json:"check_in_latitude"`
	CheckInLongitude  *float64       `json:"check_in_longitude"`
	CheckInNote       string         `json:"check_in_note"`
	CheckOutTime      *string        `json:"check_out_time"`
	CheckOutLatitude  *float64       `json:"check_out_latitude"`
	CheckOutLongitude *float64       `json:"check_out_longitude"`
	CheckOutNote      *string        `json:"check_out_note"`
	WorkDuration      *int           `json:"work_duration"`
	Status            string         `json:"status"`
	DeviceInfo        datatypes.JSON `json:"device_info"`

	// decodeErr is set when the item itself could not be decoded.
	decodeErr error
}

type SyncedRecord struct {
	LocalID  string    `json:"local_id"`
	ServerID uuid.UUID `json:"server_id"`
}

type SyncError struct {
	LocalID string `json:"local_id"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// SyncResult partitions the batch: every input item appears exactly once,
// in Synced or in Errors, in input order.
type SyncResult struct {
	Synced []SyncedRecord `json:"synced"`
	Errors []SyncError    `json:"errors"`
}

// syncOutcome is the result of one item: a server id, or an error whose
// code tells the client what kind of failure it was.
type syncOutcome struct {
	localID  string
	serverID uuid.UUID
	err      *apperror.AppError
}

// DecodeSyncBatch parses {"records": [...]}. A missing, malformed or empty
// records array is ErrEmptyBatch; a malformed element only fails itself.
func DecodeSyncBatch(body []byte) ([]SyncItem, error) {
	var envelope struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil || len(envelope.Records) == 0 {
		return nil, apperror.ErrEmptyBatch
	}

	items := make([]SyncItem, 0, len(envelope.Records))
	for _, raw := range envelope.Records {
		var it SyncItem
		if err := sonic.Unmarshal(raw, &it); err != nil {
			// salvage the key so the client can match the error
			var key struct {
				LocalID string `json:"local_id"`
			}
			_ = sonic.Unmarshal(raw, &key)
			it = SyncItem{LocalID: key.LocalID, decodeErr: err}
		}
		items = append(items, it)
	}
	return items, nil
}

// SyncUsecase reconciles offline batches. The batch runs in one
// transaction; each item runs in its own savepoint so a failed insert
// is undone without aborting the others.
type SyncUsecase struct {
	deps       Deps
	activities *ActivityLogger
}

func NewSyncUsecase(deps Deps) *SyncUsecase {
	deps = deps.withDefaults()
	return &SyncUsecase{deps: deps, activities: NewActivityLogger(deps.Activities)}
}

// BulkSync stores items for userID. Items already stored (same user and
// check-in instant) come back as DUPLICATE_RECORD, so retrying a batch is
// safe. Only infrastructure failures, including ctx expiry, fail the call,
// and then nothing from the batch is kept.
func (u *SyncUsecase) BulkSync(ctx context.Context, userID uuid.UUID, items []SyncItem) (*SyncResult, error) {
	if len(items) == 0 {
		return nil, apperror.ErrEmptyBatch
	}

	outcomes := make([]syncOutcome, 0, len(items))
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			o, err := u.syncOne(ctx, tx, userID, &items[i])
			if err != nil {
				return err
			}
			outcomes = append(outcomes, o)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk sync: %w", err)
	}

	res := &SyncResult{Synced: []SyncedRecord{}, Errors: []SyncError{}}
	for _, o := range outcomes {
		if o.err != nil {
			res.Errors = append(res.Errors, SyncError{LocalID: o.localID, Code: o.err.Code, Error: o.err.Message})
			u.deps.Metrics.SyncItem(o.err.Code)
			continue
		}
		res.Synced = append(res.Synced, SyncedRecord{LocalID: o.localID, ServerID: o.serverID})
		u.deps.Metrics.SyncItem("synced")
	}

	logger.Info("bulk sync",
		zap.String("user_id", userID.String()),
		zap.Int("items", len(items)),
		zap.Int("synced", len(res.Synced)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// syncOne returns a non-nil error only when the whole batch must abort.
func (u *SyncUsecase) syncOne(ctx context.Context, tx *gorm.DB, userID uuid.UUID, it *SyncItem) (syncOutcome, error) {
	out := syncOutcome{localID: it.LocalID}

	rec, appErr := u.buildRecord(userID, it)
	if appErr != nil {
		out.err = appErr
		return out, nil
	}

	err := tx.Transaction(func(sp *gorm.DB) error {
		records := u.deps.Attendance.WithTx(sp)

		exists, err := records.ExistsByCheckIn(ctx, userID, rec.CheckInTime)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrDuplicateRecord
		}

		ok, err := u.deps.Locations.WithTx(sp).Exists(ctx, rec.LocationID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrLocationNotFound
		}

		if err := records.Create(ctx, rec); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if rec.Status == model.StatusActive {
					return apperror.ErrDuplicateSession.WithMessage("An active session already exists for %s", rec.AttendanceDate)
				}
				return apperror.ErrDuplicateRecord
			}
			return err
		}

		return u.logSynced(ctx, sp, rec)
	})
	if err == nil {
		out.serverID = rec.ID
		return out, nil
	}

	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		out.err = ae
		return out, nil
	}
	logger.Warn("sync item failed", zap.String("local_id", it.LocalID), zap.Error(err))
	out.err = &apperror.AppError{Code: CodeSyncFailed, Message: err.Error()}
	return out, nil
}

func (u *SyncUsecase) buildRecord(userID uuid.UUID, it *SyncItem) (*model.AttendanceRecord, *apperror.AppError) {
	invalid := func(format string, args ...any) *apperror.AppError {
		return apperror.ErrInvalidRecord.WithMessage(format, args...)
	}

	if it.decodeErr != nil {
		return nil, invalid("malformed record: %v", it.decodeErr)
	}
	if strings.TrimSpace(it.LocalID) == "" {
		return nil, invalid("local_id is required")
	}
	locationID, err := uuid.Parse(it.LocationID)
	if err != nil {
		return nil, invalid("location_id must be a UUID")
	}
	checkIn, err := time.Parse(time.RFC3339Nano, it.CheckInTime)
	if err != nil {
		return nil, invalid("check_in_time must be RFC 3339")
	}
	if it.CheckInLatitude == nil || it.CheckInLongitude == nil {
		return nil, invalid("check_in_latitude and check_in_longitude are required")
	}
	if !validCoordinate(*it.CheckInLatitude, *it.CheckInLongitude) {
		return nil, invalid("check-in coordinates out of range")
	}

	var checkOut *time.Time
	if it.CheckOutTime != nil && *it.CheckOutTime != "" {
		t, err := time.Parse(time.RFC3339Nano, *it.CheckOutTime)
		if err != nil {
			return nil, invalid("check_out_time must be RFC 3339")
		}
		t = t.UTC()
		checkOut = &t
	}
	if (it.CheckOutLatitude == nil) != (it.CheckOutLongitude == nil) {
		return nil, invalid("check_out_latitude and check_out_longitude go together")
	}
	if it.CheckOutLatitude != nil && !validCoordinate(*it.CheckOutLatitude, *it.CheckOutLongitude) {
		return nil, invalid("check-out coordinates out of range")
	}

	status := model.AttendanceStatus(it.Status)
	switch {
	case status == "" && checkOut != nil:
		status = model.StatusCompleted
	case status == "":
		status = model.StatusActive
	case !status.Valid():
		return nil, invalid("status must be active or completed")
	}
	if status == model.StatusCompleted && checkOut == nil {
		return nil, invalid("completed record requires check_out_time")
	}
	if status == model.StatusActive && checkOut != nil {
		return nil, invalid("active record must not have check_out_time")
	}

	day := u.deps.day(checkIn)
	rec := &model.AttendanceRecord{
		UserID:           userID,
		LocationID:       locationID,
		AttendanceDate:   day,
		CheckInTime:      checkIn.UTC(),
		CheckInLatitude:  *it.CheckInLatitude,
		CheckInLongitude: *it.CheckInLongitude,
		CheckInNote:      it.CheckInNote,
		CheckOutTime:     checkOut,
		CheckOutNote:     it.CheckOutNote,
		IsLate:           u.deps.isLate(checkIn),
		Status:           status,
		DeviceInfo:       it.DeviceInfo,
	}
	if it.CheckOutLatitude != nil {
		rec.CheckOutLatitude = float64Ptr(*it.CheckOutLatitude)
		rec.CheckOutLongitude = float64Ptr(*it.CheckOutLongitude)
	}
	if status == model.StatusActive {
		rec.ActiveDate = &day
	}
	if checkOut != nil {
		minutes := model.WorkMinutes(checkIn, *checkOut)
		if it.WorkDuration != nil {
			minutes = max(*it.WorkDuration, 0)
		}
		rec.WorkDuration = &minutes
	}
	return rec, nil
}

func (u *SyncUsecase) logSynced(ctx context.Context, tx *gorm.DB, rec *model.AttendanceRecord) error {
	activities := u.activities.WithTx(tx)
	if _, err := activities.Log(ctx, ActivityEntry{
		UserID:       rec.UserID,
		AttendanceID: rec.ID,
		Type:         model.ActivityCheckIn,
		Latitude:     float64Ptr(rec.CheckInLatitude),
		Longitude:    float64Ptr(rec.CheckInLongitude),
		Note:         rec.CheckInNote,
		At:           rec.CheckInTime,
	}, descSyncedCheckIn); err != nil {
		return err
	}
	if rec.CheckOutTime == nil {
		return nil
	}
	note := ""
	if rec.CheckOutNote != nil {
		note = *rec.CheckOutNote
	}
	_, err := activities.Log(ctx, ActivityEntry{
		UserID:       rec.UserID,
		AttendanceID: rec.ID,
		Type:         model.ActivityCheckOut,
		Latitude:     rec.CheckOutLatitude,
		Longitude:    rec.CheckOutLongitude,
		Note:         note,
		At:           *rec.CheckOutTime,
	}, descSyncedCheckOut)
	return err
}

func validCoordinate(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
