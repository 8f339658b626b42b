package handler

import (
	"fmt"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AttendanceHandler struct {
	attendance *usecase.AttendanceUsecase
	history    *usecase.HistoryUsecase
	sync       *usecase.SyncUsecase
}

func NewAttendanceHandler(attendance *usecase.AttendanceUsecase, history *usecase.HistoryUsecase, sync *usecase.SyncUsecase) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, history: history, sync: sync}
}

type CheckInRequest struct {
	LocationID string         `json:"location_id" validate:"required,uuid"`
	Latitude   *float64       `json:"latitude" validate:"required,latitude"`
	Longitude  *float64       `json:"longitude" validate:"required,longitude"`
	Note       string         `json:"note" validate:"max=500"`
	DeviceInfo datatypes.JSON `json:"device_info"`
}

type CheckOutRequest struct {
	AttendanceID string   `json:"attendance_id" validate:"required,uuid"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	Note         string   `json:"note" validate:"max=500"`
}

type locationRef struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type attendanceView struct {
	*model.AttendanceRecord
	Location *locationRef `json:"location"`
}

func newAttendanceView(r *model.AttendanceRecord) attendanceView {
	v := attendanceView{AttendanceRecord: r}
	if r.Location != nil {
		v.Location = &locationRef{Name: r.Location.Name, Address: r.Location.Address}
	}
	return v
}

type attendanceDetailView struct {
	*model.AttendanceRecord
	LocationName    string           `json:"location_name"`
	LocationAddress string           `json:"location_address"`
	Activities      []model.Activity `json:"activities"`
}

func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req CheckInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rec, err := h.attendance.CheckIn(c.UserContext(), usecase.CheckInInput{
		UserID:     who.UserID,
		LocationID: uuid.MustParse(req.LocationID),
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Note:       req.Note,
		DeviceInfo: req.DeviceInfo,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, "Check-in successful", newAttendanceView(rec))
}

func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req CheckOutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rec, err := h.attendance.CheckOut(c.UserContext(), usecase.CheckOutInput{
		UserID:       who.UserID,
		AttendanceID: uuid.MustParse(req.AttendanceID),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Note:         req.Note,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Check-out successful", rec)
}

func (h *AttendanceHandler) Today(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	rec, err := h.attendance.GetToday(c.UserContext(), who.UserID)
	if err != nil {
		return err
	}
	if rec == nil {
		return success(c, fiber.StatusOK, "", nil)
	}
	return success(c, fiber.StatusOK, "", newAttendanceView(rec))
}

func (h *AttendanceHandler) History(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	res, err := h.history.History(c.UserContext(), usecase.HistoryQuery{
		UserID:    who.UserID,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Page:      c.QueryInt("page", usecase.DefaultPage),
		Limit:     c.QueryInt("limit", usecase.DefaultLimit),
	})
	if err != nil {
		return err
	}

	records := make([]attendanceView, 0, len(res.Records))
	for i := range res.Records {
		records = append(records, newAttendanceView(&res.Records[i]))
	}
	return success(c, fiber.StatusOK, "", fiber.Map{
		"records":    records,
		"pagination": res.Pagination,
		"summary":    res.Summary,
	})
}

func (h *AttendanceHandler) GetByID(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		// a malformed id cannot exist
		return apperror.ErrNotFoundOrForbidden
	}

	detail, err := h.history.GetByID(c.UserContext(), id, who)
	if err != nil {
		return err
	}
	view := attendanceDetailView{AttendanceRecord: detail.Record, Activities: detail.Activities}
	if loc := detail.Record.Location; loc != nil {
		view.LocationName = loc.Name
		view.LocationAddress = loc.Address
	}
	if view.Activities == nil {
		view.Activities = []model.Activity{}
	}
	return success(c, fiber.StatusOK, "", view)
}

func (h *AttendanceHandler) BulkSync(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	items, err := usecase.DecodeSyncBatch(c.Body())
	if err != nil {
		return err
	}

	res, err := h.sync.BulkSync(c.UserContext(), who.UserID, items)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fmt.Sprintf("Synced %d records", len(res.Synced)), res)
}
