package usecase

import (
	"errors"
	"time"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/metrics"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"gorm.io/gorm"
)

// Deps is what the attendance usecases share. Zone decides which calendar
// day "today" is; LateCutoff is read in that zone.
type Deps struct {
	DB         *gorm.DB
	Attendance repository.AttendanceRepository
	Locations  repository.LocationRepository
	Activities repository.ActivityRepository
	Clock      Clock
	Zone       *time.Location
	LateCutoff config.Cutoff
	Metrics    *metrics.Registry
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Zone == nil {
		d.Zone = time.Local
	}
	if d.LateCutoff == (config.Cutoff{}) {
		d.LateCutoff = config.Cutoff{Hour: 8}
	}
	return d
}

// day returns t's calendar day in the app zone.
func (d Deps) day(t time.Time) string {
	return t.In(d.Zone).Format(model.DateLayout)
}

func (d Deps) isLate(t time.Time) bool {
	local := t.In(d.Zone)
	return local.After(d.LateCutoff.On(local))
}

// resultLabel turns an outcome into a metrics label.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "error"
}
