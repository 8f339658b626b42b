package usecase

import (
	"testing"
	"time"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// one degree of latitude along a meridian, in meters
const metersPerDegree = 6371000 * 3.141592653589793 / 180

var wib = time.FixedZone("WIB", 7*3600)

type testEnv struct {
	db    *gorm.DB
	clock *FixedClock
	deps  Deps
	orgID uuid.UUID
	loc   *model.Location
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.Close(db) })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	clock := &FixedClock{T: time.Date(2024, 3, 1, 7, 30, 0, 0, wib)}

	locations := repository.NewLocationRepository(db)
	org, err := locations.FirstOrCreateOrganization(t.Context(), "Head Office")
	require.NoError(t, err)
	loc := &model.Location{
		OrganizationID: org.ID,
		Name:           "Monas",
		Address:        "Gambir, Jakarta",
		Latitude:       -6.175392,
		Longitude:      106.827153,
		Radius:         100,
		IsActive:       true,
	}
	require.NoError(t, locations.Create(t.Context(), loc))

	return &testEnv{
		db:    db,
		clock: clock,
		orgID: org.ID,
		loc:   loc,
		deps: Deps{
			DB:         db,
			Attendance: repository.NewAttendanceRepository(db),
			Locations:  locations,
			Activities: repository.NewActivityRepository(db),
			Clock:      clock,
			Zone:       wib,
			LateCutoff: config.Cutoff{Hour: 8},
		},
	}
}

// north returns the latitude m meters north of lat.
func north(lat, m float64) float64 {
	return lat + m/metersPerDegree
}

func (e *testEnv) addLocation(t *testing.T, name string, lat, lon float64, active bool) *model.Location {
	t.Helper()
	loc := &model.Location{
		OrganizationID: e.orgID,
		Name:           name,
		Latitude:       lat,
		Longitude:      lon,
		Radius:         100,
		IsActive:       active,
	}
	require.NoError(t, e.deps.Locations.Create(t.Context(), loc))
	return loc
}

func (e *testEnv) countRecords(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.AttendanceRecord{}).Count(&n).Error)
	return n
}

func (e *testEnv) countActivities(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Activity{}).Count(&n).Error)
	return n
}
