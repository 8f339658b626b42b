package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/metrics"
	"geo-attendance-backend/internal/middleware"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"
	"geo-attendance-backend/internal/usecase"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var wib = time.FixedZone("WIB", 7*3600)

type testServer struct {
	app   *fiber.App
	orgID uuid.UUID
	loc   *model.Location
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.Close(db) })

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

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})
	Setup(app, Deps{
		DB:         db,
		JWTSecret:  testSecret,
		Zone:       wib,
		LateCutoff: config.Cutoff{Hour: 8},
		Clock:      &usecase.FixedClock{T: time.Date(2024, 3, 1, 7, 30, 0, 0, wib)},
		Metrics:    metrics.New(),
	})
	return &testServer{app: app, orgID: org.ID, loc: loc}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"org_id":  s.orgID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) checkInBody(meters float64) fiber.Map {
	return fiber.Map{
		"location_id": s.loc.ID.String(),
		"latitude":    s.loc.Latitude + meters/(6371000*3.141592653589793/180),
		"longitude":   s.loc.Longitude,
		"note":        "morning",
		"device_info": fiber.Map{"platform": "android"},
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	// one check-in so the counter has a sample
	s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, uuid.New(), model.RoleEmployee), s.checkInBody(0))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), `attendance_checkins_total{result="ok"} 1`)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/v1/attendance/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, _ = s.do(t, http.MethodGet, "/api/v1/attendance/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckInFlow(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, uuid.New(), model.RoleEmployee)

	status, env := s.do(t, http.MethodGet, "/api/v1/attendance/today", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, s.checkInBody(150))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "OUT_OF_RANGE", env.Code)

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, s.checkInBody(50))
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Check-in successful", env.Message)

	var rec struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		IsLate   bool   `json:"is_late"`
		Location struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"location"`
		DeviceInfo map[string]string `json:"device_info"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "active", rec.Status)
	assert.False(t, rec.IsLate)
	assert.Equal(t, "Monas", rec.Location.Name)
	assert.Equal(t, "android", rec.DeviceInfo["platform"])

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, s.checkInBody(50))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DUPLICATE_SESSION", env.Code)
	assert.Equal(t, "Already checked in today", env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/check-out", tok, fiber.Map{
		"attendance_id": rec.ID,
		"latitude":      s.loc.Latitude,
		"longitude":     s.loc.Longitude,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var done struct {
		Status       string `json:"status"`
		WorkDuration int    `json:"work_duration"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &done))
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, 0, done.WorkDuration)

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/check-out", tok, fiber.Map{
		"attendance_id": rec.ID,
		"latitude":      s.loc.Latitude,
		"longitude":     s.loc.Longitude,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Code)
}

func TestCheckInValidation(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, uuid.New(), model.RoleEmployee)

	for _, body := range []fiber.Map{
		{"latitude": 1.0, "longitude": 2.0},
		{"location_id": "nope", "latitude": 1.0, "longitude": 2.0},
		{"location_id": s.loc.ID.String(), "longitude": 2.0},
		{"location_id": s.loc.ID.String(), "latitude": 95.0, "longitude": 2.0},
	} {
		status, env := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Code, env.Message)
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, fiber.Map{
		"location_id": uuid.New().String(), "latitude": 1.0, "longitude": 2.0,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "LOCATION_NOT_FOUND", env.Code)
}

func TestHistoryAndGetByID(t *testing.T) {
	s := newTestServer(t)
	owner := uuid.New()
	tok := s.token(t, owner, model.RoleEmployee)

	_, env := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", tok, s.checkInBody(0))
	var rec struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))

	status, env := s.do(t, http.MethodGet, "/api/v1/attendance/history?page=1&limit=5&start_date=2024-03-01&end_date=2024-03-01", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var hist struct {
		Records    []map[string]interface{} `json:"records"`
		Pagination usecase.Pagination       `json:"pagination"`
		Summary    model.AttendanceSummary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &hist))
	assert.Len(t, hist.Records, 1)
	assert.Equal(t, usecase.Pagination{CurrentPage: 1, PerPage: 5, TotalPages: 1, TotalRecords: 1}, hist.Pagination)
	assert.EqualValues(t, 1, hist.Summary.TotalDays)
	assert.Zero(t, hist.Summary.AverageDuration)

	status, env = s.do(t, http.MethodGet, "/api/v1/attendance/"+rec.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		LocationName string           `json:"location_name"`
		Activities   []model.Activity `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Monas", detail.LocationName)
	require.Len(t, detail.Activities, 1)
	assert.Equal(t, "morning", detail.Activities[0].Description)

	status, _ = s.do(t, http.MethodGet, "/api/v1/attendance/"+rec.ID, s.token(t, uuid.New(), model.RoleManager), nil)
	assert.Equal(t, http.StatusOK, status)

	otherStatus, other := s.do(t, http.MethodGet, "/api/v1/attendance/"+rec.ID, s.token(t, uuid.New(), model.RoleEmployee), nil)
	missingStatus, missing := s.do(t, http.MethodGet, "/api/v1/attendance/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, otherStatus)
	assert.Equal(t, missingStatus, otherStatus)
	assert.Equal(t, missing, other)
}

func TestBulkSyncEndpoint(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, uuid.New(), model.RoleEmployee)

	status, env := s.do(t, http.MethodPost, "/api/v1/attendance/bulk-sync", tok, fiber.Map{"records": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_BATCH", env.Code)

	batch := fiber.Map{"records": []fiber.Map{
		{
			"local_id":           "a",
			"location_id":        s.loc.ID.String(),
			"check_in_time":      "2024-02-01T07:45:00+07:00",
			"check_in_latitude":  s.loc.Latitude,
			"check_in_longitude": s.loc.Longitude,
			"check_out_time":     "2024-02-01T16:45:00+07:00",
		},
		{
			"local_id":          "b",
			"location_id":       s.loc.ID.String(),
			"check_in_time":     "2024-02-02T07:45:00+07:00",
			"check_in_latitude": "north",
		},
	}}

	status, env = s.do(t, http.MethodPost, "/api/v1/attendance/bulk-sync", tok, batch)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Synced 1 records", env.Message)

	var res usecase.SyncResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Synced, 1)
	assert.Equal(t, "a", res.Synced[0].LocalID)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "b", res.Errors[0].LocalID)
	assert.Equal(t, "INVALID_RECORD", res.Errors[0].Code)

	_, env = s.do(t, http.MethodPost, "/api/v1/attendance/bulk-sync", tok, batch)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Empty(t, res.Synced)
	assert.Equal(t, "DUPLICATE_RECORD", res.Errors[0].Code)
}

func TestLocationEndpoints(t *testing.T) {
	s := newTestServer(t)
	employee := s.token(t, uuid.New(), model.RoleEmployee)
	manager := s.token(t, uuid.New(), model.RoleManager)
	admin := s.token(t, uuid.New(), model.RoleAdmin)

	body := fiber.Map{"name": "Branch", "latitude": -6.2, "longitude": 106.8}
	status, env := s.do(t, http.MethodPost, "/api/v1/locations", employee, body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, env = s.do(t, http.MethodPost, "/api/v1/locations", manager, body)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created model.Location
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.EqualValues(t, model.DefaultRadius, created.Radius)

	status, env = s.do(t, http.MethodPut, "/api/v1/locations/"+created.ID.String(), manager, fiber.Map{"radius": 250})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodGet, "/api/v1/locations", employee, nil)
	require.Equal(t, http.StatusOK, status)
	var list []model.Location
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	status, env = s.do(t, http.MethodGet, "/api/v1/locations/nearby?latitude=-6.175392&longitude=106.827153&max_distance=1000", employee, nil)
	require.Equal(t, http.StatusOK, status)
	var nearby []struct {
		Name     string `json:"name"`
		Distance int64  `json:"distance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, "Monas", nearby[0].Name)

	status, env = s.do(t, http.MethodGet, "/api/v1/locations/nearby", employee, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/locations/"+s.loc.ID.String()+"/validate", employee, fiber.Map{"latitude": s.loc.Latitude, "longitude": s.loc.Longitude})
	require.Equal(t, http.StatusOK, status)
	var v usecase.LocationValidation
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.IsValid)
	assert.EqualValues(t, 0, v.Distance)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/locations/"+created.ID.String(), manager, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/locations/"+created.ID.String(), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = s.do(t, http.MethodGet, "/api/v1/locations/"+created.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "LOCATION_NOT_FOUND", env.Code)
}
