package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"parklot/internal/clock"
	"parklot/internal/config"
	"parklot/internal/database"
	"parklot/internal/models"
	"parklot/internal/report"
	"parklot/internal/repository"
	"parklot/internal/schedule"
	"parklot/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientKey = "client-key"
	otherKey  = "other-key"
	adminKey  = "admin-key"
)

var testNow = time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		HTTP: config.APIHTTPConfig{Port: 0},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: clientKey, Name: "Client One", HolderID: "holder-1", Role: "client"},
				{Key: otherKey, Name: "Client Two", HolderID: "holder-2", Role: "client"},
				{Key: adminKey, Name: "Operator", HolderID: "admin-1", Role: "admin"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 1000, Burst: 1000},
	}
}

type testEnv struct {
	server *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seeds := []config.FloorSeed{
		{
			FloorNumber: 0,
			Name:        "Ground",
			Slots: []config.SlotSeed{
				{Number: "A-01", VehicleType: models.VehicleTypeTwoWheeler},
				{Number: "A-02", VehicleType: models.VehicleTypeFourWheeler},
				{Number: "A-03", VehicleType: models.VehicleTypeFourWheeler},
			},
		},
	}
	require.NoError(t, db.SyncCatalog(t.Context(), seeds))

	cache := repository.NewMemoryCache(time.Minute)
	rates := schedule.Rates(models.DefaultHourlyRates)
	clk := clock.NewFixed(testNow)

	reservations := service.NewReservationService(
		db, db, cache, rates, nil, clk,
		models.MaxReservationDurationHours*time.Hour, &logger)
	catalog := service.NewCatalogService(db, db, cache, &logger)
	reporter := report.NewReporter(db, t.TempDir(), &logger)

	return &testEnv{
		server: NewServer(testAPIConfig(), reservations, catalog, reporter, &logger),
	}
}

func (e *testEnv) do(t *testing.T, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func createBody(slotID int64, startHour, endHour int) string {
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf(`{"slot_id":%d,"vehicle_number":"KA05MH1234","start_time":%q,"end_time":%q}`,
		slotID,
		day.Add(time.Duration(startHour)*time.Hour).Format(time.RFC3339),
		day.Add(time.Duration(endHour)*time.Hour).Format(time.RFC3339))
}

func decodeReservation(t *testing.T, rec *httptest.ResponseRecorder) models.Reservation {
	t.Helper()
	var res models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/reservations", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reservations", "wrong-key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndGetReservation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeReservation(t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "holder-1", created.HolderID)
	assert.Equal(t, float64(60), created.Cost)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", created.ID), clientKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeReservation(t, rec)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateReservationConflict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Touching windows on the same slot conflict.
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", otherKey, createBody(2, 12, 14))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A different slot is free.
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", otherKey, createBody(3, 12, 14))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateReservationValidation(t *testing.T) {
	env := newTestEnv(t)

	// start == end
	rec := env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 10))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// malformed body
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, `{"slot_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown slot
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(99, 10, 12))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReservationAccessControl(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeReservation(t, rec)

	path := fmt.Sprintf("/api/v1/reservations/%d", created.ID)

	rec = env.do(t, http.MethodGet, path, otherKey, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, path, adminKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelReservation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeReservation(t, rec)

	path := fmt.Sprintf("/api/v1/reservations/%d", created.ID)

	rec = env.do(t, http.MethodDelete, path, clientKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decodeReservation(t, rec)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Greater(t, cancelled.Version, created.Version)

	// Cancelling again conflicts.
	rec = env.do(t, http.MethodDelete, path, clientKey, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The slot is rebookable for the same window.
	rec = env.do(t, http.MethodPost, "/api/v1/reservations", otherKey, createBody(2, 10, 12))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListReservations(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12)).Code)
	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(3, 14, 16)).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/reservations", clientKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Reservations, 2)

	// A client cannot list another holder's reservations.
	rec = env.do(t, http.MethodGet, "/api/v1/reservations?holder_id=holder-1", otherKey, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin can.
	rec = env.do(t, http.MethodGet, "/api/v1/reservations?holder_id=holder-1", adminKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAvailableSlots(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12)).Code)

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	query := fmt.Sprintf("/api/v1/slots/available?start=%s&end=%s",
		day.Add(10*time.Hour).Format(time.RFC3339), day.Add(12*time.Hour).Format(time.RFC3339))

	rec := env.do(t, http.MethodGet, query, clientKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slots []models.Slot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 2)
	for _, slot := range resp.Slots {
		assert.NotEqual(t, int64(2), slot.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/slots/available?start=bogus&end=bogus", clientKey, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)

	floorBody := `{"name":"First","floor_number":1}`
	rec := env.do(t, http.MethodPost, "/api/v1/floors", clientKey, floorBody)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/floors", adminKey, floorBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var floor models.Floor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &floor))

	slotBody := fmt.Sprintf(`{"floor_id":%d,"number":"B-01","vehicle_type":"two_wheeler"}`, floor.ID)
	rec = env.do(t, http.MethodPost, "/api/v1/slots", adminKey, slotBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate slot number on the same floor conflicts.
	rec = env.do(t, http.MethodPost, "/api/v1/slots", adminKey, slotBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/floors", clientKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Floors []models.Floor `json:"floors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Floors, 2)
}

func TestReservationReport(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/api/v1/reservations", clientKey, createBody(2, 10, 12)).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/reports/reservations?from=2026-09-10&to=2026-09-10", clientKey, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reports/reservations?from=2026-09-10&to=2026-09-10", adminKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = env.do(t, http.MethodGet, "/api/v1/reports/reservations?from=bogus", adminKey, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
