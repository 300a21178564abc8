package report

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubLedger struct {
	domain.Ledger
	reservations []*models.Reservation
	err          error
}

func (s *stubLedger) GetReservationsByTimeRange(_ context.Context, _, _ time.Time) ([]*models.Reservation, error) {
	return s.reservations, s.err
}

func newTestReporter(t *testing.T, ledger domain.Ledger) (*Reporter, string) {
	t.Helper()
	dir := t.TempDir()
	logger := zerolog.New(io.Discard)
	return NewReporter(ledger, dir, &logger), dir
}

func TestGenerateWritesWorkbook(t *testing.T) {
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)

	ledger := &stubLedger{reservations: []*models.Reservation{
		{
			ID:            1,
			SlotID:        3,
			HolderID:      "holder-1",
			VehicleNumber: "KA05MH1234",
			StartTime:     start.Add(10 * time.Hour),
			EndTime:       start.Add(12 * time.Hour),
			Cost:          60,
			Status:        models.StatusActive,
		},
		{
			ID:            2,
			SlotID:        4,
			HolderID:      "holder-2",
			VehicleNumber: "MH12AB4321",
			StartTime:     start.Add(14 * time.Hour),
			EndTime:       start.Add(15 * time.Hour),
			Cost:          20,
			Status:        models.StatusCancelled,
		},
	}}

	reporter, _ := newTestReporter(t, ledger)

	path, err := reporter.Generate(context.Background(), start, end)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	vehicle, err := f.GetCellValue(sheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "KA05MH1234", vehicle)

	status, err := f.GetCellValue(sheetName, "I4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, status)
}

func TestGenerateEmptyRange(t *testing.T) {
	reporter, _ := newTestReporter(t, &stubLedger{})

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	path, err := reporter.Generate(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Headers still present, no data rows.
	header, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	row3, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Empty(t, row3)
}

func TestGenerateInvalidWindow(t *testing.T) {
	reporter, _ := newTestReporter(t, &stubLedger{})

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	_, err := reporter.Generate(context.Background(), start, start)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
