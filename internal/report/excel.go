package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservations"

// Reporter renders reservation exports as Excel workbooks.
type Reporter struct {
	ledger     domain.Ledger
	exportPath string
	logger     *zerolog.Logger
}

func NewReporter(ledger domain.Ledger, exportPath string, logger *zerolog.Logger) *Reporter {
	return &Reporter{
		ledger:     ledger,
		exportPath: exportPath,
		logger:     logger,
	}
}

// Generate writes an Excel workbook with every reservation whose window
// starts inside [start, end] and returns the file path.
func (r *Reporter) Generate(ctx context.Context, start, end time.Time) (string, error) {
	if !start.Before(end) {
		return "", fmt.Errorf("%w: report start must be before end", domain.ErrInvalidWindow)
	}

	if err := os.MkdirAll(r.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	reservations, err := r.ledger.GetReservationsByTimeRange(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting reservations: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		start.Format("2006-01-02"), end.Format("2006-01-02")))

	r.writeHeaders(f)
	r.writeRows(f, reservations)

	_ = f.MergeCell(sheetName, "A1", "I1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "D", 16)
	_ = f.SetColWidth(sheetName, "E", "F", 20)
	_ = f.SetColWidth(sheetName, "G", "I", 12)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	filePath := filepath.Join(r.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	r.logger.Info().
		Str("file_path", filePath).
		Int("reservations", len(reservations)).
		Msg("Reservation report created")
	return filePath, nil
}

func (r *Reporter) writeHeaders(f *excelize.File) {
	headers := []string{
		"ID", "Slot ID", "Holder", "Vehicle", "Start", "End", "Hours", "Cost", "Status",
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
}

func (r *Reporter) writeRows(f *excelize.File, reservations []*models.Reservation) {
	activeStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	cancelledStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})

	for i, res := range reservations {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), res.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), res.SlotID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), res.HolderID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), res.VehicleNumber)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), res.StartTime.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), res.EndTime.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), res.Duration().Hours())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), res.Cost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), res.Status)

		statusCell := fmt.Sprintf("I%d", row)
		if res.IsCancelled() {
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, cancelledStyle)
		} else {
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, activeStyle)
		}
	}
}
