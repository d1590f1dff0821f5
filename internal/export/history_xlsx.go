package export

import (
	"fmt"

	"github.com/google/uuid"
	models "github.com/pedalhub/pedalhub/internal"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Rental History"

var headers = []string{
	"Booking ID", "First Name", "Last Name", "Phone",
	"Bike ID", "Rental Hours", "Total Cost", "Status",
}

// HistoryWorkbook lays out one row per history entry below a header row.
func HistoryWorkbook(history []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header %s: %w", cell, err)
		}
	}

	for i, booking := range history {
		row := []interface{}{
			bookingID(booking),
			booking.Customer.FirstName,
			booking.Customer.LastName,
			booking.Customer.Phone,
			booking.BikeID,
			booking.RentalHours,
			booking.TotalCost,
			string(booking.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return f, nil
}

func WriteHistory(path string, history []models.Booking) error {
	f, err := HistoryWorkbook(history)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// FileExporter writes the history workbook to a fixed path.
type FileExporter struct {
	Path string
}

func (e FileExporter) Export(history []models.Booking) (string, error) {
	if err := WriteHistory(e.Path, history); err != nil {
		return "", err
	}
	return e.Path, nil
}

func bookingID(b models.Booking) string {
	if b.ID == uuid.Nil {
		return ""
	}
	return b.ID.String()
}
