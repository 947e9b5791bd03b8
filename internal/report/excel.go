// Package report renders operator exports of waitlist history.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anish-yen/barber-app/internal/models"
)

const servedSheet = "Served"

var servedColumns = []string{
	"Entry ID", "Customer ID", "Contact", "Guest Count",
	"Priority Level", "Joined At", "Served At", "Waited Minutes",
}

// WriteServedHistory writes served entries to w as an .xlsx workbook, one
// row per entry in the order given.
func WriteServedHistory(entries []models.WaitlistEntry, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", servedSheet)

	for i, col := range servedColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(servedSheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(servedColumns), 1)
		_ = f.SetCellStyle(servedSheet, startCell, endCell, style)
	}

	for i, e := range entries {
		row := i + 2
		servedAt := ""
		waited := ""
		if e.ServedAt != nil {
			servedAt = e.ServedAt.Format(time.RFC3339)
			waited = fmt.Sprintf("%.0f", e.ServedAt.Sub(e.JoinedAt).Minutes())
		}
		values := []interface{}{
			e.ID, e.CustomerID, e.Contact, e.GuestCount,
			e.PriorityLevel, e.JoinedAt.Format(time.RFC3339), servedAt, waited,
		}
		for j, val := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(servedSheet, cell, val); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
