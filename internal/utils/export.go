package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"gatepass-server/internal/models"
)

// WriteVisitorsExcel renders visitor rows into an xlsx workbook and writes
// it to w.
func WriteVisitorsExcel(w io.Writer, visitors []models.Visitor) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "Visitors"
	index, err := workbook.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"ID", "Name", "Plate Number", "Mobile", "Purpose", "Entry Time", "Status"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := workbook.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, visitor := range visitors {
		values := []interface{}{
			visitor.ID,
			visitor.VisitorName,
			visitor.PlateNumber,
			visitor.MobileNumber,
			visitor.Purpose,
			visitor.EntryTime,
			string(visitor.Status),
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := workbook.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return workbook.Write(w)
}

// WriteVisitorsPDF renders a visitor report and writes it to w.
func WriteVisitorsPDF(w io.Writer, visitors []models.Visitor, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Visitor Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, "Generated on: "+generatedAt.Format("2006-01-02 15:04:05"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	widths := []float64{30, 50, 35, 35, 40}
	headers := []string{"ID", "Name", "Plate", "Mobile", "Purpose"}

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		for i, header := range headers {
			pdf.CellFormat(widths[i], 8, header, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	writeHeader()

	for _, visitor := range visitors {
		// Break to a new page before running off the bottom
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeHeader()
		}

		plate := visitor.PlateNumber
		if plate == "" {
			plate = "-"
		}

		cells := []string{shorten(visitor.ID, 12), visitor.VisitorName, plate, visitor.MobileNumber, visitor.Purpose}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
