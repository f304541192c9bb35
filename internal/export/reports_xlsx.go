// Package export renders officer data as spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"

	"cropcare-service/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ReportsSheet = "Reports"
	SummarySheet = "Summary"
)

var reportHeader = []any{"ID", "Timestamp", "Disease", "Confidence", "Location", "Image", "Reason", "Preventive Measures"}

// WriteReportsXLSX writes every report on one sheet in creation order and a
// per-disease count on a second sheet.
func WriteReportsXLSX(w io.Writer, reports []models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		return fmt.Errorf("failed to name reports sheet: %w", err)
	}
	if err := f.SetSheetRow(ReportsSheet, "A1", &reportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Disease,
			r.Confidence,
			r.Location,
			r.Image,
			r.Reason,
			r.PreventiveMeasures,
		}
		if err := f.SetSheetRow(ReportsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(ReportsSheet, "A1", "H1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(ReportsSheet, "A", "H", 22); err != nil {
		return err
	}

	if err := writeSummary(f, reports, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, reports []models.Report, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	counts := map[string]int{}
	for _, r := range reports {
		counts[r.Disease]++
	}
	diseases := make([]string, 0, len(counts))
	for d := range counts {
		diseases = append(diseases, d)
	}
	sort.Slice(diseases, func(i, j int) bool {
		if counts[diseases[i]] != counts[diseases[j]] {
			return counts[diseases[i]] > counts[diseases[j]]
		}
		return diseases[i] < diseases[j]
	})

	header := []any{"Disease", "Reports"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}
	for i, d := range diseases {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{d, counts[d]}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "A", 32)
}
