// Package export renders a case summary as an Excel workbook for handoff to
// the practice's filing tools.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"casedesk/internal/domain"
)

const (
	recordSheet    = "Case Record"
	conflictsSheet = "Pending Conflicts"
)

// CaseWorkbook builds a two-sheet workbook: the flat case record and any
// unresolved field conflicts.
func CaseWorkbook(c *domain.Case, record map[string]string, conflicts []domain.FieldConflict) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), recordSheet)

	_ = f.SetCellValue(recordSheet, "A1", "Client")
	_ = f.SetCellValue(recordSheet, "B1", c.ClientName)
	_ = f.SetCellValue(recordSheet, "A2", "Case ID")
	_ = f.SetCellValue(recordSheet, "B2", c.ID.String())

	_ = f.SetCellValue(recordSheet, "A4", "Field")
	_ = f.SetCellValue(recordSheet, "B4", "Value")

	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)

	row := 5
	for _, name := range names {
		_ = f.SetCellValue(recordSheet, fmt.Sprintf("A%d", row), name)
		_ = f.SetCellValue(recordSheet, fmt.Sprintf("B%d", row), record[name])
		row++
	}

	if _, err := f.NewSheet(conflictsSheet); err != nil {
		return nil, fmt.Errorf("creating conflicts sheet: %w", err)
	}
	headers := []string{"Field", "Extracted Value", "Manual Value", "Confidence", "Recorded At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(conflictsSheet, cell, h)
	}
	r := 2
	for _, conflict := range conflicts {
		if conflict.Status != domain.ConflictStatusPending {
			continue
		}
		_ = f.SetCellValue(conflictsSheet, fmt.Sprintf("A%d", r), conflict.FieldName)
		_ = f.SetCellValue(conflictsSheet, fmt.Sprintf("B%d", r), conflict.OCRValue)
		_ = f.SetCellValue(conflictsSheet, fmt.Sprintf("C%d", r), conflict.ManualValue)
		_ = f.SetCellValue(conflictsSheet, fmt.Sprintf("D%d", r), conflict.Confidence)
		_ = f.SetCellValue(conflictsSheet, fmt.Sprintf("E%d", r), conflict.CreatedAt.Format("2006-01-02 15:04"))
		r++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
