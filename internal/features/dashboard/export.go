package dashboard

import (
	"bytes"
	"fmt"

	"eegdash/internal/features/widget"
	"eegdash/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Layout"

var exportColumns = []string{
	"ID", "Title", "Type", "X", "Y", "Width", "Height", "Z-Order", "Minimized", "Maximized", "Popped Out",
}

func exportFilename(l widget.DashboardLayout) string {
	return utils.Slugify(l.Name, "layout") + ".xlsx"
}

// ExportLayout writes one row per widget of l, in z-order
func ExportLayout(l widget.DashboardLayout) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, w := range l.Widgets {
		row := []any{
			w.ID, w.Title, w.Type,
			w.Position.X, w.Position.Y, w.Size.Width, w.Size.Height,
			i, w.IsMinimized, w.IsMaximized, w.IsPopOut,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 15)
	}

	return f.WriteToBuffer()
}
