package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Column describes one column of an import template.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     string `json:"example,omitempty"`
}

// WriteCSVTemplate writes the header row plus one example row.
func WriteCSVTemplate(w io.Writer, cols []Column) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	example := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
		example[i] = c.Example
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.Write(example); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSXTemplate writes a workbook with the header on sheetName (required
// columns marked " *") and an Instructions sheet listing every column.
func WriteXLSXTemplate(w io.Writer, sheetName string, cols []Column) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		text, style := col.Name, headerStyle
		if col.Required {
			text, style = col.Name+" *", requiredStyle
		}
		f.SetCellValue(sheetName, cell, text)
		f.SetCellStyle(sheetName, cell, cell, style)

		if col.Example != "" {
			ex, _ := excelize.CoordinatesToCellName(i+1, 2)
			f.SetCellValue(sheetName, ex, col.Example)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	const info = "Instructions"
	if _, err := f.NewSheet(info); err != nil {
		return err
	}
	f.SetCellValue(info, "A1", fmt.Sprintf("%s import", sheetName))
	f.SetCellValue(info, "A2", "Columns marked * are required. The picture column accepts a URL, a data URI, a /path, a file name or a HYPERLINK formula.")
	f.SetCellValue(info, "A4", "Column")
	f.SetCellValue(info, "B4", "Description")
	f.SetCellValue(info, "C4", "Required")
	for i, col := range cols {
		row := i + 5
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue(info, fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue(info, fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue(info, fmt.Sprintf("C%d", row), required)
	}
	f.SetColWidth(info, "A", "A", 22)
	f.SetColWidth(info, "B", "B", 70)

	idx, err := f.GetSheetIndex(sheetName)
	if err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}
