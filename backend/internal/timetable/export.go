package timetable

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// csvHeader matches the backend's schedule download columns.
var csvHeader = []string{"Course_Code", "Subject_Name", "Teacher", "Room", "Room_Type", "Type", "Day", "Hour"}

// WriteCSV writes rows as UTF-8 CSV with a BOM so spreadsheet tools pick up Thai text.
func WriteCSV(w io.Writer, rows []Entry) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.CourseCode, r.SubjectName, r.Teacher, r.Room, r.RoomType, r.Type, r.Day, r.Hour.Text}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName is the worksheet that WriteXLSX fills.
const SheetName = "Timetable"

// WriteXLSX writes the grid as a workbook, one merged cell per block.
func WriteXLSX(w io.Writer, title string, g Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	// 1. Title and header rows
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, "A2", g.Corner); err != nil {
		return err
	}
	for i, h := range g.Hours {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	// 2. One row per weekday; block cells merge across their span
	for i, row := range g.Rows {
		r := i + 3
		dayCell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetCellValue(SheetName, dayCell, row.Day); err != nil {
			return err
		}
		for _, c := range row.Cells {
			if c.Block == nil {
				continue
			}
			col := c.Hour - StartHour + 2
			first, _ := excelize.CoordinatesToCellName(col, r)
			last, _ := excelize.CoordinatesToCellName(col+c.Span-1, r)
			text := fmt.Sprintf("%s\n%s\n%s %s\n%s", c.Subject, c.Code, c.Room, c.Teacher, c.TypeText)
			if err := f.SetCellValue(SheetName, first, text); err != nil {
				return err
			}
			if c.Span > 1 {
				if err := f.MergeCell(SheetName, first, last); err != nil {
					return fmt.Errorf("merge %s:%s: %w", first, last, err)
				}
			}
		}
	}

	// 3. Layout
	lastCol, _ := excelize.ColumnNumberToName(len(g.Hours) + 1)
	lastCell, _ := excelize.CoordinatesToCellName(len(g.Hours)+1, len(g.Rows)+2)
	if err := f.SetCellStyle(SheetName, "A2", lastCell, style); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", lastCol, 18); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
