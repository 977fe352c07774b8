package report

import (
	"bytes"
	"fmt"

	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/xuri/excelize/v2"
)

const (
	attendanceSheet = "Attendance"
	summarySheet    = "Summary"
)

var attendanceHeader = []interface{}{"No", "ID", "Name", "Part", "Group", "Status", "Reason", "Timestamp"}

// WriteWorkbook renders the attendance list and a summary sheet with
// progress and per-group outstanding counts.
func WriteWorkbook(c *course.CourseResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), attendanceSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeAttendance(f, c); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, c); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeAttendance(f *excelize.File, c *course.CourseResponse) error {
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := attendanceHeader
	if err := f.SetSheetRow(attendanceSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(attendanceSheet, "A1", "H1", bold); err != nil {
		return err
	}

	for i, a := range c.Attendance {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, a.EmployeeID, a.Name, a.Part, a.Group, string(a.Status), a.Reason, a.Timestamp}
		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return err
		}
	}

	for col, width := range map[string]float64{"A": 6, "B": 12, "C": 32, "D": 14, "E": 12, "F": 10, "G": 30, "H": 22} {
		if err := f.SetColWidth(attendanceSheet, col, col, width); err != nil {
			return err
		}
	}

	return f.SetPanes(attendanceSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, c *course.CourseResponse) error {
	rows := [][]interface{}{
		{"Course", c.Name},
		{"Target", c.Target},
		{"Window", c.StartDate + " - " + c.EndDate},
		{"Status", string(c.Status)},
		{"Signed", c.Progress.Signed},
		{"Excused", c.Progress.Excused},
		{"Total", c.Progress.Total},
		{"Percent", c.Progress.Percent},
		{},
		{"Group", "Outstanding"},
	}
	for _, key := range course.GroupKeys {
		rows = append(rows, []interface{}{key, c.Outstanding[key]})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}
