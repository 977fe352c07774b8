package employee

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")

// ImportRow is one parsed spreadsheet line. Line is 1-based and counts the
// header, matching what a user sees in Excel.
type ImportRow struct {
	Line    int
	ID      string
	Name    string
	Part    string
	Group   string
	Company string
}

// headerAliases maps normalized header text onto the column it fills.
var headerAliases = map[string]string{
	"id":             "id",
	"employee id":    "id",
	"ma nhan vien":   "id",
	"ma nv":          "id",
	"name":           "name",
	"full name":      "name",
	"ho va ten":      "name",
	"ho ten":         "name",
	"part":           "part",
	"bo phan":        "part",
	"group":          "group",
	"nhom":           "group",
	"company":        "company",
	"cong ty":        "company",
	"employer":       "company",
	"employee name":  "name",
	"employee group": "group",
}

// ParseSpreadsheet reads the first worksheet of an .xlsx or legacy .xls file.
// Columns are found by header text; ID and Name are required.
func ParseSpreadsheet(r io.Reader, filename string) ([]ImportRow, error) {
	rows, err := readRowsFromSpreadsheet(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}

	columns := map[string]int{"id": -1, "name": -1, "part": -1, "group": -1, "company": -1}
	for i, header := range rows[0] {
		if col, ok := headerAliases[FoldSearch(header)]; ok && columns[col] == -1 {
			columns[col] = i
		}
	}
	for _, required := range []string{"id", "name"} {
		if columns[required] == -1 {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidSpreadsheet, required)
		}
	}

	var out []ImportRow
	for i, row := range rows[1:] {
		rec := ImportRow{
			Line:    i + 2,
			ID:      cellValue(row, columns["id"]),
			Name:    cellValue(row, columns["name"]),
			Part:    cellValue(row, columns["part"]),
			Group:   cellValue(row, columns["group"]),
			Company: normalizeCompany(cellValue(row, columns["company"])),
		}
		if rec.ID == "" && rec.Name == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func readRowsFromSpreadsheet(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("no worksheet found")
		}
		rows := workbook.ReadAllCells(100000)
		if len(rows) == 0 {
			return nil, errors.New("worksheet is empty")
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeCompany accepts the legacy "Samsung"/"SEV" spellings for the
// primary employer. Blank stays blank so the caller can apply a default.
func normalizeCompany(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return ""
	case "primary", "samsung", "sev":
		return CompanyPrimary
	case "vendor":
		return CompanyVendor
	default:
		return strings.TrimSpace(v)
	}
}
