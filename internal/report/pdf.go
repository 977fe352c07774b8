package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/frahmantamala/training-tracker/internal/confirmation"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/go-pdf/fpdf"
)

type pdfColumn struct {
	title string
	width float64
}

var pdfColumns = []pdfColumn{
	{"No", 10},
	{"ID", 22},
	{"Name", 50},
	{"Part", 22},
	{"Status", 20},
	{"Reason", 30},
	{"Signature", 36},
}

const (
	headerHeight = 8.0
	rowHeight    = 14.0
)

// WritePDF renders the sign-off sheet with each signature image inline.
// The core fonts are Latin-1 only, so Vietnamese text is written without
// diacritics.
func WritePDF(c *course.CourseResponse, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(c.Name, true)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(employee.StripDiacritics(s)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, text(c.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, text(fmt.Sprintf("%s to %s  |  %s  |  %s", c.StartDate, c.EndDate, c.Target, c.Status)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Signed %d, excused %d of %d (%d%%)", c.Progress.Signed, c.Progress.Excused, c.Progress.Total, c.Progress.Percent), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	drawHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	for i, a := range c.Attendance {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			drawHeader(pdf)
		}

		x, y := pdf.GetXY()
		cells := []string{
			fmt.Sprintf("%d", i+1),
			a.EmployeeID,
			text(a.Name),
			text(a.Part),
			string(a.Status),
			text(a.Reason),
		}
		for j, v := range cells {
			pdf.CellFormat(pdfColumns[j].width, rowHeight, v, "1", 0, "L", false, 0, "")
		}

		sigCol := pdfColumns[len(pdfColumns)-1]
		sigX := pdf.GetX()
		pdf.CellFormat(sigCol.width, rowHeight, "", "1", 0, "C", false, 0, "")
		if png, ok := confirmation.DecodeSignature(a.Signature); ok {
			name := "sig-" + a.EmployeeID
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
			if pdf.Ok() {
				pdf.ImageOptions(name, sigX+1, y+1, sigCol.width-2, rowHeight-2, false, opts, 0, "")
			} else {
				// unreadable image: keep the row, leave the box empty
				pdf.ClearError()
			}
		}
		pdf.SetXY(x, y+rowHeight)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func drawHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 230, 241)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, headerHeight, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
}
