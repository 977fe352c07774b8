package employee_test

import (
	"bytes"
	"errors"
	"strings"

	"github.com/frahmantamala/training-tracker/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

func workbook(rows ...[]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.SetSheetRow(sheet, cell, &row)).To(Succeed())
	}
	buf, err := f.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf
}

var _ = Describe("ParseSpreadsheet", func() {
	It("maps columns by header regardless of order", func() {
		buf := workbook(
			[]interface{}{"Họ và tên", "Bộ phận", "Mã NV", "Nhóm", "Company"},
			[]interface{}{"Nguyễn An", "1P", "123", "G1", "Vendor"},
			[]interface{}{"Trần Bình", "2P", "00000456", "", ""},
		)

		rows, err := employee.ParseSpreadsheet(buf, "staff.xlsx")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))

		Expect(rows[0]).To(Equal(employee.ImportRow{
			Line: 2, ID: "123", Name: "Nguyễn An", Part: "1P", Group: "G1", Company: employee.CompanyVendor,
		}))
		Expect(rows[1].ID).To(Equal("00000456"))
		Expect(rows[1].Company).To(BeEmpty())
		Expect(rows[1].Line).To(Equal(3))
	})

	It("skips blank lines", func() {
		buf := workbook(
			[]interface{}{"ID", "Name"},
			[]interface{}{"", ""},
			[]interface{}{"7", "Chi"},
		)

		rows, err := employee.ParseSpreadsheet(buf, "staff.XLSX")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Line).To(Equal(3))
	})

	It("requires id and name columns", func() {
		buf := workbook([]interface{}{"Name", "Part"}, []interface{}{"An", "1P"})

		_, err := employee.ParseSpreadsheet(buf, "staff.xlsx")
		Expect(errors.Is(err, employee.ErrInvalidSpreadsheet)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`"id"`))
	})

	It("rejects unsupported files", func() {
		_, err := employee.ParseSpreadsheet(strings.NewReader("id,name\n1,An\n"), "staff.csv")
		Expect(errors.Is(err, employee.ErrInvalidSpreadsheet)).To(BeTrue())
	})

	It("rejects corrupt workbooks", func() {
		_, err := employee.ParseSpreadsheet(strings.NewReader("not a zip"), "staff.xlsx")
		Expect(errors.Is(err, employee.ErrInvalidSpreadsheet)).To(BeTrue())
	})
})

var _ = Describe("FoldSearch", func() {
	It("strips Vietnamese diacritics and collapses spaces", func() {
		Expect(employee.FoldSearch("  Nguyễn   Văn  Đức ")).To(Equal("nguyen van duc"))
	})

	It("matches ids and folded names", func() {
		e := &employee.Employee{ID: "00001234", Name: "Phạm Thị Hồng"}
		Expect(e.Matches("1234")).To(BeTrue())
		Expect(e.Matches("pham thi")).To(BeTrue())
		Expect(e.Matches("HỒNG")).To(BeTrue())
		Expect(e.Matches("lan")).To(BeFalse())
		Expect(e.Matches("")).To(BeTrue())
	})
})
