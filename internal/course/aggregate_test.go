package course_test

import (
	"strings"

	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Group aggregation", func() {
	var employees map[string]employee.Employee

	BeforeEach(func() {
		employees = map[string]employee.Employee{
			"00000001": {ID: "00000001", Part: "IQC 1P", Group: "N/A"},
			"00000002": {ID: "00000002", Part: "IQC 2P", Group: "N/A"},
			"00000003": {ID: "00000003", Part: "OQC 1P", Group: "N/A"},
			"00000004": {ID: "00000004", Part: "G", Group: "N/A"},
			"00000005": {ID: "00000005", Part: "tf line", Group: "g2"},
		}
	})

	Describe("CountOutstandingByTag", func() {
		has1P := func(part, _ string) bool { return strings.Contains(part, "1P") }

		It("should match outstanding records by part", func() {
			c := januaryCourse(
				course.AttendanceRecord{EmployeeID: "00000001", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "00000002", Status: course.RecordPending},
			)
			Expect(course.CountOutstandingByTag(c, employees, has1P)).To(Equal(1))
		})

		It("should return 0 for an empty attendance list", func() {
			Expect(course.CountOutstandingByTag(januaryCourse(), employees, has1P)).To(Equal(0))
		})

		It("should skip signed and excused records", func() {
			c := januaryCourse(
				course.AttendanceRecord{EmployeeID: "00000001", Status: course.RecordSigned, Signature: "s", Timestamp: "t"},
				course.AttendanceRecord{EmployeeID: "00000003", Status: course.RecordPending, Reason: "sick"},
			)
			Expect(course.CountOutstandingByTag(c, employees, has1P)).To(Equal(0))
		})

		It("should silently exclude unresolved employees", func() {
			c := januaryCourse(
				course.AttendanceRecord{EmployeeID: "99999999", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "00000003", Status: course.RecordPending},
			)
			Expect(course.CountOutstandingByTag(c, employees, func(string, string) bool { return true })).To(Equal(1))
		})
	})

	Describe("GroupPredicate", func() {
		It("should match G on group or a bare G part", func() {
			g := course.GroupPredicate("G")
			Expect(g("G", "N/A")).To(BeTrue())
			Expect(g("IQC", "g2")).To(BeTrue())
			Expect(g("GATE", "N/A")).To(BeFalse())
		})

		It("should match part codes case-insensitively", func() {
			Expect(course.GroupPredicate("TF")("tf line", "")).To(BeTrue())
			Expect(course.GroupPredicate("3P")("IQC 1P", "")).To(BeFalse())
		})

		It("should return nil for unknown keys", func() {
			Expect(course.GroupPredicate("XX")).To(BeNil())
		})
	})

	Describe("OutstandingByGroup", func() {
		It("should report every group key", func() {
			c := januaryCourse(
				course.AttendanceRecord{EmployeeID: "00000001", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "00000003", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "00000004", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "00000005", Status: course.RecordPending},
			)
			Expect(course.OutstandingByGroup(c, employees)).To(Equal(map[string]int{
				"G": 2, "1P": 2, "2P": 0, "3P": 0, "TF": 1,
			}))
		})
	})

	Describe("ComputeProgress", func() {
		It("should return zeros for an empty course", func() {
			Expect(course.ComputeProgress(januaryCourse())).To(Equal(course.Progress{}))
		})

		It("should round the signed percentage", func() {
			c := januaryCourse(
				course.AttendanceRecord{EmployeeID: "00000001", Status: course.RecordSigned},
				course.AttendanceRecord{EmployeeID: "00000002", Status: course.RecordPending, Reason: "leave"},
				course.AttendanceRecord{EmployeeID: "00000003", Status: course.RecordPending},
			)
			Expect(course.ComputeProgress(c)).To(Equal(course.Progress{Signed: 1, Excused: 1, Total: 3, Percent: 33}))
		})
	})
})
