package course_test

import (
	"time"

	"github.com/frahmantamala/training-tracker/internal/course"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func januaryCourse(records ...course.AttendanceRecord) course.Course {
	return course.Course{
		ID:         "c-jan",
		Name:       "Fire safety",
		Start:      date("2024-01-01"),
		End:        date("2024-01-31"),
		Target:     "Primary",
		IsEnabled:  true,
		Attendance: records,
	}
}

var _ = Describe("Course lifecycle", func() {
	Describe("DeriveStatus", func() {
		pendingA := course.AttendanceRecord{EmployeeID: "A", Status: course.RecordPending}
		signedA := course.AttendanceRecord{EmployeeID: "A", Status: course.RecordSigned, Timestamp: "08:00:00 01/10/2024", Signature: "data:image/png;base64,AAAA"}

		It("should be Opening inside the window", func() {
			Expect(course.DeriveStatus(januaryCourse(pendingA), date("2024-01-15"))).To(Equal(course.StatusOpening))
		})

		It("should be Pending after the end date", func() {
			Expect(course.DeriveStatus(januaryCourse(pendingA), date("2024-02-01"))).To(Equal(course.StatusPending))
		})

		It("should be Plan before the start date", func() {
			Expect(course.DeriveStatus(januaryCourse(pendingA), date("2023-12-31"))).To(Equal(course.StatusPlan))
		})

		It("should treat the whole end day as open", func() {
			lateEvening := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
			Expect(course.DeriveStatus(januaryCourse(pendingA), lateEvening)).To(Equal(course.StatusOpening))
		})

		It("should compare dates in the caller's location", func() {
			hcm := time.FixedZone("ICT", 7*3600)
			// 2024-02-01 01:00 in Ho Chi Minh is still January 31 in UTC.
			now := time.Date(2024, 2, 1, 1, 0, 0, 0, hcm)
			Expect(course.DeriveStatus(januaryCourse(pendingA), now)).To(Equal(course.StatusPending))
			Expect(course.DeriveStatus(januaryCourse(pendingA), now.UTC())).To(Equal(course.StatusOpening))
		})

		It("should be Closed once every record is signed, whatever the date", func() {
			c := januaryCourse(signedA)
			for _, now := range []string{"2023-06-01", "2024-01-15", "2025-06-01"} {
				Expect(course.DeriveStatus(c, date(now))).To(Equal(course.StatusClosed))
			}
		})

		It("should count an excused pending record as complete", func() {
			c := januaryCourse(course.AttendanceRecord{EmployeeID: "A", Status: course.RecordPending, Reason: "sick leave"})
			Expect(course.DeriveStatus(c, date("2024-01-15"))).To(Equal(course.StatusClosed))
		})

		It("should ignore whitespace-only reasons", func() {
			c := januaryCourse(course.AttendanceRecord{EmployeeID: "A", Status: course.RecordPending, Reason: "   "})
			Expect(course.DeriveStatus(c, date("2024-01-15"))).To(Equal(course.StatusOpening))
		})

		It("should never close a course with an empty attendance list", func() {
			c := januaryCourse()
			Expect(course.DeriveStatus(c, date("2023-12-01"))).To(Equal(course.StatusPlan))
			Expect(course.DeriveStatus(c, date("2024-01-15"))).To(Equal(course.StatusOpening))
			Expect(course.DeriveStatus(c, date("2024-03-01"))).To(Equal(course.StatusPending))
		})

		It("should stay open while one record is outstanding", func() {
			c := januaryCourse(signedA, course.AttendanceRecord{EmployeeID: "B", Status: course.RecordPending})
			Expect(course.DeriveStatus(c, date("2024-01-20"))).To(Equal(course.StatusOpening))
		})
	})

	Describe("ApplyConfirmation", func() {
		var c course.Course

		BeforeEach(func() {
			c = januaryCourse(
				course.AttendanceRecord{EmployeeID: "A", Status: course.RecordPending},
				course.AttendanceRecord{EmployeeID: "B", Status: course.RecordPending, Reason: "on leave"},
			)
		})

		It("should sign only the matching record", func() {
			conf := course.Confirmation{CourseID: c.ID, EmployeeID: "A", Timestamp: "09:15:00 01/12/2024", Signature: "sig-a"}

			updated, err := course.ApplyConfirmation(c, conf)
			Expect(err).NotTo(HaveOccurred())

			rec, ok := updated.Record("A")
			Expect(ok).To(BeTrue())
			Expect(rec.Status).To(Equal(course.RecordSigned))
			Expect(rec.Timestamp).To(Equal("09:15:00 01/12/2024"))
			Expect(rec.Signature).To(Equal("sig-a"))
			Expect(updated.Attendance[1]).To(Equal(c.Attendance[1]))
		})

		It("should not mutate the input course", func() {
			conf := course.Confirmation{CourseID: c.ID, EmployeeID: "A", Timestamp: "09:15:00 01/12/2024", Signature: "sig-a"}

			_, err := course.ApplyConfirmation(c, conf)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Attendance[0].Status).To(Equal(course.RecordPending))
			Expect(c.Attendance[0].Signature).To(BeEmpty())
		})

		It("should be idempotent", func() {
			conf := course.Confirmation{CourseID: c.ID, EmployeeID: "A", Timestamp: "09:15:00 01/12/2024", Signature: "sig-a"}

			once, err := course.ApplyConfirmation(c, conf)
			Expect(err).NotTo(HaveOccurred())
			twice, err := course.ApplyConfirmation(once, conf)
			Expect(err).NotTo(HaveOccurred())
			Expect(twice.Attendance).To(Equal(once.Attendance))
		})

		It("should never overwrite an existing signature", func() {
			first := course.Confirmation{CourseID: c.ID, EmployeeID: "A", Timestamp: "09:15:00 01/12/2024", Signature: "sig-a"}
			second := course.Confirmation{CourseID: c.ID, EmployeeID: "A", Timestamp: "10:00:00 01/13/2024", Signature: "sig-other"}

			signed, err := course.ApplyConfirmation(c, first)
			Expect(err).NotTo(HaveOccurred())
			again, err := course.ApplyConfirmation(signed, second)
			Expect(err).NotTo(HaveOccurred())

			rec, _ := again.Record("A")
			Expect(rec.Signature).To(Equal("sig-a"))
			Expect(rec.Timestamp).To(Equal("09:15:00 01/12/2024"))
		})

		It("should fail with ErrNotFound for an employee not on the list", func() {
			conf := course.Confirmation{CourseID: c.ID, EmployeeID: "Z", Timestamp: "09:15:00 01/12/2024", Signature: "sig-z"}

			updated, err := course.ApplyConfirmation(c, conf)
			Expect(err).To(MatchError(course.ErrNotFound))
			Expect(updated).To(Equal(c))
		})

		It("should reject a confirmation for another course", func() {
			conf := course.Confirmation{CourseID: "other", EmployeeID: "A"}

			_, err := course.ApplyConfirmation(c, conf)
			Expect(err).To(MatchError(course.ErrCourseMismatch))
		})

		It("should refuse to sign without a timestamp or signature", func() {
			for _, conf := range []course.Confirmation{
				{CourseID: c.ID, EmployeeID: "A", Timestamp: "09:15:00 01/12/2024"},
				{CourseID: c.ID, EmployeeID: "A", Signature: "sig-a"},
			} {
				updated, err := course.ApplyConfirmation(c, conf)
				Expect(err).To(MatchError(course.ErrIncompleteConfirmation))
				Expect(updated).To(Equal(c))
				rec, _ := updated.Record("A")
				Expect(rec.IsSigned()).To(BeFalse())
			}
		})
	})

	Describe("ApplyExceptionReason", func() {
		var c course.Course

		BeforeEach(func() {
			c = januaryCourse(course.AttendanceRecord{EmployeeID: "A", Status: course.RecordPending})
		})

		It("should excuse the record without changing its status", func() {
			updated, err := course.ApplyExceptionReason(c, "A", "  maternity leave ")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Attendance[0].Status).To(Equal(course.RecordPending))
			Expect(updated.Attendance[0].Reason).To(Equal("maternity leave"))
			Expect(course.DeriveStatus(updated, date("2024-01-15"))).To(Equal(course.StatusClosed))
		})

		It("should un-excuse the record when cleared", func() {
			excused, err := course.ApplyExceptionReason(c, "A", "sick")
			Expect(err).NotTo(HaveOccurred())

			cleared, err := course.ApplyExceptionReason(excused, "A", " ")
			Expect(err).NotTo(HaveOccurred())
			Expect(cleared.Attendance[0].Reason).To(BeEmpty())
			Expect(course.DeriveStatus(cleared, date("2024-01-15"))).To(Equal(course.StatusOpening))
		})

		It("should fail with ErrNotFound for an unknown employee", func() {
			_, err := course.ApplyExceptionReason(c, "Z", "sick")
			Expect(err).To(MatchError(course.ErrNotFound))
		})
	})

	Describe("FormatTimestamp", func() {
		It("should render zero padded HH:mm:ss MM/dd/yyyy", func() {
			t := time.Date(2024, 3, 5, 7, 4, 9, 0, time.UTC)
			Expect(course.FormatTimestamp(t)).To(Equal("07:04:09 03/05/2024"))
		})
	})
})
