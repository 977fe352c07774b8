package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	confirmationDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/confirmation"
	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	"github.com/frahmantamala/training-tracker/internal/course"
	coursePostgres "github.com/frahmantamala/training-tracker/internal/course/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCoursePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Course Postgres Suite")
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Course Repository", func() {
	var (
		db   *gorm.DB
		repo course.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&courseDatamodel.Course{}, &courseDatamodel.AttendanceRecord{}, &confirmationDatamodel.Confirmation{})).To(Succeed())

		repo = coursePostgres.NewCourseRepository(db)
		ctx = context.Background()
	})

	seed := func(id, name, target, start string, enabled bool, members ...string) *course.Course {
		c := course.NewCourse(id, name, day(start), day(start).AddDate(0, 0, 7), "", target, members)
		c.IsEnabled = enabled
		Expect(repo.Create(ctx, course.ToDataModel(&c))).To(Succeed())
		return &c
	}

	Describe("Create and GetByID", func() {
		It("keeps the attendance order", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000003", "00000001", "00000002")

			got, err := repo.GetByID(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Version).To(Equal(int64(1)))
			Expect(got.Attendance).To(HaveLen(3))
			Expect(got.Attendance[0].EmployeeID).To(Equal("00000003"))
			Expect(got.Attendance[2].EmployeeID).To(Equal("00000002"))
			Expect(got.Attendance[1].Status).To(Equal(string(course.RecordPending)))
			Expect(got.StartDate.Format("2006-01-02")).To(Equal("2024-01-01"))
		})

		It("stores a disabled course as disabled", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", false, "00000001")

			got, err := repo.GetByID(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsEnabled).To(BeFalse())
		})

		It("returns ErrCourseNotFound", func() {
			_, err := repo.GetByID(ctx, "nope")
			Expect(errors.Is(err, course.ErrCourseNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			seed("c1", "Older", "Primary", "2024-01-01", true, "00000001")
			seed("c2", "Newer", "Primary", "2024-03-01", false, "00000002")
			seed("c3", "Vendor", "Vendor", "2024-02-01", true, "00000001")
		})

		It("orders by start date descending", func() {
			all, err := repo.List(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].ID).To(Equal("c2"))
			Expect(all[2].ID).To(Equal("c1"))
		})

		It("filters by target", func() {
			vendor, err := repo.List(ctx, "Vendor")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendor).To(HaveLen(1))
			Expect(vendor[0].Attendance).To(HaveLen(1))
		})

		It("lists enabled courses for one employee", func() {
			mine, err := repo.ListForEmployee(ctx, "00000001")
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))

			disabled, err := repo.ListForEmployee(ctx, "00000002")
			Expect(err).NotTo(HaveOccurred())
			Expect(disabled).To(BeEmpty())
		})
	})

	Describe("UpdateDetails", func() {
		It("bumps the version", func() {
			c := seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001")
			c.Name = "Fire drill"
			Expect(repo.UpdateDetails(ctx, course.ToDataModel(c))).To(Succeed())

			got, err := repo.GetByID(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Fire drill"))
			Expect(got.Version).To(Equal(int64(2)))
		})

		It("detects a stale version", func() {
			c := seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001")
			Expect(repo.UpdateDetails(ctx, course.ToDataModel(c))).To(Succeed())

			err := repo.UpdateDetails(ctx, course.ToDataModel(c))
			Expect(errors.Is(err, course.ErrVersionConflict)).To(BeTrue())
		})

		It("reports a missing course", func() {
			c := course.NewCourse("ghost", "Ghost", day("2024-01-01"), day("2024-01-02"), "", "Primary", nil)
			err := repo.UpdateDetails(ctx, course.ToDataModel(&c))
			Expect(errors.Is(err, course.ErrCourseNotFound)).To(BeTrue())
		})
	})

	Describe("SaveRecord", func() {
		It("patches one record under the version guard", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001", "00000002")

			rec := courseDatamodel.AttendanceRecord{
				EmployeeID: "00000002",
				Status:     string(course.RecordSigned),
				Timestamp:  "09:00:00 01/03/2024",
				Signature:  "data:image/png;base64,AAAA",
			}
			Expect(repo.SaveRecord(ctx, "c1", 1, rec)).To(Succeed())

			got, err := repo.GetByID(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Version).To(Equal(int64(2)))
			Expect(got.Attendance[0].Status).To(Equal(string(course.RecordPending)))
			Expect(got.Attendance[1].Status).To(Equal(string(course.RecordSigned)))
			Expect(got.Attendance[1].Signature).To(Equal(rec.Signature))

			err = repo.SaveRecord(ctx, "c1", 1, rec)
			Expect(errors.Is(err, course.ErrVersionConflict)).To(BeTrue())
		})

		It("rolls back the version bump for an unknown employee", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001")

			err := repo.SaveRecord(ctx, "c1", 1, courseDatamodel.AttendanceRecord{EmployeeID: "00000009"})
			Expect(errors.Is(err, course.ErrNotFound)).To(BeTrue())

			got, err := repo.GetByID(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Version).To(Equal(int64(1)))
		})
	})

	Describe("Delete", func() {
		It("removes the course and its attendance", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001")
			Expect(repo.Delete(ctx, "c1")).To(Succeed())

			var n int64
			Expect(db.Model(&courseDatamodel.AttendanceRecord{}).Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
			Expect(errors.Is(repo.Delete(ctx, "c1"), course.ErrCourseNotFound)).To(BeTrue())
		})

		It("removes the confirmations of the course only", func() {
			seed("c1", "Fire safety", "Primary", "2024-01-01", true, "00000001")
			seed("c2", "First aid", "Primary", "2024-02-01", true, "00000001")
			for _, id := range []string{"c1", "c2"} {
				Expect(db.Create(&confirmationDatamodel.Confirmation{
					CourseID:   id,
					EmployeeID: "00000001",
					Timestamp:  "09:30:00 01/15/2024",
					Signature:  "data:image/png;base64,AAAA",
				}).Error).To(Succeed())
			}

			Expect(repo.Delete(ctx, "c1")).To(Succeed())

			var left []confirmationDatamodel.Confirmation
			Expect(db.Find(&left).Error).To(Succeed())
			Expect(left).To(HaveLen(1))
			Expect(left[0].CourseID).To(Equal("c2"))
		})
	})
})
