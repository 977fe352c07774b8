package postgres

import (
	"context"
	"errors"
	"time"

	confirmationDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/confirmation"
	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	"github.com/frahmantamala/training-tracker/internal/course"
	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) course.Repository {
	return &CourseRepository{db: db}
}

func orderedAttendance(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *CourseRepository) Create(ctx context.Context, c *courseDatamodel.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*courseDatamodel.Course, error) {
	var c courseDatamodel.Course
	err := r.db.WithContext(ctx).
		Preload("Attendance", orderedAttendance).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, course.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context, target string) ([]*courseDatamodel.Course, error) {
	var courses []*courseDatamodel.Course
	q := r.db.WithContext(ctx).Preload("Attendance", orderedAttendance)
	if target != "" {
		q = q.Where("target = ?", target)
	}
	err := q.Order("start_date DESC").Order("name ASC").Find(&courses).Error
	return courses, err
}

// ListForEmployee returns enabled courses whose attendance list holds employeeID.
func (r *CourseRepository) ListForEmployee(ctx context.Context, employeeID string) ([]*courseDatamodel.Course, error) {
	db := r.db.WithContext(ctx)
	member := db.Model(&courseDatamodel.AttendanceRecord{}).
		Select("course_id").
		Where("employee_id = ?", employeeID)

	var courses []*courseDatamodel.Course
	err := db.Preload("Attendance", orderedAttendance).
		Where("is_enabled = ?", true).
		Where("id IN (?)", member).
		Order("end_date ASC").
		Find(&courses).Error
	return courses, err
}

// UpdateDetails writes the course header if its version still matches and
// bumps the version. Attendance rows are not touched.
func (r *CourseRepository) UpdateDetails(ctx context.Context, c *courseDatamodel.Course) error {
	res := r.db.WithContext(ctx).
		Model(&courseDatamodel.Course{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"start_date": c.StartDate,
			"end_date":   c.EndDate,
			"content":    c.Content,
			"is_enabled": c.IsEnabled,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrConflict(ctx, c.ID)
	}
	return nil
}

func (r *CourseRepository) SaveRecord(ctx context.Context, courseID string, version int64, rec courseDatamodel.AttendanceRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return SaveRecordTx(tx, courseID, version, rec)
	})
}

// Delete removes the course with its attendance rows and confirmations.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&confirmationDatamodel.Confirmation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&courseDatamodel.AttendanceRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&courseDatamodel.Course{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return course.ErrCourseNotFound
		}
		return nil
	})
}

func (r *CourseRepository) missingOrConflict(ctx context.Context, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&courseDatamodel.Course{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return course.ErrCourseNotFound
	}
	return course.ErrVersionConflict
}

// SaveRecordTx patches one attendance row inside tx, guarded by the course
// version. It is shared with the confirmation repository so the confirmation
// insert and the signature land in the same transaction.
func SaveRecordTx(tx *gorm.DB, courseID string, version int64, rec courseDatamodel.AttendanceRecord) error {
	res := tx.Model(&courseDatamodel.Course{}).
		Where("id = ? AND version = ?", courseID, version).
		Updates(map[string]interface{}{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return course.ErrVersionConflict
	}

	res = tx.Model(&courseDatamodel.AttendanceRecord{}).
		Where("course_id = ? AND employee_id = ?", courseID, rec.EmployeeID).
		Updates(map[string]interface{}{
			"status":           rec.Status,
			"reason":           rec.Reason,
			"signed_timestamp": rec.Timestamp,
			"signature":        rec.Signature,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return course.ErrNotFound
	}
	return nil
}
