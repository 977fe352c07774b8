package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/training-tracker/internal/confirmation"
	confirmationDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/confirmation"
	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	coursePostgres "github.com/frahmantamala/training-tracker/internal/course/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfirmationRepository struct {
	db *gorm.DB
}

func NewConfirmationRepository(db *gorm.DB) confirmation.Repository {
	return &ConfirmationRepository{db: db}
}

func (r *ConfirmationRepository) Get(ctx context.Context, courseID, employeeID string) (*confirmation.Confirmation, error) {
	var row confirmationDatamodel.Confirmation
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND employee_id = ?", courseID, employeeID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, confirmation.ErrNotFound
		}
		return nil, err
	}
	return confirmation.FromDataModel(&row), nil
}

func (r *ConfirmationRepository) CreateAndApply(ctx context.Context, conf *confirmation.Confirmation, version int64, rec courseDatamodel.AttendanceRecord) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(confirmation.ToDataModel(conf))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return confirmation.ErrDuplicateConfirmation
		}
		return coursePostgres.SaveRecordTx(tx, conf.CourseID, version, rec)
	})
	if errors.Is(err, confirmation.ErrDuplicateConfirmation) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ConfirmationRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*confirmation.Confirmation, error) {
	var rows []*confirmationDatamodel.Confirmation
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return confirmation.FromDataModelSlice(rows), nil
}

func (r *ConfirmationRepository) ListByCourse(ctx context.Context, courseID string) ([]*confirmation.Confirmation, error) {
	var rows []*confirmationDatamodel.Confirmation
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return confirmation.FromDataModelSlice(rows), nil
}
