package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/employee"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(employee.ToDataModel(e))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrAlreadyExists
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrNotFound
		}
		return nil, err
	}
	return employee.FromDataModel(&e), nil
}

func (r *EmployeeRepository) GetMany(ctx context.Context, ids []string) ([]*employee.Employee, error) {
	var rows []*employeeDatamodel.Employee
	if len(ids) == 0 {
		return nil, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return employee.FromDataModelSlice(rows), nil
}

func (r *EmployeeRepository) List(ctx context.Context, company string) ([]*employee.Employee, error) {
	var rows []*employeeDatamodel.Employee
	q := r.db.WithContext(ctx)
	if company != "" {
		q = q.Where("company = ?", company)
	}
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return employee.FromDataModelSlice(rows), nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&employeeDatamodel.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) Upsert(ctx context.Context, employees []*employee.Employee) (int, error) {
	rows := make([]*employeeDatamodel.Employee, len(employees))
	for i, e := range employees {
		rows[i] = employee.ToDataModel(e)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "part", "grp", "company", "updated_at"}),
		}).CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
