package employee

import (
	errors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/core/common/validation"
)

// RegisterDTO is the public self-registration payload. The account gets the
// configured default password.
type RegisterDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Part    string `json:"part"`
	Group   string `json:"group"`
	Company string `json:"company"`
}

func (dto RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("id", dto.ID).Required()
	v.Field("name", dto.Name).Required().MaxLength(120)
	v.Field("part", dto.Part).MaxLength(40)
	v.Field("group", dto.Group).MaxLength(40)
	v.Field("company", dto.Company).Required().OneOf(errors.ErrCodeInvalidCompany, CompanyPrimary, CompanyVendor)
	return v.Validate()
}

// CreateEmployeeDTO is the admin variant; Password is optional.
type CreateEmployeeDTO struct {
	RegisterDTO
	Password string `json:"password,omitempty"`
}

type ListFilter struct {
	Company string
	Search  string
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}

type ImportRowError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}
