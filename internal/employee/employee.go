package employee

import (
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/training-tracker/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/employee"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	CompanyPrimary = "Primary"
	CompanyVendor  = "Vendor"

	// DefaultTag fills part and group when a registration leaves them blank.
	DefaultTag = "N/A"

	IDLength = validation.EmployeeIDWidth
)

var (
	ErrInvalidEmployeeID = errors.New("employee id must be up to 8 digits")
	ErrNotFound          = errors.New("employee not found")
	ErrAlreadyExists     = errors.New("employee already exists")
)

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Part         string    `json:"part"`
	Group        string    `json:"group"`
	Role         string    `json:"role"`
	Company      string    `json:"company"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// NormalizeID left-pads raw with zeros to the fixed width. Anything that is
// not 1 to 8 digits is rejected.
func NormalizeID(raw string) (string, error) {
	id, ok := validation.NormalizeEmployeeID(raw)
	if !ok {
		return "", ErrInvalidEmployeeID
	}
	return id, nil
}

func tagOrDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultTag
	}
	return v
}

func NewEmployee(id, name, part, group, company, passwordHash string) *Employee {
	now := time.Now()
	return &Employee{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Part:         tagOrDefault(part),
		Group:        tagOrDefault(group),
		Role:         RoleStaff,
		Company:      company,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:           e.ID,
		Name:         e.Name,
		Part:         e.Part,
		Group:        e.Group,
		Role:         e.Role,
		PasswordHash: e.PasswordHash,
		Company:      e.Company,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		Name:         e.Name,
		Part:         e.Part,
		Group:        e.Group,
		Role:         e.Role,
		PasswordHash: e.PasswordHash,
		Company:      e.Company,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModelSlice(employees []*employeeDatamodel.Employee) []*Employee {
	result := make([]*Employee, len(employees))
	for i, e := range employees {
		result[i] = FromDataModel(e)
	}
	return result
}

// Directory indexes employees by id for attendance lookups.
func Directory(employees []*Employee) map[string]Employee {
	dir := make(map[string]Employee, len(employees))
	for _, e := range employees {
		if e != nil {
			dir[e.ID] = *e
		}
	}
	return dir
}
