package confirmation

import (
	"errors"
	"time"

	confirmationDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/confirmation"
)

var (
	ErrNotFound      = errors.New("confirmation not found")
	ErrCourseNotOpen = errors.New("course is not open for confirmation")

	// ErrDuplicateConfirmation marks a second confirmation for the same
	// course and employee. It never reaches callers of Confirm.
	ErrDuplicateConfirmation = errors.New("confirmation already exists")
)

// Confirmation is the signed proof of attendance, one per (course, employee).
type Confirmation struct {
	CourseID   string    `json:"course_id"`
	EmployeeID string    `json:"employee_id"`
	Timestamp  string    `json:"timestamp"`
	Signature  string    `json:"signature"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToDataModel(c *Confirmation) *confirmationDatamodel.Confirmation {
	return &confirmationDatamodel.Confirmation{
		CourseID:   c.CourseID,
		EmployeeID: c.EmployeeID,
		Timestamp:  c.Timestamp,
		Signature:  c.Signature,
		CreatedAt:  c.CreatedAt,
	}
}

func FromDataModel(c *confirmationDatamodel.Confirmation) *Confirmation {
	return &Confirmation{
		CourseID:   c.CourseID,
		EmployeeID: c.EmployeeID,
		Timestamp:  c.Timestamp,
		Signature:  c.Signature,
		CreatedAt:  c.CreatedAt,
	}
}

func FromDataModelSlice(rows []*confirmationDatamodel.Confirmation) []*Confirmation {
	result := make([]*Confirmation, len(rows))
	for i, c := range rows {
		result[i] = FromDataModel(c)
	}
	return result
}
