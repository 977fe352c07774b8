package course

import (
	"time"

	errors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/core/common/validation"
)

const (
	ScopeActing   = "acting"
	ScopeFinished = "finished"
)

type CreateCourseDTO struct {
	Name        string   `json:"name" validate:"required,max=200"`
	StartDate   string   `json:"start_date" validate:"required"`
	EndDate     string   `json:"end_date" validate:"required"`
	Content     string   `json:"content"`
	Target      string   `json:"target" validate:"required,oneof=Primary Vendor"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

// Validate checks the payload and returns the parsed window.
func (dto CreateCourseDTO) Validate() (time.Time, time.Time, error) {
	start, end, err := parseWindow(dto.StartDate, dto.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("target", dto.Target).Required().OneOf(errors.ErrCodeInvalidCompany, "Primary", "Vendor")
	if appErr := v.Validate(); appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	return start, end, nil
}

type UpdateCourseDTO struct {
	Name      *string `json:"name,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Content   *string `json:"content,omitempty"`
	IsEnabled *bool   `json:"is_enabled,omitempty"`
}

type SetReasonDTO struct {
	Reason string `json:"reason"`
}

type ListFilter struct {
	Scope  string
	Target string
}

type AttendanceView struct {
	EmployeeID string       `json:"employee_id"`
	Name       string       `json:"name"`
	Part       string       `json:"part"`
	Group      string       `json:"group"`
	Status     RecordStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	Timestamp  string       `json:"timestamp,omitempty"`
	Signature  string       `json:"signature,omitempty"`
}

type CourseResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Content     string           `json:"content"`
	Target      string           `json:"target"`
	IsEnabled   bool             `json:"is_enabled"`
	Status      Status           `json:"status"`
	Version     int64            `json:"version"`
	Progress    Progress         `json:"progress"`
	Outstanding map[string]int   `json:"outstanding"`
	Attendance  []AttendanceView `json:"attendance,omitempty"`
}

type CoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// PendingEntry is one still-unsigned record found by the exception search.
type PendingEntry struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Part       string `json:"part"`
	Reason     string `json:"reason,omitempty"`
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, appErr := validation.ParseDate("start_date", startRaw)
	if appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	end, appErr := validation.ParseDate("end_date", endRaw)
	if appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	if appErr := validation.ValidateDateRange(start, end); appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	return start, end, nil
}
