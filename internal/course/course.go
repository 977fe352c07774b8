package course

import (
	"sort"
	"strings"
	"time"

	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
)

type Status string

const (
	StatusPlan    Status = "Plan"
	StatusOpening Status = "Opening"
	StatusPending Status = "Pending"
	StatusClosed  Status = "Closed"
)

type RecordStatus string

const (
	RecordPending RecordStatus = "Pending"
	RecordSigned  RecordStatus = "Signed"
)

type AttendanceRecord struct {
	EmployeeID string       `json:"employee_id"`
	Status     RecordStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	Timestamp  string       `json:"timestamp,omitempty"`
	Signature  string       `json:"signature,omitempty"`
}

func (r AttendanceRecord) IsSigned() bool {
	return r.Status == RecordSigned
}

// IsExcused reports whether an exception reason is attached.
func (r AttendanceRecord) IsExcused() bool {
	return strings.TrimSpace(r.Reason) != ""
}

// IsComplete is the effective completion state used for status derivation.
func (r AttendanceRecord) IsComplete() bool {
	return r.IsSigned() || r.IsExcused()
}

type Course struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Content    string             `json:"content"`
	Target     string             `json:"target"`
	IsEnabled  bool               `json:"is_enabled"`
	Attendance []AttendanceRecord `json:"attendance"`
	Version    int64              `json:"version"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Record returns the attendance entry for employeeID.
func (c Course) Record(employeeID string) (AttendanceRecord, bool) {
	for _, r := range c.Attendance {
		if r.EmployeeID == employeeID {
			return r, true
		}
	}
	return AttendanceRecord{}, false
}

func (c Course) clone() Course {
	out := c
	if c.Attendance != nil {
		out.Attendance = make([]AttendanceRecord, len(c.Attendance))
		copy(out.Attendance, c.Attendance)
	}
	return out
}

// NewCourse builds a course whose attendance list is a snapshot of the given
// employee ids, all pending.
func NewCourse(id, name string, start, end time.Time, content, target string, employeeIDs []string) Course {
	now := time.Now()
	attendance := make([]AttendanceRecord, 0, len(employeeIDs))
	seen := make(map[string]struct{}, len(employeeIDs))
	for _, eid := range employeeIDs {
		if _, dup := seen[eid]; dup {
			continue
		}
		seen[eid] = struct{}{}
		attendance = append(attendance, AttendanceRecord{EmployeeID: eid, Status: RecordPending})
	}
	return Course{
		ID:         id,
		Name:       strings.TrimSpace(name),
		Start:      start,
		End:        end,
		Content:    content,
		Target:     target,
		IsEnabled:  true,
		Attendance: attendance,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func ToDataModel(c *Course) *courseDatamodel.Course {
	records := make([]courseDatamodel.AttendanceRecord, len(c.Attendance))
	for i, r := range c.Attendance {
		records[i] = RecordToDataModel(c.ID, i, r)
	}
	return &courseDatamodel.Course{
		ID:         c.ID,
		Name:       c.Name,
		StartDate:  c.Start,
		EndDate:    c.End,
		Content:    c.Content,
		Target:     c.Target,
		IsEnabled:  c.IsEnabled,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Attendance: records,
	}
}

func RecordToDataModel(courseID string, position int, r AttendanceRecord) courseDatamodel.AttendanceRecord {
	return courseDatamodel.AttendanceRecord{
		CourseID:   courseID,
		EmployeeID: r.EmployeeID,
		Position:   position,
		Status:     string(r.Status),
		Reason:     r.Reason,
		Timestamp:  r.Timestamp,
		Signature:  r.Signature,
	}
}

func FromDataModel(c *courseDatamodel.Course) *Course {
	rows := make([]courseDatamodel.AttendanceRecord, len(c.Attendance))
	copy(rows, c.Attendance)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	attendance := make([]AttendanceRecord, len(rows))
	for i, r := range rows {
		attendance[i] = AttendanceRecord{
			EmployeeID: r.EmployeeID,
			Status:     RecordStatus(r.Status),
			Reason:     r.Reason,
			Timestamp:  r.Timestamp,
			Signature:  r.Signature,
		}
	}
	return &Course{
		ID:         c.ID,
		Name:       c.Name,
		Start:      c.StartDate,
		End:        c.EndDate,
		Content:    c.Content,
		Target:     c.Target,
		IsEnabled:  c.IsEnabled,
		Attendance: attendance,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func FromDataModelSlice(courses []*courseDatamodel.Course) []*Course {
	result := make([]*Course, len(courses))
	for i, c := range courses {
		result[i] = FromDataModel(c)
	}
	return result
}
