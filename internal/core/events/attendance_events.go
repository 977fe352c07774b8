package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAttendanceSigned = "attendance.signed"
	EventTypeCourseClosed     = "course.closed"
	EventTypeCourseOverdue    = "course.overdue"
)

type AttendanceSignedEvent struct {
	BaseEvent
	CourseID   string `json:"course_id"`
	EmployeeID string `json:"employee_id"`
	SignedAt   string `json:"signed_at"`
}

func NewAttendanceSignedEvent(courseID, employeeID, signedAt string) *AttendanceSignedEvent {
	return &AttendanceSignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAttendanceSigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"course_id":   courseID,
				"employee_id": employeeID,
				"signed_at":   signedAt,
			},
		},
		CourseID:   courseID,
		EmployeeID: employeeID,
		SignedAt:   signedAt,
	}
}

type CourseClosedEvent struct {
	BaseEvent
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Signed     int    `json:"signed"`
	Excused    int    `json:"excused"`
	Total      int    `json:"total"`
}

func NewCourseClosedEvent(courseID, courseName string, signed, excused, total int) *CourseClosedEvent {
	return &CourseClosedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCourseClosed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"course_id":   courseID,
				"course_name": courseName,
				"signed":      signed,
				"excused":     excused,
				"total":       total,
			},
		},
		CourseID:   courseID,
		CourseName: courseName,
		Signed:     signed,
		Excused:    excused,
		Total:      total,
	}
}

// CourseOverdueEvent is raised by the reminder worker for courses past their
// end date that still have outstanding records.
type CourseOverdueEvent struct {
	BaseEvent
	CourseID    string         `json:"course_id"`
	CourseName  string         `json:"course_name"`
	EndDate     string         `json:"end_date"`
	Outstanding map[string]int `json:"outstanding"`
}

func NewCourseOverdueEvent(courseID, courseName, endDate string, outstanding map[string]int) *CourseOverdueEvent {
	return &CourseOverdueEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCourseOverdue,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"course_id":   courseID,
				"course_name": courseName,
				"end_date":    endDate,
				"outstanding": outstanding,
			},
		},
		CourseID:    courseID,
		CourseName:  courseName,
		EndDate:     endDate,
		Outstanding: outstanding,
	}
}
