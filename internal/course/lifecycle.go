package course

import (
	"errors"
	"strings"
	"time"
)

// TimestampLayout renders signing times as HH:mm:ss MM/dd/yyyy.
const TimestampLayout = "15:04:05 01/02/2006"

var (
	ErrNotFound        = errors.New("employee is not on the attendance list")
	ErrCourseMismatch  = errors.New("confirmation belongs to a different course")
	ErrVersionConflict = errors.New("course version conflict")

	// ErrIncompleteConfirmation rejects a signing without a timestamp or signature.
	ErrIncompleteConfirmation = errors.New("confirmation needs a timestamp and a signature")
)

// Confirmation is the signing event applied to a course.
type Confirmation struct {
	CourseID   string
	EmployeeID string
	Timestamp  string
	Signature  string
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// dateOf drops the clock part, keeping the calendar date as seen in t's location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsComplete reports a non-empty attendance list where every record is
// signed or excused.
func IsComplete(c Course) bool {
	if len(c.Attendance) == 0 {
		return false
	}
	for _, r := range c.Attendance {
		if !r.IsComplete() {
			return false
		}
	}
	return true
}

// DeriveStatus classifies the course at now. Completion wins over the
// calendar; dates compare by day so the whole end day is inside the window.
func DeriveStatus(c Course, now time.Time) Status {
	if IsComplete(c) {
		return StatusClosed
	}
	today := dateOf(now)
	switch {
	case today.Before(dateOf(c.Start)):
		return StatusPlan
	case today.After(dateOf(c.End)):
		return StatusPending
	default:
		return StatusOpening
	}
}

// InWindow reports whether now falls on or between the start and end days.
func InWindow(c Course, now time.Time) bool {
	today := dateOf(now)
	return !today.Before(dateOf(c.Start)) && !today.After(dateOf(c.End))
}

// ApplyConfirmation returns a copy of c with the confirming employee's record
// signed. A record that is already signed is left as it is.
func ApplyConfirmation(c Course, conf Confirmation) (Course, error) {
	if conf.CourseID != "" && conf.CourseID != c.ID {
		return c, ErrCourseMismatch
	}
	if strings.TrimSpace(conf.Timestamp) == "" || strings.TrimSpace(conf.Signature) == "" {
		return c, ErrIncompleteConfirmation
	}
	idx := indexOf(c, conf.EmployeeID)
	if idx < 0 {
		return c, ErrNotFound
	}
	if c.Attendance[idx].IsSigned() {
		return c.clone(), nil
	}

	out := c.clone()
	rec := &out.Attendance[idx]
	rec.Status = RecordSigned
	rec.Timestamp = conf.Timestamp
	rec.Signature = conf.Signature
	return out, nil
}

// ApplyExceptionReason sets or clears the exception reason on one record.
// Status is untouched; a blank reason removes the excuse.
func ApplyExceptionReason(c Course, employeeID, reason string) (Course, error) {
	idx := indexOf(c, employeeID)
	if idx < 0 {
		return c, ErrNotFound
	}
	out := c.clone()
	out.Attendance[idx].Reason = strings.TrimSpace(reason)
	return out, nil
}

func indexOf(c Course, employeeID string) int {
	for i, r := range c.Attendance {
		if r.EmployeeID == employeeID {
			return i
		}
	}
	return -1
}
