package course

import (
	"math"
	"strings"

	"github.com/frahmantamala/training-tracker/internal/employee"
)

// TagPredicate matches an employee by organizational part and group.
type TagPredicate func(part, group string) bool

// GroupKeys are the buckets shown on the admin dashboard and in reports.
var GroupKeys = []string{"G", "1P", "2P", "3P", "TF"}

// CountOutstandingByTag counts records that are neither signed nor excused and
// whose employee resolves in employees and matches match. Records pointing at
// unknown employees are skipped.
func CountOutstandingByTag(c Course, employees map[string]employee.Employee, match TagPredicate) int {
	if match == nil {
		return 0
	}
	n := 0
	for _, r := range c.Attendance {
		if r.IsComplete() {
			continue
		}
		e, ok := employees[r.EmployeeID]
		if !ok {
			continue
		}
		if match(e.Part, e.Group) {
			n++
		}
	}
	return n
}

// GroupPredicate returns the matcher for one of GroupKeys, or nil for an
// unknown key. G matches on group (or a bare "G" part); the rest are
// substring tests on part.
func GroupPredicate(key string) TagPredicate {
	key = strings.ToUpper(strings.TrimSpace(key))
	switch key {
	case "G":
		return func(part, group string) bool {
			p := strings.ToUpper(strings.TrimSpace(part))
			return strings.Contains(strings.ToUpper(group), "G") || p == "G"
		}
	case "1P", "2P", "3P", "TF":
		return func(part, _ string) bool {
			return strings.Contains(strings.ToUpper(part), key)
		}
	default:
		return nil
	}
}

// OutstandingByGroup counts outstanding records for each of GroupKeys.
func OutstandingByGroup(c Course, employees map[string]employee.Employee) map[string]int {
	out := make(map[string]int, len(GroupKeys))
	for _, key := range GroupKeys {
		out[key] = CountOutstandingByTag(c, employees, GroupPredicate(key))
	}
	return out
}

// Progress summarises how far a course's attendance list has come.
type Progress struct {
	Signed  int `json:"signed"`
	Excused int `json:"excused"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// ComputeProgress counts signed and excused records. Percent is signed over
// total, rounded, and 0 for an empty list. Signed records carrying a reason
// count as signed only.
func ComputeProgress(c Course) Progress {
	p := Progress{Total: len(c.Attendance)}
	for _, r := range c.Attendance {
		switch {
		case r.IsSigned():
			p.Signed++
		case r.IsExcused():
			p.Excused++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Signed) * 100 / float64(p.Total)))
	}
	return p
}
