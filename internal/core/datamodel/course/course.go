package course

import "time"

type Course struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	Name      string    `gorm:"column:name;not null"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`
	Content   string    `gorm:"column:content;type:text"`
	Target    string    `gorm:"column:target;not null;index"`
	IsEnabled bool      `gorm:"column:is_enabled;not null"`
	Version   int64     `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Attendance []AttendanceRecord `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Course) TableName() string {
	return "courses"
}

// AttendanceRecord is one row per (course, employee); Position keeps the
// snapshot order taken at course creation.
type AttendanceRecord struct {
	CourseID   string `gorm:"primaryKey;column:course_id;size:36"`
	EmployeeID string `gorm:"primaryKey;column:employee_id;size:8"`
	Position   int    `gorm:"column:position;not null"`
	Status     string `gorm:"column:status;not null;default:Pending"`
	Reason     string `gorm:"column:reason"`
	Timestamp  string `gorm:"column:signed_timestamp"`
	Signature  string `gorm:"column:signature;type:text"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
