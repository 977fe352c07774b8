package confirmation

import "time"

type Confirmation struct {
	CourseID   string    `gorm:"primaryKey;column:course_id;size:36"`
	EmployeeID string    `gorm:"primaryKey;column:employee_id;size:8"`
	Timestamp  string    `gorm:"column:signed_timestamp;not null"`
	Signature  string    `gorm:"column:signature;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Confirmation) TableName() string {
	return "confirmations"
}
