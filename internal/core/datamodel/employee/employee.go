package employee

import "time"

type Employee struct {
	ID           string    `gorm:"primaryKey;column:id;size:8"`
	Name         string    `gorm:"column:name;not null"`
	Part         string    `gorm:"column:part;not null;default:N/A"`
	Group        string    `gorm:"column:grp;not null;default:N/A"`
	Role         string    `gorm:"column:role;not null;default:staff"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Company      string    `gorm:"column:company;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
