package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID           string          `gorm:"type:varchar(36);primaryKey"`
	Name         string          `gorm:"not null"`
	Email        string          `gorm:"not null;uniqueIndex:uq_employees_email"`
	Phone        string          `gorm:"not null"`
	Department   string          `gorm:"not null;index"`
	Salary       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ProfileImage string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Stats is the per-department aggregate over all records.
type Stats struct {
	TotalEmployees int64
	Departments    map[string]int64
	TotalSalary    decimal.Decimal
}
