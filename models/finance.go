package models

import "time"

type Partner struct {
	Base
	Name           string  `gorm:"type:varchar(255);not null" json:"name" binding:"required"`
	Type           string  `gorm:"type:varchar(50);not null" json:"type" binding:"required"`
	CommissionRate float64 `gorm:"not null;default:0" json:"commission_rate" binding:"gte=0,lte=100"`
	Contact        string  `gorm:"type:varchar(255)" json:"contact"`
	Phone          string  `gorm:"type:varchar(30)" json:"phone"`
	Active         bool    `gorm:"not null" json:"active"`
}

type Expense struct {
	Base
	Category    string    `gorm:"type:varchar(50);not null;index" json:"category" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount" binding:"required,gt=0"`
	SpentAt     time.Time `gorm:"not null;index" json:"spent_at"`
	RecordedBy  *uint     `json:"recorded_by,omitempty"`
}
