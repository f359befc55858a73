package models

import "time"

type Staff struct {
	Base
	Name     string     `gorm:"type:varchar(255);not null" json:"name" binding:"required"`
	Position string     `gorm:"type:varchar(100);not null" json:"position" binding:"required"`
	Phone    string     `gorm:"type:varchar(30)" json:"phone"`
	Email    string     `gorm:"type:varchar(255)" json:"email" binding:"omitempty,email"`
	Salary   float64    `gorm:"type:decimal(12,2);not null;default:0" json:"salary" binding:"gte=0"`
	HiredAt  *time.Time `json:"hired_at,omitempty"`
	Active   bool       `gorm:"not null" json:"active"`
}
