package models

import "time"

// Base carries the columns every flat back-office record shares.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BaseFields() *Base {
	return b
}

// Record is implemented by every model embedding Base.
type Record interface {
	BaseFields() *Base
}
