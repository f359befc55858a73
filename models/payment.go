package models

import "time"

const (
	PaymentCash       = "cash"
	PaymentCard       = "card"
	PaymentQRIS       = "qris"
	PaymentTransfer   = "transfer"
	PaymentRoomCharge = "room_charge"
)

// Payment records money received for an order. Nothing is charged through a gateway.
type Payment struct {
	Base
	OrderID    uint      `gorm:"not null;index" json:"order_id" binding:"required"`
	Amount     float64   `gorm:"type:decimal(12,2);not null" json:"amount" binding:"required,gt=0"`
	Method     string    `gorm:"type:varchar(30);not null" json:"method" binding:"required,oneof=cash card qris transfer room_charge"`
	Reference  string    `gorm:"type:varchar(100)" json:"reference"`
	PaidAt     time.Time `gorm:"not null;index" json:"paid_at"`
	RecordedBy *uint     `json:"recorded_by,omitempty"`
}
