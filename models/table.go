package models

// DiningTable is what a printed QR code points to.
type DiningTable struct {
	Base
	Code   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" binding:"required"`
	Seats  int    `gorm:"not null;default:2" json:"seats" binding:"gte=0"`
	Active bool   `gorm:"not null" json:"active"`
}

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomCleaning    = "cleaning"
	RoomMaintenance = "maintenance"
)

type Room struct {
	Base
	Number string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"number" binding:"required"`
	Type   string  `gorm:"type:varchar(50)" json:"type"`
	Floor  string  `gorm:"type:varchar(10)" json:"floor"`
	Price  float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price" binding:"gte=0"`
	Status string  `gorm:"type:varchar(20);not null;default:'available'" json:"status" binding:"omitempty,oneof=available occupied cleaning maintenance"`
}
