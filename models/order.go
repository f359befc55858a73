package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id" bson:"_id"`
	TableID       string      `gorm:"type:varchar(50);not null;index" json:"table_id" bson:"table_id"`
	RoomNumber    *string     `gorm:"type:varchar(20)" json:"room_number,omitempty" bson:"room_number,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items" bson:"items"`
	TotalAmount   float64     `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount" bson:"total_amount"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" bson:"status"`
	Note          string      `gorm:"type:text" json:"note,omitempty" bson:"note,omitempty"`
	PaymentMethod *string     `gorm:"type:varchar(30)" json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	PreparingAt   *time.Time  `json:"preparing_at,omitempty" bson:"preparing_at,omitempty"`
	ReadyAt       *time.Time  `json:"ready_at,omitempty" bson:"ready_at,omitempty"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	Version       uint        `gorm:"not null;default:1" json:"version" bson:"version"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

// OrderItem is a snapshot of a dish taken when the order was placed.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id" bson:"-"`
	OrderID  uint    `gorm:"not null;index" json:"order_id" bson:"-"`
	DishID   uint    `gorm:"not null" json:"dish_id" bson:"dish_id"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name" bson:"name"`
	Price    float64 `gorm:"type:decimal(10,2);not null" json:"price" bson:"price"`
	Quantity int     `gorm:"not null" json:"quantity" bson:"quantity"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// RecomputeTotal overwrites TotalAmount with the sum of the line items.
func (o *Order) RecomputeTotal() {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	o.TotalAmount = total
}

// BeforeSave keeps total_amount derived from the items on every create and full save.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.RecomputeTotal()
	return nil
}
