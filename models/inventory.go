package models

import "gorm.io/gorm"

type Supplier struct {
	Base
	Name    string `gorm:"type:varchar(255);not null" json:"name" binding:"required"`
	Contact string `gorm:"type:varchar(255)" json:"contact"`
	Phone   string `gorm:"type:varchar(30)" json:"phone"`
	Email   string `gorm:"type:varchar(255)" json:"email" binding:"omitempty,email"`
	Address string `gorm:"type:text" json:"address"`
}

type Ingredient struct {
	Base
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" binding:"required"`
	Unit         string    `gorm:"type:varchar(20);not null" json:"unit" binding:"required"`
	Quantity     float64   `gorm:"not null;default:0" json:"quantity" binding:"gte=0"`
	ReorderLevel float64   `gorm:"not null;default:0" json:"reorder_level" binding:"gte=0"`
	CostPerUnit  float64   `gorm:"type:decimal(10,2);not null;default:0" json:"cost_per_unit" binding:"gte=0"`
	SupplierID   *uint     `gorm:"index" json:"supplier_id,omitempty"`
	Supplier     *Supplier `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"supplier,omitempty"`
	LowStock     bool      `gorm:"-" json:"low_stock"`
}

func (i *Ingredient) RefreshLowStock() {
	i.LowStock = i.Quantity <= i.ReorderLevel
}

func (i *Ingredient) AfterFind(tx *gorm.DB) error {
	i.RefreshLowStock()
	return nil
}

func (i *Ingredient) AfterSave(tx *gorm.DB) error {
	i.RefreshLowStock()
	return nil
}
