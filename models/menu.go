package models

type Category struct {
	Base
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

type Dish struct {
	Base
	CategoryID  uint      `gorm:"not null;index" json:"category_id" binding:"required"`
	Category    *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price" binding:"required,gt=0"`
	ImageURL    string    `gorm:"type:varchar(255)" json:"image_url"`
	Available   bool      `gorm:"not null" json:"available"`
}
