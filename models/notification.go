package models

type Notification struct {
	Base
	UserID  *uint  `gorm:"index" json:"user_id,omitempty"`
	Title   string `gorm:"type:varchar(100)" json:"title"`
	Message string `gorm:"type:text;not null" json:"message" binding:"required"`
	Read    bool   `gorm:"not null;default:false" json:"read"`
}

// SystemConfig is a single key/value setting editable from the back office.
type SystemConfig struct {
	Key       string `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string `gorm:"type:text;not null" json:"value"`
	UpdatedBy *uint  `json:"updated_by,omitempty"`
}

const (
	ConfigRestaurantName = "restaurant_name"
	ConfigCurrency       = "currency"
	ConfigTaxRate        = "tax_rate"
	ConfigQRBaseURL      = "qr_base_url"
)
