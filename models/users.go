package models

const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleChef    = "chef"
	RolePartner = "partner"
)

type User struct {
	Base
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(20);not null" json:"role"`
	Active       bool   `gorm:"not null" json:"active"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleChef, RolePartner:
		return true
	}
	return false
}
