package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Dish{},
		&models.DiningTable{},
		&models.Room{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Staff{},
		&models.Supplier{},
		&models.Ingredient{},
		&models.Partner{},
		&models.Expense{},
		&models.Notification{},
		&models.SystemConfig{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

type SeedOptions struct {
	AdminEmail     string
	AdminPassword  string
	RestaurantName string
	Currency       string
	QRBaseURL      string
}

// Seed creates the bootstrap admin when no admin exists yet and fills in
// missing system settings. Existing values are never overwritten.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		var admins int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins == 0 {
			hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			admin := models.User{
				Name:         "Administrator",
				Email:        strings.ToLower(opts.AdminEmail),
				PasswordHash: string(hashed),
				Role:         models.RoleAdmin,
				Active:       true,
			}
			if err := db.Create(&admin).Error; err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			utils.InfoLogger.WithField("email", admin.Email).Info("bootstrap admin created")
		}
	}

	defaults := []models.SystemConfig{
		{Key: models.ConfigRestaurantName, Value: opts.RestaurantName},
		{Key: models.ConfigCurrency, Value: opts.Currency},
		{Key: models.ConfigTaxRate, Value: "0"},
		{Key: models.ConfigQRBaseURL, Value: opts.QRBaseURL},
	}
	for _, setting := range defaults {
		if setting.Value == "" {
			continue
		}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("seed setting %s: %w", setting.Key, err)
		}
	}
	return nil
}
