package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/dineflow/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// Adjust adds delta (which may be negative) to an ingredient's stock. Stock
// never goes below zero.
func (s *InventoryService) Adjust(ctx context.Context, id uint, delta float64) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ingredient %d: %w", id, models.ErrNotFound)
			}
			return err
		}
		next := ingredient.Quantity + delta
		if next < 0 {
			return fmt.Errorf("%w: only %.2f %s of %s in stock", models.ErrValidation, ingredient.Quantity, ingredient.Unit, ingredient.Name)
		}
		ingredient.Quantity = next
		ingredient.RefreshLowStock()
		return tx.Model(&ingredient).Update("quantity", next).Error
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// LowStock lists ingredients at or below their reorder level, with suppliers
// loaded for the reorder sheet.
func (s *InventoryService) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	items := []models.Ingredient{}
	err := s.db.WithContext(ctx).Preload("Supplier").Where("quantity <= reorder_level").Order("name").Find(&items).Error
	return items, err
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) All(ctx context.Context) ([]models.SystemConfig, error) {
	var settings []models.SystemConfig
	err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error
	return settings, err
}

// Set upserts one setting.
func (s *SettingsService) Set(ctx context.Context, key, value string, by *uint) (*models.SystemConfig, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", models.ErrValidation)
	}
	setting := models.SystemConfig{Key: key, Value: value, UpdatedBy: by}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("save setting %s: %w", key, err)
	}
	return &setting, nil
}
