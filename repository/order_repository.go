package repository

import (
	"context"
	"time"

	"github.com/yeremiapane/dineflow/models"
)

type OrderFilter struct {
	Statuses []models.OrderStatus
	TableID  string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// OrderRepository persists orders. Implementations recompute the total before
// every write and treat Version as a compare-and-swap token on status updates.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus writes status, lifecycle timestamps and version of order,
	// but only if the stored version still equals expectedVersion.
	UpdateStatus(ctx context.Context, order *models.Order, expectedVersion uint) error
	SetPaymentMethod(ctx context.Context, id uint, method string) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}
