package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dineflow/kds"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

// EventEmitter is satisfied by *kds.Hub.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) (kds.Message, error)
}

type OrderItemInput struct {
	DishID   uint `json:"dish_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type CreateOrderInput struct {
	TableID       string           `json:"table_id" binding:"required"`
	RoomNumber    *string          `json:"room_number"`
	Note          string           `json:"note"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=cash card qris transfer room_charge"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// StatusChange is the ORDER_STATUS_UPDATE payload.
type StatusChange struct {
	OrderID        uint               `json:"order_id"`
	TableID        string             `json:"table_id"`
	RoomNumber     *string            `json:"room_number,omitempty"`
	PreviousStatus models.OrderStatus `json:"previous_status"`
	Status         models.OrderStatus `json:"status"`
	Version        uint               `json:"version"`
	Order          *models.Order      `json:"order"`
}

var kitchenStatuses = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
}

type OrderService struct {
	orders repository.OrderRepository
	db     *gorm.DB
	events EventEmitter
	now    func() time.Time
}

func NewOrderService(orders repository.OrderRepository, db *gorm.DB, events EventEmitter) *OrderService {
	return &OrderService{orders: orders, db: db, events: events, now: time.Now}
}

// Create places a pending order. Names and prices come from the dish records,
// never from the caller.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	tableID := strings.TrimSpace(in.TableID)
	if tableID == "" {
		return nil, fmt.Errorf("%w: table_id is required", models.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one item", models.ErrValidation)
	}
	var tables int64
	err := s.db.WithContext(ctx).Model(&models.DiningTable{}).
		Where("code = ? AND active = ?", tableID, true).Count(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("look up table %q: %w", tableID, err)
	}
	if tables == 0 {
		return nil, fmt.Errorf("%w: table %q does not exist or is inactive", models.ErrValidation, tableID)
	}

	ids := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for dish %d must be at least 1", models.ErrValidation, item.DishID)
		}
		ids = append(ids, item.DishID)
	}

	var dishes []models.Dish
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}
	byID := make(map[uint]models.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	order := &models.Order{
		TableID:       tableID,
		RoomNumber:    in.RoomNumber,
		Note:          in.Note,
		PaymentMethod: in.PaymentMethod,
		Status:        models.StatusPending,
		Version:       1,
	}
	for _, item := range in.Items {
		dish, ok := byID[item.DishID]
		if !ok || !dish.Available {
			return nil, fmt.Errorf("%w: dish %d is not available", models.ErrValidation, item.DishID)
		}
		order.Items = append(order.Items, models.OrderItem{
			DishID:   dish.ID,
			Name:     dish.Name,
			Price:    dish.Price,
			Quantity: item.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
		"total":    order.TotalAmount,
	}).Info("order placed")

	s.emit(ctx, kds.EventNewOrder, order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, filter)
}

// KitchenOrders lists orders the kitchen still has to work on, oldest first.
func (s *OrderService) KitchenOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{Statuses: kitchenStatuses})
}

// UpdateStatus moves an order one step along its lifecycle. The write only
// lands if nobody else changed the order since it was read.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	expected := order.Version
	if err := order.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}
	order.Version = expected + 1

	if err := s.orders.UpdateStatus(ctx, order, expected); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       order.Status,
	}).Info("order status updated")

	s.emit(ctx, kds.EventOrderStatusUpdate, StatusChange{
		OrderID:        order.ID,
		TableID:        order.TableID,
		RoomNumber:     order.RoomNumber,
		PreviousStatus: previous,
		Status:         order.Status,
		Version:        order.Version,
		Order:          order,
	})
	return order, nil
}

// RecordPayment stores a payment and stamps its method on the order.
func (s *OrderService) RecordPayment(ctx context.Context, payment *models.Payment) error {
	if _, err := s.orders.FindByID(ctx, payment.OrderID); err != nil {
		return err
	}
	if payment.Reference == "" {
		payment.Reference = "PAY-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("record payment for order %d: %w", payment.OrderID, err)
	}
	// the order store may be Mongo, so the payment row is removed by hand
	if err := s.orders.SetPaymentMethod(ctx, payment.OrderID, payment.Method); err != nil {
		if derr := s.db.WithContext(ctx).Delete(&models.Payment{}, payment.ID).Error; derr != nil {
			utils.ErrorLogger.WithError(derr).WithField("payment_id", payment.ID).Error("orphan payment not removed")
		}
		payment.ID = 0
		return err
	}
	return nil
}

// emit never fails the request: the order is already stored.
func (s *OrderService) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, eventType, payload); err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", eventType).Error("kitchen event not delivered")
	}
}
