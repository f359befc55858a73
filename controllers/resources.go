package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

// Resources holds the CRUD controllers of the back office.
type Resources struct {
	Categories    *ResourceController[models.Category, *models.Category]
	Dishes        *ResourceController[models.Dish, *models.Dish]
	Tables        *ResourceController[models.DiningTable, *models.DiningTable]
	Rooms         *ResourceController[models.Room, *models.Room]
	Staff         *ResourceController[models.Staff, *models.Staff]
	Ingredients   *ResourceController[models.Ingredient, *models.Ingredient]
	Suppliers     *ResourceController[models.Supplier, *models.Supplier]
	Partners      *ResourceController[models.Partner, *models.Partner]
	Expenses      *ResourceController[models.Expense, *models.Expense]
	Payments      *ResourceController[models.Payment, *models.Payment]
	Notifications *ResourceController[models.Notification, *models.Notification]
}

func NewResources(db *gorm.DB) *Resources {
	return &Resources{
		Categories: NewResourceController[models.Category](db, ResourceOptions[models.Category]{
			Name:  "category",
			Order: "sort_order asc, name asc",
		}),
		Dishes: NewResourceController[models.Dish](db, ResourceOptions[models.Dish]{
			Name:    "dish",
			Preload: []string{"Category"},
			New:     func() *models.Dish { return &models.Dish{Available: true} },
			Filter:  filterDishes,
		}),
		Tables: NewResourceController[models.DiningTable](db, ResourceOptions[models.DiningTable]{
			Name:  "table",
			Order: "code asc",
			New:   func() *models.DiningTable { return &models.DiningTable{Seats: 2, Active: true} },
		}),
		Rooms: NewResourceController[models.Room](db, ResourceOptions[models.Room]{
			Name:  "room",
			Order: "number asc",
			New:   func() *models.Room { return &models.Room{Status: models.RoomAvailable} },
			Filter: func(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
				if status := c.Query("status"); status != "" {
					q = q.Where("status = ?", status)
				}
				return q, nil
			},
		}),
		Staff: NewResourceController[models.Staff](db, ResourceOptions[models.Staff]{
			Name: "staff",
			New:  func() *models.Staff { return &models.Staff{Active: true} },
		}),
		Ingredients: NewResourceController[models.Ingredient](db, ResourceOptions[models.Ingredient]{
			Name:    "ingredient",
			Order:   "name asc",
			Preload: []string{"Supplier"},
			Filter:  filterIngredients,
		}),
		Suppliers: NewResourceController[models.Supplier](db, ResourceOptions[models.Supplier]{
			Name:  "supplier",
			Order: "name asc",
		}),
		Partners: NewResourceController[models.Partner](db, ResourceOptions[models.Partner]{
			Name: "partner",
			New:  func() *models.Partner { return &models.Partner{Active: true} },
		}),
		Expenses: NewResourceController[models.Expense](db, ResourceOptions[models.Expense]{
			Name:   "expense",
			Order:  "spent_at desc, id desc",
			Filter: filterExpenses,
			BeforeWrite: func(c *gin.Context, e *models.Expense) error {
				if e.SpentAt.IsZero() {
					e.SpentAt = time.Now()
				}
				if e.RecordedBy == nil {
					e.RecordedBy = utils.PrincipalID(c)
				}
				return nil
			},
		}),
		Payments: NewResourceController[models.Payment](db, ResourceOptions[models.Payment]{
			Name:  "payment",
			Order: "paid_at desc, id desc",
			Filter: func(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
				if raw := c.Query("order_id"); raw != "" {
					id, err := strconv.ParseUint(raw, 10, 64)
					if err != nil {
						return nil, fmt.Errorf("invalid order_id %q", raw)
					}
					q = q.Where("order_id = ?", id)
				}
				return q, nil
			},
		}),
		Notifications: NewResourceController[models.Notification](db, ResourceOptions[models.Notification]{
			Name:  "notification",
			Order: "created_at desc, id desc",
			Filter: func(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
				unread, err := parseBoolQuery(c, "unread")
				if err != nil {
					return nil, err
				}
				if unread != nil && *unread {
					q = q.Where(map[string]interface{}{"read": false})
				}
				return q, nil
			},
		}),
	}
}

func filterDishes(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id %q", raw)
		}
		q = q.Where("category_id = ?", id)
	}
	available, err := parseBoolQuery(c, "available")
	if err != nil {
		return nil, err
	}
	if available != nil {
		q = q.Where("available = ?", *available)
	}
	return q, nil
}

func filterIngredients(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	low, err := parseBoolQuery(c, "low_stock")
	if err != nil {
		return nil, err
	}
	if low != nil && *low {
		q = q.Where("quantity <= reorder_level")
	}
	return q, nil
}

func filterExpenses(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	from, to, err := parseRange(c)
	if err != nil {
		return nil, err
	}
	if from != nil {
		q = q.Where("spent_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("spent_at < ?", *to)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	return q, nil
}
