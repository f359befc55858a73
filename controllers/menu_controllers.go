package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

type MenuSection struct {
	Category models.Category `json:"category"`
	Dishes   []models.Dish   `json:"dishes"`
}

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetMenu is the public menu: available dishes grouped by category, empty
// categories left out.
func (mc *MenuController) GetMenu(c *gin.Context) {
	db := mc.DB.WithContext(c.Request.Context())

	var categories []models.Category
	if err := db.Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var dishes []models.Dish
	if err := db.Where("available = ?", true).Order("name asc").Find(&dishes).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	byCategory := make(map[uint][]models.Dish)
	for _, d := range dishes {
		byCategory[d.CategoryID] = append(byCategory[d.CategoryID], d)
	}
	menu := []MenuSection{}
	for _, cat := range categories {
		if len(byCategory[cat.ID]) == 0 {
			continue
		}
		menu = append(menu, MenuSection{Category: cat, Dishes: byCategory[cat.ID]})
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", menu)
}
