package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := nc.DB.WithContext(c.Request.Context()).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		utils.RespondAppError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, fmt.Errorf("notification %d: %w", id, models.ErrNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"id": id})
}
