package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

type ConfigController struct {
	Settings *services.SettingsService
}

func NewConfigController(settings *services.SettingsService) *ConfigController {
	return &ConfigController{Settings: settings}
}

func (cc *ConfigController) List(c *gin.Context) {
	settings, err := cc.Settings.All(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "System configuration", settings)
}

func (cc *ConfigController) Set(c *gin.Context) {
	var body struct {
		Value *string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	setting, err := cc.Settings.Set(c.Request.Context(), c.Param("key"), *body.Value, utils.PrincipalID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Configuration saved", setting)
}
