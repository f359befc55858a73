package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

type PrintController struct {
	Printer *services.PrintService
}

func NewPrintController(printer *services.PrintService) *PrintController {
	return &PrintController{Printer: printer}
}

func (pc *PrintController) PrintOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := pc.Printer.PrintOrder(c.Request.Context(), id)
	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Ticket sent to printer", gin.H{"order_id": id})
	case errors.Is(err, services.ErrPrinterNotConfigured):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	case errors.Is(err, services.ErrPrinterUnavailable):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondAppError(c, err)
	}
}
