package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

type QRController struct {
	QR *services.QRService
}

func NewQRController(qr *services.QRService) *QRController {
	return &QRController{QR: qr}
}

func (qc *QRController) TableQR(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	code, err := qc.QR.ForTable(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table QR code", code)
}

func (qc *QRController) TableSVG(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	svg, err := qc.QR.TableSVG(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (qc *QRController) RoomQR(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	code, err := qc.QR.ForRoom(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room QR code", code)
}

func (qc *QRController) Batch(c *gin.Context) {
	var body struct {
		TableIDs []uint `json:"table_ids" binding:"required,min=1,max=200"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	codes, err := qc.QR.Batch(c.Request.Context(), body.TableIDs)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table QR codes", codes)
}

// ScanTable is public; the ordering page calls it with the code from the QR link.
func (qc *QRController) ScanTable(c *gin.Context) {
	table, err := qc.QR.ScanTable(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table found", table)
}
