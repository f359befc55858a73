package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

type AdminController struct {
	Finance    *services.FinanceService
	Restaurant string
	Currency   string
}

func NewAdminController(finance *services.FinanceService, restaurant, currency string) *AdminController {
	return &AdminController{Finance: finance, Restaurant: restaurant, Currency: currency}
}

func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	dash, err := ac.Finance.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", dash)
}

// period defaults to the current calendar month.
func period(c *gin.Context) (time.Time, time.Time, error) {
	from, to, err := parseRange(c)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if from == nil {
		from = &start
	}
	if to == nil {
		end := from.AddDate(0, 1, 0)
		to = &end
	}
	return *from, *to, nil
}

func (ac *AdminController) FinanceSummary(c *gin.Context) {
	from, to, err := period(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	summary, err := ac.Finance.Summary(c.Request.Context(), from, to)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Financial summary", summary)
}

func (ac *AdminController) FinanceReport(c *gin.Context) {
	from, to, err := period(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	summary, err := ac.Finance.Summary(c.Request.Context(), from, to)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteReportPDF(&buf, summary, ac.Restaurant, ac.Currency); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filename := fmt.Sprintf("report-%s-%s.pdf", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
