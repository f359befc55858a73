package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

type PaymentController struct {
	Orders *services.OrderService
}

func NewPaymentController(orders *services.OrderService) *PaymentController {
	return &PaymentController{Orders: orders}
}

// CreatePayment records money taken at the counter and stamps the order's
// payment method.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var payment models.Payment
	if err := c.ShouldBindJSON(&payment); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	payment.Base = models.Base{}
	payment.RecordedBy = utils.PrincipalID(c)

	if err := pc.Orders.RecordPayment(c.Request.Context(), &payment); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("order_id", payment.OrderID).Infof("payment %s recorded", payment.Reference)
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}
