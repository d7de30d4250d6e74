package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pmsportal/internal/models/request_models"
	"pmsportal/internal/services"
	"pmsportal/pkg/middleware"
	"pmsportal/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder godoc
// @Summary Create a one-time or new-strategy payment order
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateOrderRequest true "Order payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/create-order [post]
func (o *OrderController) CreateOrder(c *gin.Context) {
	var req request_models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	code, err := middleware.ScopeNuvamaCode(c, req.NuvamaCode)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	req.NuvamaCode = code

	order, err := o.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, order, "Order created successfully")
}

// PaymentDetails godoc
// @Summary Look up a transaction by order, gateway or payment id
// @Tags Payments
// @Produce json
// @Param id query string true "Any identifier of the transaction"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/payment-details [get]
func (o *OrderController) PaymentDetails(c *gin.Context) {
	details, err := o.orderService.PaymentDetails(c.Request.Context(), c.Query("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, details, "Payment details fetched successfully")
}
