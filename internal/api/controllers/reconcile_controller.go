package controllers

import (
	"github.com/gin-gonic/gin"

	"pmsportal/internal/services"
	"pmsportal/pkg/utils"
)

type ReconcileController struct {
	reconcileService services.ReconcileService
}

func NewReconcileController(reconcileService services.ReconcileService) *ReconcileController {
	return &ReconcileController{reconcileService: reconcileService}
}

// SyncClientOrders godoc
// @Summary Re-fetch an account's open transactions from the gateway
// @Tags Payments
// @Produce json
// @Param nuvama_code query string true "Account code"
// @Param status query string false "pending or unsync"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/sync-client-orders [get]
func (r *ReconcileController) SyncClientOrders(c *gin.Context) {
	report, err := r.reconcileService.SyncClient(c.Request.Context(), c.Query("nuvama_code"), c.Query("status"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Sync completed")
}
