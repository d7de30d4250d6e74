package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pmsportal/internal/services"
	"pmsportal/pkg/utils"
)

const maxWebhookBody = 1 << 20

type WebhookController struct {
	webhookService services.WebhookService
}

func NewWebhookController(webhookService services.WebhookService) *WebhookController {
	return &WebhookController{webhookService: webhookService}
}

// Handle receives gateway callbacks. The body is read raw because the signature covers
// the exact bytes.
func (w *WebhookController) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable request body")
		return
	}

	result, err := w.webhookService.Handle(c.Request.Context(), services.WebhookDelivery{
		Signature:      c.GetHeader("x-webhook-signature"),
		Timestamp:      c.GetHeader("x-webhook-timestamp"),
		IdempotencyKey: c.GetHeader("x-idempotency-key"),
		RawBody:        body,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
