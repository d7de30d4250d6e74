package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pmsportal/internal/models/request_models"
	"pmsportal/internal/services"
	"pmsportal/pkg/utils"
)

type InquiryController struct {
	inquiryService services.InquiryServiceInterface
}

func NewInquiryController(inquiryService services.InquiryServiceInterface) *InquiryController {
	return &InquiryController{inquiryService: inquiryService}
}

// Submit godoc
// @Summary Submit an inquiry, referral or feedback form
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param request body request_models.InquiryRequest true "Form payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /inquiries [post]
func (i *InquiryController) Submit(c *gin.Context) {
	var req request_models.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	inquiry, err := i.inquiryService.Submit(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, inquiry, "Thank you, we will get back to you shortly")
}

// List godoc
// @Summary List submitted forms
// @Tags Inquiries
// @Param kind query string false "inquiry, referral or feedback"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /inquiries [get]
func (i *InquiryController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	inquiries, err := i.inquiryService.List(c.Request.Context(), c.Query("kind"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, inquiries, "Inquiries fetched successfully")
}
