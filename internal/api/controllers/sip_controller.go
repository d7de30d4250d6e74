package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pmsportal/internal/models/request_models"
	"pmsportal/internal/services"
	"pmsportal/pkg/middleware"
	"pmsportal/pkg/utils"
)

type SIPController struct {
	sipService services.SIPService
}

func NewSIPController(sipService services.SIPService) *SIPController {
	return &SIPController{sipService: sipService}
}

// SetupSIP godoc
// @Summary Register a SIP mandate with the gateway
// @Tags SIP
// @Accept json
// @Produce json
// @Param request body request_models.SetupSIPRequest true "SIP payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/setup-sip [post]
func (s *SIPController) SetupSIP(c *gin.Context) {
	var req request_models.SetupSIPRequest
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

	sip, err := s.sipService.SetupSIP(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sip, "SIP created successfully")
}

// GetSIP godoc
// @Summary Show one SIP, or list an account's SIPs when no subscription_id is given
// @Tags SIP
// @Produce json
// @Param subscription_id query string false "SIP order id"
// @Param nuvama_code query string false "Account code"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/manage-sip [get]
func (s *SIPController) GetSIP(c *gin.Context) {
	code, err := middleware.ScopeNuvamaCode(c, c.Query("nuvama_code"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if id := c.Query("subscription_id"); id != "" {
		detail, err := s.sipService.Get(c.Request.Context(), id, code)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, detail, "SIP fetched successfully")
		return
	}

	sips, err := s.sipService.ListForAccount(c.Request.Context(), code)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sips, "SIPs fetched successfully")
}

// ManageSIP godoc
// @Summary Pause, activate or cancel a SIP
// @Tags SIP
// @Accept json
// @Produce json
// @Param request body request_models.ManageSIPRequest true "CANCEL, PAUSE or ACTIVATE"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/manage-sip [post]
func (s *SIPController) ManageSIP(c *gin.Context) {
	s.lifecycle(c, func(c *gin.Context, req request_models.ManageSIPRequest) (any, error) {
		return s.sipService.Manage(c.Request.Context(), req.SubscriptionID, req.NuvamaCode, req.Action)
	})
}

// CancelSIP godoc
// @Summary Cancel a SIP
// @Tags SIP
// @Accept json
// @Produce json
// @Param request body request_models.ManageSIPRequest true "subscription_id and nuvama_code"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/cancel-sip [post]
func (s *SIPController) CancelSIP(c *gin.Context) {
	s.lifecycle(c, func(c *gin.Context, req request_models.ManageSIPRequest) (any, error) {
		return s.sipService.Cancel(c.Request.Context(), req.SubscriptionID, req.NuvamaCode)
	})
}

// PauseResumeSIP godoc
// @Summary Pause or resume a SIP
// @Tags SIP
// @Accept json
// @Produce json
// @Param request body request_models.ManageSIPRequest true "action is pause or resume"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/pause-resume-sip [post]
func (s *SIPController) PauseResumeSIP(c *gin.Context) {
	s.lifecycle(c, func(c *gin.Context, req request_models.ManageSIPRequest) (any, error) {
		return s.sipService.PauseResume(c.Request.Context(), req.SubscriptionID, req.NuvamaCode, req.Action)
	})
}

func (s *SIPController) lifecycle(c *gin.Context, run func(*gin.Context, request_models.ManageSIPRequest) (any, error)) {
	var req request_models.ManageSIPRequest
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

	result, err := run(c, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "SIP updated successfully")
}
