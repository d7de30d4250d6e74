package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pmsportal/internal/models/request_models"
	"pmsportal/internal/models/response_models"
	"pmsportal/internal/services"
	"pmsportal/pkg/middleware"
	"pmsportal/pkg/utils"
)

type AuthController struct {
	authService  services.AuthServiceInterface
	secureCookie bool
}

func NewAuthController(authService services.AuthServiceInterface, secureCookie bool) *AuthController {
	return &AuthController{authService: authService, secureCookie: secureCookie}
}

// RequestOTP godoc
// @Summary Mail a one-time login code to the account's registered email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.OTPRequest true "Account code"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /auth/otp/request [post]
func (a *AuthController) RequestOTP(c *gin.Context) {
	var req request_models.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	sent, err := a.authService.RequestOTP(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sent, "OTP sent")
}

// VerifyOTP godoc
// @Summary Exchange a login code for a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.OTPVerifyRequest true "Account code and OTP"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /auth/otp/verify [post]
func (a *AuthController) VerifyOTP(c *gin.Context) {
	var req request_models.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := a.authService.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.setSession(c, session)
	utils.RespondSuccess(c, session, "Login successful")
}

// AdminLogin godoc
// @Summary Sign in to the back office
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /auth/admin/login [post]
func (a *AuthController) AdminLogin(c *gin.Context) {
	var req request_models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := a.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.setSession(c, session)
	utils.RespondSuccess(c, session, "Login successful")
}

func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", a.secureCookie, true)
	utils.RespondSuccess(c, nil, "Logged out")
}

func (a *AuthController) setSession(c *gin.Context, session *response_models.SessionResponse) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", a.secureCookie, true)
}
