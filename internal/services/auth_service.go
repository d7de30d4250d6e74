package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pmsportal/internal/config"
	"pmsportal/internal/models/request_models"
	"pmsportal/internal/models/response_models"
	"pmsportal/internal/repositories"
	mem "pmsportal/pkg/memcache"
	"pmsportal/pkg/utils"
)

const otpLength = 6

type AuthServiceInterface interface {
	RequestOTP(ctx context.Context, req request_models.OTPRequest) (*response_models.OTPRequestResponse, error)
	VerifyOTP(ctx context.Context, req request_models.OTPVerifyRequest) (*response_models.SessionResponse, error)
	AdminLogin(ctx context.Context, req request_models.AdminLoginRequest) (*response_models.SessionResponse, error)
}

type AuthService struct {
	clientRepo repositories.ClientRepository
	otps       mem.OTPStore
	tokens     *utils.TokenManager
	mail       IMailService
	cfg        config.AuthConfig
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(clientRepo repositories.ClientRepository, otps mem.OTPStore, tokens *utils.TokenManager, mail IMailService, cfg config.AuthConfig, log zerolog.Logger) AuthServiceInterface {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	return &AuthService{
		clientRepo: clientRepo,
		otps:       otps,
		tokens:     tokens,
		mail:       mail,
		cfg:        cfg,
		log:        log.With().Str("component", "auth").Logger(),
		now:        time.Now,
	}
}

func (a *AuthService) RequestOTP(ctx context.Context, req request_models.OTPRequest) (*response_models.OTPRequestResponse, error) {
	code := strings.TrimSpace(req.NuvamaCode)
	if code == "" {
		return nil, fmt.Errorf("%w: nuvama_code is required", utils.ErrValidation)
	}

	client, err := a.clientRepo.FindByNuvamaCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if client == nil || client.Email == "" {
		return nil, fmt.Errorf("%w: %s", utils.ErrClientNotFound, code)
	}

	otp, err := utils.GenerateOtpCode(otpLength)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(otp)
	if err != nil {
		return nil, err
	}

	expiresAt := a.now().Add(a.cfg.OTPTTL)
	a.otps.Put(code, mem.OTPEntry{Hash: hash, Email: client.Email, ExpiresAt: expiresAt})

	if err := a.mail.SendOTP(client.Email, otp, a.cfg.OTPTTL); err != nil {
		return nil, fmt.Errorf("send otp: %w", err)
	}

	a.log.Info().Str("nuvama_code", code).Msg("OTP issued")
	return &response_models.OTPRequestResponse{Destination: maskEmail(client.Email), ExpiresAt: expiresAt}, nil
}

func (a *AuthService) VerifyOTP(ctx context.Context, req request_models.OTPVerifyRequest) (*response_models.SessionResponse, error) {
	code := strings.TrimSpace(req.NuvamaCode)
	_, err := a.otps.Check(code, func(e mem.OTPEntry) bool {
		return utils.ComparePasswords(e.Hash, strings.TrimSpace(req.Code)) == nil
	})
	switch {
	case errors.Is(err, mem.ErrOTPNotFound):
		return nil, utils.ErrOTPExpired
	case errors.Is(err, mem.ErrOTPLocked):
		a.log.Warn().Str("nuvama_code", code).Msg("OTP locked after too many attempts")
		return nil, fmt.Errorf("%w: too many attempts, request a new code", utils.ErrOTPExpired)
	case err != nil:
		return nil, utils.ErrInvalidCredentials
	}

	return a.issue(code, code, utils.RoleClient)
}

func (a *AuthService) AdminLogin(ctx context.Context, req request_models.AdminLoginRequest) (*response_models.SessionResponse, error) {
	if a.cfg.AdminPasswordHash == "" || req.Username != a.cfg.AdminUsername {
		return nil, utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(a.cfg.AdminPasswordHash, req.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	a.log.Info().Str("username", req.Username).Msg("Admin signed in")
	return a.issue(req.Username, "", utils.RoleAdmin)
}

func (a *AuthService) issue(subject, nuvamaCode, role string) (*response_models.SessionResponse, error) {
	token, err := a.tokens.CreateToken(subject, nuvamaCode, role)
	if err != nil {
		return nil, err
	}
	return &response_models.SessionResponse{
		Token:      token,
		Role:       role,
		NuvamaCode: nuvamaCode,
		ExpiresAt:  a.now().Add(a.tokens.TTL()),
	}, nil
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
