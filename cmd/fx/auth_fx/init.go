package auth_fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pmsportal/internal/config"
	"pmsportal/internal/repositories"
	"pmsportal/internal/services"
	mem "pmsportal/pkg/memcache"
	"pmsportal/pkg/utils"
)

var Module = fx.Provide(
	repositories.NewClientRepository,
	provideTokenManager,
	provideAuthService,
)

func provideTokenManager(cfg *config.Config) (*utils.TokenManager, error) {
	return utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideAuthService(cfg *config.Config, clients repositories.ClientRepository, otps mem.OTPStore, tokens *utils.TokenManager, mail services.IMailService, log zerolog.Logger) services.AuthServiceInterface {
	return services.NewAuthService(clients, otps, tokens, mail, cfg.Auth, log)
}
