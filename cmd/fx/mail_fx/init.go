package mail_fx

import (
	"go.uber.org/fx"

	"pmsportal/internal/config"
	"pmsportal/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config) (services.IMailService, error) {
	return services.NewSMTPMailService(cfg.SMTP)
}
