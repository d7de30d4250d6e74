package payment_service_fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pmsportal/internal/config"
	"pmsportal/internal/repositories"
	"pmsportal/internal/services"
)

var Module = fx.Provide(
	providePaymentConfig,
	repositories.NewTransactionRepository,
	repositories.NewWebhookEventRepository,
	services.NewOrderService,
	services.NewSIPService,
	provideReconcileService,
	provideWebhookService,
)

func providePaymentConfig(cfg *config.Config) services.PaymentConfig {
	return services.PaymentConfig{ReturnURL: cfg.Gateway.ReturnURL, NotifyURL: cfg.Gateway.NotifyURL}
}

func provideReconcileService(cfg *config.Config, repo repositories.TransactionRepository, gateway services.PaymentGateway, log zerolog.Logger) services.ReconcileService {
	return services.NewReconcileService(repo, gateway, cfg.Sweep.Delay, log)
}

func provideWebhookService(cfg *config.Config, repo repositories.TransactionRepository, events repositories.WebhookEventRepository, mail services.IMailService, log zerolog.Logger) services.WebhookService {
	return services.NewWebhookService(cfg.Gateway.WebhookSecret, repo, events, mail, log)
}
