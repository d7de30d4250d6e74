package gateway_fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pmsportal/internal/clients/cashfree"
	"pmsportal/internal/config"
	"pmsportal/internal/services"
)

var Module = fx.Provide(provideGateway)

func provideGateway(cfg *config.Config, log zerolog.Logger) (services.PaymentGateway, error) {
	return cashfree.NewClient(cashfree.Config{
		ClientID:                cfg.Gateway.ClientID,
		ClientSecret:            cfg.Gateway.ClientSecret,
		BaseURL:                 cfg.Gateway.BaseURL,
		OrdersAPIVersion:        cfg.Gateway.OrdersAPIVersion,
		SubscriptionsAPIVersion: cfg.Gateway.SubscriptionsAPIVersion,
		Timeout:                 cfg.Gateway.Timeout,
		MaxRetries:              cfg.Gateway.MaxRetries,
		RetryBaseDelay:          cfg.Gateway.RetryBaseDelay,
	}, log)
}
