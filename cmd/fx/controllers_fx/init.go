package controllers_fx

import (
	"go.uber.org/fx"

	"pmsportal/internal/api/controllers"
	"pmsportal/internal/config"
	"pmsportal/internal/services"
)

var Module = fx.Options(
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewSIPController),
	fx.Provide(controllers.NewReconcileController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(controllers.NewInquiryController),
	fx.Provide(provideAuthController),
)

func provideAuthController(cfg *config.Config, auth services.AuthServiceInterface) *controllers.AuthController {
	return controllers.NewAuthController(auth, cfg.Auth.CookieSecure)
}
