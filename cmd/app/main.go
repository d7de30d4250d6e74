package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"pmsportal/cmd/fx/auth_fx"
	"pmsportal/cmd/fx/config_fx"
	"pmsportal/cmd/fx/controllers_fx"
	"pmsportal/cmd/fx/db_fx"
	"pmsportal/cmd/fx/gateway_fx"
	"pmsportal/cmd/fx/inquiry_fx"
	"pmsportal/cmd/fx/mail_fx"
	"pmsportal/cmd/fx/memcache_fx"
	"pmsportal/cmd/fx/payment_service_fx"
	"pmsportal/cmd/fx/scheduler_fx"
	"pmsportal/internal/api/controllers"
	"pmsportal/internal/config"
	"pmsportal/pkg/middleware"
	"pmsportal/pkg/utils"
)

func main() {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		gateway_fx.Module,
		mail_fx.Module,
		memcache_fx.Module,
		payment_service_fx.Module,
		auth_fx.Module,
		inquiry_fx.Module,
		controllers_fx.Module,
		scheduler_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
		fx.NopLogger,
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("HTTP server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type routeDeps struct {
	fx.In

	Config    *config.Config
	Log       zerolog.Logger
	DB        *gorm.DB
	Tokens    *utils.TokenManager
	Orders    *controllers.OrderController
	SIPs      *controllers.SIPController
	Reconcile *controllers.ReconcileController
	Webhooks  *controllers.WebhookController
	Inquiries *controllers.InquiryController
	Auth      *controllers.AuthController
}

func ProvideRouter(d routeDeps) *gin.Engine {
	if d.Config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			utils.RespondError(c, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		utils.RespondSuccess(c, gin.H{"status": "ok"}, "")
	})

	api := r.Group("/api")

	auth := d.Tokens
	anyRole := []gin.HandlerFunc{middleware.JWTAuthMiddleware(auth), middleware.RoleMiddleware(utils.RoleClient, utils.RoleAdmin)}
	adminOnly := []gin.HandlerFunc{middleware.JWTAuthMiddleware(auth), middleware.RoleMiddleware(utils.RoleAdmin)}

	payments := api.Group("/payments")
	// the gateway signs its callbacks, no session
	payments.POST("/webhook", d.Webhooks.Handle)

	clientPayments := payments.Group("", anyRole...)
	clientPayments.POST("/create-order", d.Orders.CreateOrder)
	clientPayments.POST("/setup-sip", d.SIPs.SetupSIP)
	clientPayments.GET("/manage-sip", d.SIPs.GetSIP)
	clientPayments.POST("/manage-sip", d.SIPs.ManageSIP)
	clientPayments.POST("/cancel-sip", d.SIPs.CancelSIP)
	clientPayments.POST("/pause-resume-sip", d.SIPs.PauseResumeSIP)

	adminPayments := payments.Group("", adminOnly...)
	adminPayments.GET("/sync-client-orders", d.Reconcile.SyncClientOrders)
	adminPayments.GET("/payment-details", d.Orders.PaymentDetails)

	api.POST("/inquiries", d.Inquiries.Submit)
	api.GET("/inquiries", append(adminOnly, d.Inquiries.List)...)

	authGroup := api.Group("/auth")
	authGroup.POST("/otp/request", d.Auth.RequestOTP)
	authGroup.POST("/otp/verify", d.Auth.VerifyOTP)
	authGroup.POST("/admin/login", d.Auth.AdminLogin)
	authGroup.POST("/logout", d.Auth.Logout)
}
