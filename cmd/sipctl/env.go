package main

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"pmsportal/internal/clients/cashfree"
	"pmsportal/internal/config"
	"pmsportal/internal/infra"
	"pmsportal/internal/repositories"
	"pmsportal/internal/services"
	"pmsportal/pkg/logger"
)

// env is the service graph the commands run against.
type env struct {
	cfg       *config.Config
	log       zerolog.Logger
	db        *gorm.DB
	orders    services.OrderService
	sips      services.SIPService
	reconcile services.ReconcileService
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	db, err := infra.InitPostgresql(cfg.PostgresURL, log)
	if err != nil {
		return nil, err
	}
	gateway, err := cashfree.NewClient(cashfree.Config{
		ClientID:                cfg.Gateway.ClientID,
		ClientSecret:            cfg.Gateway.ClientSecret,
		BaseURL:                 cfg.Gateway.BaseURL,
		OrdersAPIVersion:        cfg.Gateway.OrdersAPIVersion,
		SubscriptionsAPIVersion: cfg.Gateway.SubscriptionsAPIVersion,
		Timeout:                 cfg.Gateway.Timeout,
		MaxRetries:              cfg.Gateway.MaxRetries,
		RetryBaseDelay:          cfg.Gateway.RetryBaseDelay,
	}, log)
	if err != nil {
		infra.ClosePostgresql(db, log)
		return nil, err
	}

	repo := repositories.NewTransactionRepository(db)
	paymentCfg := services.PaymentConfig{ReturnURL: cfg.Gateway.ReturnURL, NotifyURL: cfg.Gateway.NotifyURL}
	return &env{
		cfg:       cfg,
		log:       log,
		db:        db,
		orders:    services.NewOrderService(repo, gateway, paymentCfg, log),
		sips:      services.NewSIPService(repo, gateway, paymentCfg, log),
		reconcile: services.NewReconcileService(repo, gateway, cfg.Sweep.Delay, log),
	}, nil
}

func (e *env) Close() {
	infra.ClosePostgresql(e.db, e.log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
