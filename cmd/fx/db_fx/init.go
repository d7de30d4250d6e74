package db_fx

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"pmsportal/internal/config"
	"pmsportal/internal/infra"
)

var Module = fx.Provide(provideDB)

func provideDB(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg.PostgresURL, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
