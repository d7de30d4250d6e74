package memcache_fx

import (
	"go.uber.org/fx"

	"pmsportal/internal/config"
	mem "pmsportal/pkg/memcache"
)

var Module = fx.Provide(provideOTPStore)

func provideOTPStore(cfg *config.Config) mem.OTPStore {
	return mem.NewOTPCache(cfg.Auth.OTPMaxAttempts)
}
