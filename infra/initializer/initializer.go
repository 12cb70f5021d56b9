package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/tem/infra"
	infra_cache "github.com/amirasaad/tem/infra/cache"
	infra_provider "github.com/amirasaad/tem/infra/provider"
	"github.com/amirasaad/tem/infra/repository/rate"
	"github.com/amirasaad/tem/pkg/app"
	"github.com/amirasaad/tem/pkg/cache"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/provider"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	logger := setupLogger(cfg.Log)
	return buildDependencies(cfg, logger)
}

func buildDependencies(cfg *config.App, logger *slog.Logger) (deps *app.Deps, err error) {
	deps = &app.Deps{Logger: logger}
	defer func() {
		if err != nil {
			_ = deps.Close()
			deps = nil
		}
	}()

	// Rate source: fixtures for local work, currencyapi.com otherwise
	var source provider.HistoricalRateProvider
	if cfg.Conversion.UseStaticRates {
		rates, loadErr := staticRates(cfg.Conversion.StaticRatesFile)
		if loadErr != nil {
			return deps, loadErr
		}
		source = infra_provider.NewStaticProvider(cfg.Conversion.BaseCurrency, rates)
		logger.Info("Using static exchange rates", "file", cfg.Conversion.StaticRatesFile)
	} else {
		api := infra_provider.NewCurrencyAPIProvider(cfg.CurrencyAPI, logger)
		if !api.IsConfigured() {
			logger.Warn("Currency API key not configured; rates must be entered manually")
		}
		source = infra_provider.NewRateLimitedProvider(
			api,
			cfg.CurrencyAPI.RequestsPerMinute,
			cfg.CurrencyAPI.BurstSize,
		)
	}

	// Rate history store
	if cfg.DB != nil && cfg.DB.Url != "" {
		db, dbErr := infra.NewDBConnection(cfg.DB, cfg.Env)
		if dbErr != nil {
			logger.Error("Failed to initialize database", "error", dbErr)
			return deps, dbErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return deps, dbErr
		}
		deps.OnClose(sqlDB.Close)
		repo := rate.New(db)
		deps.RateHistory = repo
		source = infra_provider.NewStoredHistoricalRate(source, repo, logger)
	}

	// Rate cache
	rateCache, closeCache, err := newRateCache(cfg, logger)
	if err != nil {
		return deps, err
	}
	deps.OnClose(closeCache)
	deps.RateCache = rateCache
	source = infra_provider.NewCachedHistoricalRate(source, rateCache, cfg.RateCache.TTL, logger)
	deps.RateProvider = source

	loc, err := cfg.Conversion.Location()
	if err != nil {
		return deps, fmt.Errorf("invalid CONVERSION_TIMEZONE %q: %w", cfg.Conversion.Timezone, err)
	}
	deps.Resolver = conversion.NewResolver(source,
		conversion.WithWindow(conversion.Window{LookbackDays: cfg.Conversion.LookbackDays}),
		conversion.WithLocation(loc),
		conversion.WithBaseCurrency(cfg.Conversion.BaseCurrency),
		conversion.WithLogger(logger),
	)
	logger.Info("Rate resolver ready",
		"provider", source.Name(),
		"base_currency", deps.Resolver.BaseCurrency(),
		"lookback_days", deps.Resolver.Window().LookbackDays,
		"timezone", loc.String(),
	)
	return deps, nil
}

func newRateCache(cfg *config.App, logger *slog.Logger) (cache.HistoricalRateCache, func() error, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		mem := infra_cache.NewMemoryCache(cfg.RateCache.CleanupInterval)
		return mem, func() error { mem.Close(); return nil }, nil
	}
	redisCache, err := infra_cache.NewRedisRateCache(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Redis rate cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		_ = redisCache.Close()
		return nil, nil, fmt.Errorf("failed to reach Redis: %w", err)
	}
	return redisCache, redisCache.Close, nil
}

func staticRates(path string) (map[string]decimal.Decimal, error) {
	if path == "" {
		return nil, nil
	}
	return infra_provider.LoadStaticRates(path)
}
