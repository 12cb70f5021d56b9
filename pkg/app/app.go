package app

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/tem/pkg/cache"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/provider"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
)

// Deps contains all the dependencies needed to build the App
type Deps struct {
	RateProvider provider.HistoricalRateProvider
	RateCache    cache.HistoricalRateCache
	Resolver     *conversion.Resolver
	RateHistory  conversionSvc.RateHistory
	Logger       *slog.Logger

	closers []func() error
}

// OnClose registers a function run by Close, in reverse order.
func (d *Deps) OnClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

// Close releases connections held by the dependencies.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

type App struct {
	Deps              *Deps
	Config            *config.App
	ConversionService *conversionSvc.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	timeout := conversionSvc.DefaultResolveTimeout
	if cfg != nil && cfg.Conversion != nil {
		timeout = cfg.Conversion.ResolveTimeout
	}
	var opts []conversionSvc.Option
	if deps.RateHistory != nil {
		opts = append(opts, conversionSvc.WithRateHistory(deps.RateHistory))
	}
	return &App{
		Deps:              deps,
		Config:            cfg,
		ConversionService: conversionSvc.New(deps.Resolver, timeout, deps.Logger, opts...),
	}
}
