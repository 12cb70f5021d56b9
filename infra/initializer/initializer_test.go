package initializer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra_cache "github.com/amirasaad/tem/infra/cache"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/conversion"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() *config.App {
	return &config.App{
		Env:         "test",
		Log:         &config.Log{Format: "text"},
		DB:          &config.DB{},
		Redis:       &config.Redis{KeyPrefix: "exr:rate:"},
		CurrencyAPI: &config.CurrencyAPI{ApiUrl: "http://127.0.0.1:1", HTTPTimeout: time.Second},
		RateCache:   &config.RateCache{TTL: time.Hour},
		Conversion: &config.Conversion{
			BaseCurrency: "INR",
			LookbackDays: 365,
			Timezone:     "UTC",
		},
	}
}

func TestBuildDependencies_StaticRatesWithStoreAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Conversion.UseStaticRates = true
	cfg.DB.Url = "sqlite:" + filepath.Join(t.TempDir(), "tem.db")
	cfg.Redis.URL = "redis://" + mr.Addr()

	deps, err := buildDependencies(cfg, discard)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, deps.Close()) })

	assert.IsType(t, &infra_cache.RedisRateCache{}, deps.RateCache)
	assert.Equal(t, "static", deps.RateProvider.Name())

	// a weekday lookup goes through the store and lands in Redis
	tuesday := civil.DateOf(time.Now().UTC())
	for tuesday.In(time.UTC).Weekday() != time.Tuesday {
		tuesday = tuesday.AddDays(-1)
	}
	res, err := deps.Resolver.ResolveRate(context.Background(), tuesday, "USD")
	require.NoError(t, err)
	assert.Equal(t, "83.5", res.Rate.String())
	assert.True(t, mr.Exists("exr:rate:"+tuesday.String()+":USD-INR"))

	require.NotNil(t, deps.RateHistory)
	history, err := deps.RateHistory.ListByCurrency(context.Background(), "USD", "INR")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, tuesday, history[0].Date)
}

func TestBuildDependencies_UnconfiguredAPI(t *testing.T) {
	deps, err := buildDependencies(testConfig(), discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	assert.IsType(t, &infra_cache.MemoryCache{}, deps.RateCache)
	assert.Equal(t, "currencyapi", deps.RateProvider.Name())
	assert.Nil(t, deps.RateHistory)

	_, err = deps.Resolver.ResolveRate(context.Background(), civil.DateOf(time.Now().UTC()), "USD")
	assert.ErrorIs(t, err, conversion.ErrProviderNotConfigured)
}

func TestBuildDependencies_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Conversion.Timezone = "Nowhere/Special"
	_, err := buildDependencies(cfg, discard)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Redis.URL = "not-a-url"
	_, err = buildDependencies(cfg, discard)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Conversion.UseStaticRates = true
	cfg.Conversion.StaticRatesFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = buildDependencies(cfg, discard)
	assert.Error(t, err)
}

func TestStaticRatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"USD":"84.00"}`), 0o600))
	rates, err := staticRates(path)
	require.NoError(t, err)
	assert.Equal(t, "84", rates["USD"].String())

	none, err := staticRates("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "json", Prefix: "[tem]"})
	logger.Info("Rate resolver ready", "currency", "USD")

	assert.Contains(t, buf.String(), `"currency":"USD"`)
	assert.Contains(t, buf.String(), "Rate resolver ready")
	assert.Same(t, logger, slog.Default())
}
