package config

import (
	"time"
)

type DB struct {
	// Url selects the driver: postgres:// URLs use postgres, sqlite: or file:
	// URLs use sqlite. Empty disables the rate history store.
	Url string `envconfig:"URL"`
}

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"exr:rate:"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// CurrencyAPI configures the currencyapi.com historical rates client.
//
//revive:disable
type CurrencyAPI struct {
	ApiKey            string        `envconfig:"API_KEY"`
	ApiUrl            string        `envconfig:"API_URL" default:"https://api.currencyapi.com/v3"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"REQUESTS_PER_MINUTE" default:"300"`
	BurstSize         int           `envconfig:"BURST_SIZE" default:"10"`
}

//revive:enable

// RateCache configures the historical rate cache. Historical rates do not
// change, so the TTL only bounds memory use.
type RateCache struct {
	TTL             time.Duration `envconfig:"TTL" default:"24h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"5m"`
}

// Conversion holds the currency resolution settings.
type Conversion struct {
	BaseCurrency    string        `envconfig:"BASE_CURRENCY" default:"INR"`
	LookbackDays    int           `envconfig:"LOOKBACK_DAYS" default:"365"`
	Timezone        string        `envconfig:"TIMEZONE" default:"Asia/Kolkata"`
	ResolveTimeout  time.Duration `envconfig:"RESOLVE_TIMEOUT" default:"2m"`
	UseStaticRates  bool          `envconfig:"USE_STATIC_RATES" default:"false"`
	StaticRatesFile string        `envconfig:"STATIC_RATES_FILE"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[tem]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Redis       *Redis       `envconfig:"REDIS"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	CurrencyAPI *CurrencyAPI `envconfig:"CURRENCY_API"`
	RateCache   *RateCache   `envconfig:"RATE_CACHE"`
	Conversion  *Conversion  `envconfig:"CONVERSION"`
}

// Location resolves the configured time zone, falling back to the local zone.
func (c *Conversion) Location() (*time.Location, error) {
	if c == nil || c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
