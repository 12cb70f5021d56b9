package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/tem/pkg/provider"
)

const staticProviderName = "static"

// DefaultStaticRates are the INR rates served by the static provider when no
// fixture file is configured.
var DefaultStaticRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("83.50"),
	"EUR": decimal.RequireFromString("90.10"),
	"GBP": decimal.RequireFromString("105.20"),
	"AED": decimal.RequireFromString("22.73"),
	"SGD": decimal.RequireFromString("61.80"),
	"JPY": decimal.RequireFromString("0.56"),
}

// StaticProvider serves fixed rates for local development and demos. Like a
// real market feed it publishes nothing on weekends, so weekend dates fall
// back to the preceding Friday.
type StaticProvider struct {
	quote string
	rates map[string]decimal.Decimal
}

// NewStaticProvider creates a provider quoting rates in quote. A nil map uses
// DefaultStaticRates.
func NewStaticProvider(quote string, rates map[string]decimal.Decimal) *StaticProvider {
	if rates == nil {
		rates = DefaultStaticRates
	}
	normalized := make(map[string]decimal.Decimal, len(rates))
	for code, r := range rates {
		normalized[strings.ToUpper(code)] = r
	}
	return &StaticProvider{quote: strings.ToUpper(quote), rates: normalized}
}

// LoadStaticRates reads a JSON object of currency code to rate, e.g.
// {"USD": "83.50", "EUR": 90.1}.
func LoadStaticRates(path string) (map[string]decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static rates: %w", err)
	}
	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse static rates %s: %w", path, err)
	}
	return rates, nil
}

func (p *StaticProvider) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if to != p.quote {
		return nil, provider.ErrRateNotFound
	}
	weekday := date.In(time.UTC).Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return nil, provider.ErrRateNotFound
	}
	r, ok := p.rates[from]
	if !ok {
		return nil, provider.ErrRateNotFound
	}
	return &provider.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         r,
		Date:         date,
		Provider:     staticProviderName,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

func (p *StaticProvider) Name() string {
	return staticProviderName
}
