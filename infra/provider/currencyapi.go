package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/provider"
)

const (
	currencyAPIName = "currencyapi"

	// placeholderAPIKey is the value shipped in the sample .env file.
	placeholderAPIKey = "your_currency_api_key_here"
)

// CurrencyAPIProvider implements provider.HistoricalRateProvider for currencyapi.com (v3).
type CurrencyAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// CurrencyAPIHistoricalResponse represents the v3 /historical response.
// See: https://currencyapi.com/docs/historical
// Example: { "meta": { "last_updated_at": "2026-10-13T23:59:59Z" }, "data": { "INR": { "code": "INR", "value": 83.5 } } }
type CurrencyAPIHistoricalResponse struct {
	Meta struct {
		LastUpdatedAt string `json:"last_updated_at"`
	} `json:"meta"`
	Data map[string]struct {
		Code  string          `json:"code"`
		Value decimal.Decimal `json:"value"`
	} `json:"data"`
	// Error fields (if any)
	Message string `json:"message,omitempty"`
}

// NewCurrencyAPIProvider creates a new currencyapi.com provider using config
func NewCurrencyAPIProvider(cfg *config.CurrencyAPI, logger *slog.Logger) *CurrencyAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CurrencyAPIProvider{
		apiKey:  strings.TrimSpace(cfg.ApiKey),
		baseURL: strings.TrimRight(cfg.ApiUrl, "/"), // Should be like https://api.currencyapi.com/v3
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// HistoricalRate fetches the rate published for date.
func (p *CurrencyAPIProvider) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	if !p.IsConfigured() {
		return nil, provider.ErrProviderNotConfigured
	}

	q := url.Values{}
	q.Set("date", date.String())
	q.Set("base_currency", from)
	q.Set("currencies", to)
	endpoint := p.baseURL + "/historical?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, p.fail(date, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, p.fail(date, fmt.Errorf("failed to make request: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, p.fail(date, fmt.Errorf(
			"%w: API returned status %d: %s",
			provider.ErrProviderUnavailable,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		))
	}

	var apiResp CurrencyAPIHistoricalResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, p.fail(date, fmt.Errorf("failed to decode response: %w", err))
	}

	entry, ok := apiResp.Data[to]
	if !ok || !entry.Value.IsPositive() {
		return nil, p.fail(date, fmt.Errorf("%w: %s not in response", provider.ErrRateNotFound, to))
	}

	p.logger.Debug("Fetched historical rate",
		"date", date.String(),
		"from", from,
		"to", to,
		"rate", entry.Value.String(),
	)

	return &provider.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         entry.Value,
		Date:         date,
		Provider:     currencyAPIName,
		FetchedAt:    p.now().UTC(),
	}, nil
}

func (p *CurrencyAPIProvider) fail(date civil.Date, err error) error {
	return &provider.ProviderError{Provider: currencyAPIName, Date: date, Err: err}
}

// Name returns the provider's name
func (p *CurrencyAPIProvider) Name() string {
	return currencyAPIName
}

// IsConfigured reports whether an API key has been set.
func (p *CurrencyAPIProvider) IsConfigured() bool {
	return p.apiKey != "" && p.apiKey != placeholderAPIKey
}

// Ensure CurrencyAPIProvider implements the provider interfaces
var (
	_ provider.HistoricalRateProvider = (*CurrencyAPIProvider)(nil)
	_ provider.ConfigChecker          = (*CurrencyAPIProvider)(nil)
)
