package rate

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirasaad/tem/pkg/provider"
)

type Repository struct {
	db *gorm.DB
}

// New creates a rate history repository using the provided *gorm.DB.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the historical_rates table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&HistoricalRate{})
}

// Find returns the stored rate for the day, or nil, nil when none is stored.
func (r *Repository) Find(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	var row HistoricalRate
	err := r.db.WithContext(ctx).
		Where("rate_date = ? AND from_currency = ? AND to_currency = ?", date.String(), from, to).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapModelToRate(&row)
}

// Save stores a rate. A rate already stored for the same day and pair is kept.
func (r *Repository) Save(ctx context.Context, rate *provider.RateInfo) error {
	row := mapRateToModel(rate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// ListByCurrency returns every stored day for a pair, newest first.
func (r *Repository) ListByCurrency(ctx context.Context, from, to string) ([]*provider.RateInfo, error) {
	var rows []HistoricalRate
	if err := r.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ?", from, to).
		Order("rate_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*provider.RateInfo, 0, len(rows))
	for i := range rows {
		info, err := mapModelToRate(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

func mapRateToModel(rate *provider.RateInfo) HistoricalRate {
	return HistoricalRate{
		RateDate:     rate.Date.String(),
		FromCurrency: rate.FromCurrency,
		ToCurrency:   rate.ToCurrency,
		Rate:         rate.Rate.String(),
		Provider:     rate.Provider,
		FetchedAt:    rate.FetchedAt,
	}
}

func mapModelToRate(row *HistoricalRate) (*provider.RateInfo, error) {
	date, err := civil.ParseDate(row.RateDate)
	if err != nil {
		return nil, fmt.Errorf("historical rate %d: bad date: %w", row.ID, err)
	}
	value, err := decimal.NewFromString(row.Rate)
	if err != nil {
		return nil, fmt.Errorf("historical rate %d: bad rate: %w", row.ID, err)
	}
	return &provider.RateInfo{
		FromCurrency: row.FromCurrency,
		ToCurrency:   row.ToCurrency,
		Rate:         value,
		Date:         date,
		Provider:     row.Provider,
		FetchedAt:    row.FetchedAt,
	}, nil
}
