package infra

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirasaad/tem/infra/repository/rate"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/provider"
)

func TestNewDBConnection_RequiresURL(t *testing.T) {
	_, err := NewDBConnection(&config.DB{}, "test")
	assert.EqualError(t, err, "DATABASE_URL is not set")

	_, err = NewDBConnection(nil, "test")
	assert.Error(t, err)
}

func TestNewDBConnection_SQLiteMigrates(t *testing.T) {
	url := "sqlite:" + filepath.Join(t.TempDir(), "tem.db")
	db, err := NewDBConnection(&config.DB{Url: url}, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	assert.True(t, db.Migrator().HasTable(&rate.HistoricalRate{}))

	repo := rate.New(db)
	day := civil.Date{Year: 2026, Month: time.October, Day: 13}
	require.NoError(t, repo.Save(context.Background(), &provider.RateInfo{
		FromCurrency: "USD",
		ToCurrency:   "INR",
		Rate:         decimal.RequireFromString("83.50"),
		Date:         day,
		Provider:     "currencyapi",
		FetchedAt:    time.Now(),
	}))
	got, err := repo.Find(context.Background(), day, "USD", "INR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "83.5", got.Rate.String())
}

func TestDialectorFor(t *testing.T) {
	assert.Equal(t, "postgres", dialectorFor("postgres://u:p@localhost:5432/tem").Name())
	assert.Equal(t, "postgres", dialectorFor("postgresql://localhost/tem").Name())
	assert.Equal(t, "sqlite", dialectorFor("sqlite:/tmp/tem.db").Name())
	assert.Equal(t, "sqlite", dialectorFor("tem.db").Name())
}
