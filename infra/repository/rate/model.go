package rate

import (
	"time"

	"gorm.io/gorm"
)

// HistoricalRate represents a resolved historical rate record in the database.
type HistoricalRate struct {
	gorm.Model
	RateDate     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_historical_rate_day,priority:1"`
	FromCurrency string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_historical_rate_day,priority:2"`
	ToCurrency   string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_historical_rate_day,priority:3"`
	Rate         string    `gorm:"type:varchar(64);not null"`
	Provider     string    `gorm:"type:varchar(64);not null;default:'unknown'"`
	FetchedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for the HistoricalRate model.
func (HistoricalRate) TableName() string {
	return "historical_rates"
}
