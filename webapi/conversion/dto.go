package conversion

import (
	conv "github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/provider"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
)

// QuoteRequest is the body of POST /api/conversions/quote. Values are taken
// as typed in the form; amount and manualRate are numeric strings.
type QuoteRequest struct {
	Date       string `json:"date" validate:"required"`
	Currency   string `json:"currency" validate:"required,len=3,alpha"`
	Amount     string `json:"amount"`
	ManualRate string `json:"manualRate,omitempty"`
}

// ResolutionDTO is the response body of a resolved rate.
type ResolutionDTO struct {
	Currency      string `json:"currency"`
	Rate          string `json:"rate"`
	RateDate      string `json:"rateDate"`
	RequestedDate string `json:"requestedDate"`
	Fallback      bool   `json:"fallback"`
	Attempts      int    `json:"attempts"`
	Source        string `json:"source,omitempty"`
}

// QuoteDTO is the response body of a quote.
type QuoteDTO struct {
	SessionID        string               `json:"sessionId"`
	State            string               `json:"state"`
	ExchangeRate     string               `json:"exchangeRate"`
	ConversionResult *string              `json:"conversionResult"`
	ConversionData   *conv.ConversionData `json:"conversionData"`
	RateDate         string               `json:"rateDate,omitempty"`
}

// RateDTO is one stored day of a currency pair.
type RateDTO struct {
	Date     string `json:"date"`
	From     string `json:"from"`
	To       string `json:"to"`
	Rate     string `json:"rate"`
	Provider string `json:"provider,omitempty"`
}

func ToRateDTOs(rates []*provider.RateInfo) []RateDTO {
	out := make([]RateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, RateDTO{
			Date:     r.Date.String(),
			From:     r.FromCurrency,
			To:       r.ToCurrency,
			Rate:     r.Rate.String(),
			Provider: r.Provider,
		})
	}
	return out
}

func ToResolutionDTO(res *conv.Resolution) ResolutionDTO {
	return ResolutionDTO{
		Currency:      res.Currency,
		Rate:          res.Rate.String(),
		RateDate:      res.RateDate.String(),
		RequestedDate: res.RequestedDate.String(),
		Fallback:      res.IsFallback(),
		Attempts:      res.Attempts,
		Source:        res.Source,
	}
}

func ToQuoteDTO(q *conversionSvc.Quote) QuoteDTO {
	dto := QuoteDTO{
		SessionID:        q.SessionID,
		State:            q.State.String(),
		ExchangeRate:     q.ExchangeRate,
		ConversionResult: q.ConversionResult,
		ConversionData:   q.ConversionData,
	}
	if q.RateDate != nil {
		dto.RateDate = q.RateDate.String()
	}
	return dto
}

// ResolveMessage is the status line for a resolved rate.
func ResolveMessage(res *conv.Resolution) string {
	if msg := res.Message(); msg != "" {
		return msg
	}
	return "Rate resolved"
}
