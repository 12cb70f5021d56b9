package conversion

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// State is where a conversion attempt currently stands.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateResolvedExact
	StateResolvedFallback
	StateFailedFuture
	StateFailedTooOld
	StateFailedNoRate
	StateFailedNotConfigured
	StateManualOverride
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateResolving:           "resolving",
	StateResolvedExact:       "resolved_exact",
	StateResolvedFallback:    "resolved_fallback",
	StateFailedFuture:        "failed_future",
	StateFailedTooOld:        "failed_too_old",
	StateFailedNoRate:        "failed_no_rate",
	StateFailedNotConfigured: "failed_not_configured",
	StateManualOverride:      "manual_override",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether the attempt has settled until the next date or
// currency change.
func (s State) IsTerminal() bool {
	return s != StateIdle && s != StateResolving
}

func stateForFailure(kind FailureKind) State {
	switch kind {
	case KindFutureDate:
		return StateFailedFuture
	case KindDateTooOld:
		return StateFailedTooOld
	case KindNotConfigured:
		return StateFailedNotConfigured
	default:
		return StateFailedNoRate
	}
}

// ConversionData is stored verbatim on a saved expense when the expense was
// filed in a foreign currency.
type ConversionData struct {
	BaseCurrency    string          `json:"baseCurrency"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
}

// FormOutput is what an expense form renders: the editable rate field, the
// status line and the conversion to persist.
type FormOutput struct {
	ExchangeRate     string          `json:"exchangeRate"`
	ConversionResult *string         `json:"conversionResult"`
	ConversionData   *ConversionData `json:"conversionData"`
	State            State           `json:"state"`
	RateDate         *civil.Date     `json:"rateDate,omitempty"`
}
