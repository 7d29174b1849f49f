package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate tasa de cambio de una moneda respecto a la moneda base, vigente desde EffectiveAt.
type CurrencyRate struct {
	Currency    string
	Rate        decimal.Decimal
	EffectiveAt time.Time
}
