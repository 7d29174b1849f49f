package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRateRequest body para POST /api/currency-rates. EffectiveAt vacío = ahora.
type CurrencyRateRequest struct {
	Currency    string          `json:"currency" validate:"required,len=3,alpha"`
	Rate        decimal.Decimal `json:"rate"`
	EffectiveAt *time.Time      `json:"effective_at"`
}

// CurrencyRateResponse tasa de cambio frente a la moneda base.
type CurrencyRateResponse struct {
	Currency    string          `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	EffectiveAt time.Time       `json:"effective_at"`
}
