package orders

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/pricing"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// PricingPolicy calcula los importes de las líneas y la tasa de cambio congelada de la orden.
type PricingPolicy interface {
	PriceLine(in LineInput) (pricing.Line, error)
	// Snapshot devuelve la tasa vigente para currency o nil si no aplica / no hay.
	Snapshot(ctx context.Context, currency string) (*decimal.Decimal, *time.Time)
}

// SimplePricing cantidad por precio, sin descuento, impuesto ni tasa de cambio.
type SimplePricing struct{}

func (SimplePricing) PriceLine(in LineInput) (pricing.Line, error) {
	if !in.DiscountRate.IsZero() || !in.TaxRate.IsZero() {
		return pricing.Line{}, domain.ErrInvalidInput
	}
	return pricing.Simple(in.Quantity, in.UnitPrice), nil
}

func (SimplePricing) Snapshot(context.Context, string) (*decimal.Decimal, *time.Time) {
	return nil, nil
}

// B2BPricing aplica descuento e impuesto por línea y captura la tasa de cambio.
// Un fallo del proveedor se registra y se trata como "sin tasa".
type B2BPricing struct {
	rates RateProvider
	base  string
	log   *logger.Logger
	now   func() time.Time
}

// NewB2BPricing construye la política. base es la moneda cuya tasa es siempre 1.
func NewB2BPricing(rates RateProvider, baseCurrency string, log *logger.Logger) *B2BPricing {
	if log == nil {
		log = logger.Nop()
	}
	return &B2BPricing{rates: rates, base: strings.ToUpper(baseCurrency), log: log.Component("pricing"), now: time.Now}
}

func (p *B2BPricing) PriceLine(in LineInput) (pricing.Line, error) {
	return pricing.WithDiscountAndTax(in.Quantity, in.UnitPrice, in.DiscountRate, in.TaxRate)
}

func (p *B2BPricing) Snapshot(ctx context.Context, currency string) (*decimal.Decimal, *time.Time) {
	currency = strings.ToUpper(currency)
	if currency == p.base {
		one := decimal.NewFromInt(1)
		at := p.now().UTC()
		return &one, &at
	}
	if p.rates == nil {
		return nil, nil
	}
	rate, err := p.rates.Latest(ctx, currency)
	if err != nil {
		p.log.Warn().Err(err).Str("currency", currency).Msg("no se pudo obtener tasa de cambio; se continúa sin tasa")
		return nil, nil
	}
	if rate == nil {
		p.log.Warn().Str("currency", currency).Msg("sin tasa de cambio registrada")
		return nil, nil
	}
	r, at := rate.Rate, rate.EffectiveAt.UTC()
	return &r, &at
}
