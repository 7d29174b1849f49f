package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CurrencyRateRepository define el puerto para tasas de cambio.
type CurrencyRateRepository interface {
	// Latest devuelve la tasa vigente más reciente o (nil, nil) si no hay ninguna.
	Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error)
	Save(ctx context.Context, rate *entity.CurrencyRate) error
}
