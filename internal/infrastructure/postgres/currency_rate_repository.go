package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CurrencyRateRepository = (*CurrencyRateRepo)(nil)

// CurrencyRateRepo tasas de cambio sobre PostgreSQL.
type CurrencyRateRepo struct {
	q Querier
}

func NewCurrencyRateRepository(q Querier) *CurrencyRateRepo {
	return &CurrencyRateRepo{q: q}
}

// Latest última tasa ya vigente (effective_at <= now()).
func (r *CurrencyRateRepo) Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error) {
	query := `
		SELECT currency, rate, effective_at FROM currency_rates
		WHERE currency = $1 AND effective_at <= now()
		ORDER BY effective_at DESC LIMIT 1`
	var cr entity.CurrencyRate
	err := r.q.QueryRow(ctx, query, strings.ToUpper(currency)).Scan(&cr.Currency, &cr.Rate, &cr.EffectiveAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest currency rate: %w", err)
	}
	return &cr, nil
}

func (r *CurrencyRateRepo) Save(ctx context.Context, rate *entity.CurrencyRate) error {
	query := `
		INSERT INTO currency_rates (currency, rate, effective_at) VALUES ($1, $2, $3)
		ON CONFLICT (currency, effective_at) DO UPDATE SET rate = EXCLUDED.rate`
	if _, err := r.q.Exec(ctx, query, strings.ToUpper(rate.Currency), rate.Rate, rate.EffectiveAt); err != nil {
		return fmt.Errorf("save currency rate: %w", err)
	}
	return nil
}
