package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

type rateRepo struct {
	store *Store
}

func (r *rateRepo) Latest(_ context.Context, currency string) (*entity.CurrencyRate, error) {
	var out *entity.CurrencyRate
	now := time.Now()
	err := r.store.view(nil, func(st *state) error {
		for _, rate := range st.rates[strings.ToUpper(currency)] {
			if rate.EffectiveAt.After(now) {
				continue
			}
			if out == nil || rate.EffectiveAt.After(out.EffectiveAt) {
				c := *rate
				out = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *rateRepo) Save(_ context.Context, rate *entity.CurrencyRate) error {
	c := *rate
	c.Currency = strings.ToUpper(c.Currency)
	return r.store.view(nil, func(st *state) error {
		st.rates[c.Currency] = append(st.rates[c.Currency], &c)
		return nil
	})
}
