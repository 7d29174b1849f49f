package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type staticProvider struct {
	rate  *entity.CurrencyRate
	calls int
}

func (p *staticProvider) Latest(context.Context, string) (*entity.CurrencyRate, error) {
	p.calls++
	return p.rate, nil
}

// Con Redis inalcanzable la tasa sale igual del origen.
func TestRateCache_RedisCaidoConsultaOrigen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	src := &staticProvider{rate: &entity.CurrencyRate{Currency: "USD", Rate: decimal.NewFromInt(4000), EffectiveAt: time.Now()}}
	rc := cache.NewRateCache(client, src, time.Minute, logger.Nop())

	got, err := rc.Latest(context.Background(), "USD")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "4000", got.Rate.String())
	assert.Equal(t, 1, src.calls)
}
