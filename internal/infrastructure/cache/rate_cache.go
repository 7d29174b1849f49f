// Package cache contiene decoradores de caché sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ orders.RateProvider = (*RateCache)(nil)

const defaultRateTTL = 5 * time.Minute

// cachedRate forma serializada en Redis.
type cachedRate struct {
	Currency    string          `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	EffectiveAt time.Time       `json:"effective_at"`
}

// RateCache antepone Redis a un RateProvider. Sólo se guardan tasas encontradas;
// si Redis falla se consulta directamente el proveedor.
type RateCache struct {
	client *redis.Client
	next   orders.RateProvider
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewRateCache construye el decorador. El cliente sigue siendo del llamador.
func NewRateCache(client *redis.Client, next orders.RateProvider, ttl time.Duration, log *logger.Logger) *RateCache {
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RateCache{client: client, next: next, ttl: ttl, log: log.Component("rate_cache")}
}

func rateKey(currency string) string {
	return "currency_rate:" + strings.ToUpper(currency)
}

// Latest implementa orders.RateProvider.
func (c *RateCache) Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error) {
	key := rateKey(currency)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cr cachedRate
		if jerr := json.Unmarshal(data, &cr); jerr == nil {
			return &entity.CurrencyRate{Currency: cr.Currency, Rate: cr.Rate, EffectiveAt: cr.EffectiveAt}, nil
		}
		_ = c.client.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("currency", currency).Msg("redis no disponible; se consulta el origen")
	}

	rate, err := c.next.Latest(ctx, currency)
	if err != nil || rate == nil {
		return rate, err
	}
	payload, err := json.Marshal(cachedRate{Currency: rate.Currency, Rate: rate.Rate, EffectiveAt: rate.EffectiveAt})
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("currency", currency).Msg("no se pudo guardar la tasa en caché")
		}
	}
	return rate, nil
}

// Invalidate borra la tasa cacheada de una moneda (tras registrar una nueva).
func (c *RateCache) Invalidate(ctx context.Context, currency string) error {
	return c.client.Del(ctx, rateKey(currency)).Err()
}
