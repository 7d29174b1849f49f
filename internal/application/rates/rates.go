// Package rates registra y consulta tasas de cambio contra la moneda base.
package rates

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Reader lectura de la tasa vigente; puede ser el repositorio o la caché delante de él.
type Reader interface {
	Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error)
}

// Invalidator descarta la tasa cacheada de una moneda.
type Invalidator interface {
	Invalidate(ctx context.Context, currency string) error
}

// RegisterInput nueva tasa. EffectiveAt nil = ahora.
type RegisterInput struct {
	Currency    string
	Rate        decimal.Decimal
	EffectiveAt *time.Time
}

// Service caso de uso de tasas de cambio.
type Service struct {
	repo   repository.CurrencyRateRepository
	reader Reader
	cache  Invalidator
	base   string
	log    *logger.Logger
	now    func() time.Time
}

// New construye el servicio. reader nil = se lee del repositorio; cache puede ser nil.
func New(repo repository.CurrencyRateRepository, reader Reader, cache Invalidator, base string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if reader == nil {
		reader = repo
	}
	return &Service{
		repo:   repo,
		reader: reader,
		cache:  cache,
		base:   strings.ToUpper(base),
		log:    log.Component("rates"),
		now:    time.Now,
	}
}

// Register guarda la tasa y descarta la copia cacheada de la moneda.
// La moneda base no admite tasas: siempre vale 1.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.CurrencyRate, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if !currencyCode.MatchString(currency) || currency == s.base {
		return nil, domain.ErrInvalidInput
	}
	if !in.Rate.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	at := s.now().UTC()
	if in.EffectiveAt != nil {
		at = in.EffectiveAt.UTC()
	}

	rate := &entity.CurrencyRate{Currency: currency, Rate: in.Rate, EffectiveAt: at}
	if err := s.repo.Save(ctx, rate); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, currency); err != nil {
			s.log.Warn().Err(err).Str("currency", currency).Msg("no se pudo invalidar la tasa en caché")
		}
	}
	s.log.Info().Str("currency", currency).Str("rate", in.Rate.String()).Time("effective_at", at).Msg("tasa registrada")
	return rate, nil
}

// Latest tasa vigente de currency; ErrNotFound si no hay ninguna.
func (s *Service) Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyCode.MatchString(currency) {
		return nil, domain.ErrInvalidInput
	}
	if currency == s.base {
		return &entity.CurrencyRate{Currency: currency, Rate: decimal.NewFromInt(1), EffectiveAt: s.now().UTC()}, nil
	}
	rate, err := s.reader.Latest(ctx, currency)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrNotFound
	}
	return rate, nil
}
