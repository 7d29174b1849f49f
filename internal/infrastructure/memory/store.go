// Package memory implementa todos los puertos de persistencia en memoria.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado,
// que sólo reemplaza al original si la función termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ ledger.TxRunner = (*Store)(nil)
	_ orders.TxRunner = (*Store)(nil)
)

type levelKey struct{ product, warehouse string }

type state struct {
	levels map[levelKey]*entity.StockLevel
	moves  []*entity.StockMove
	orders map[entity.OrderKind]map[string]*entity.Order
	rates  map[string][]*entity.CurrencyRate
}

func newState() *state {
	return &state{
		levels: map[levelKey]*entity.StockLevel{},
		orders: map[entity.OrderKind]map[string]*entity.Order{},
		rates:  map[string][]*entity.CurrencyRate{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.levels {
		lv := *v
		c.levels[k] = &lv
	}
	// los movimientos son inmutables; basta copiar el slice
	c.moves = append(make([]*entity.StockMove, 0, len(s.moves)), s.moves...)
	for kind, byID := range s.orders {
		m := make(map[string]*entity.Order, len(byID))
		for id, o := range byID {
			m[id] = cloneOrder(o)
		}
		c.orders[kind] = m
	}
	for cur, rs := range s.rates {
		c.rates[cur] = append([]*entity.CurrencyRate(nil), rs...)
	}
	return c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	if o.CurrencyRate != nil {
		r := *o.CurrencyRate
		c.CurrencyRate = &r
	}
	if o.CurrencyRateAt != nil {
		at := *o.CurrencyRateAt
		c.CurrencyRateAt = &at
	}
	c.Lines = make([]*entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}

// Store almacén en memoria. Es seguro para uso concurrente.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// view ejecuta fn sobre el estado: el de la tx si existe, si no el global bajo el mutex.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) begin(ctx context.Context, fn func(tx *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx
	return nil
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(stock ledger.Store) error) error {
	return s.begin(ctx, func(tx *state) error {
		return fn(s.stockStore(tx))
	})
}

// RunOrders implementa orders.TxRunner con repos atados a la familia kind.
func (s *Store) RunOrders(ctx context.Context, kind entity.OrderKind, fn func(repo repository.OrderRepository, stock ledger.Store) error) error {
	return s.begin(ctx, func(tx *state) error {
		return fn(&orderRepo{store: s, tx: tx, kind: kind}, s.stockStore(tx))
	})
}

func (s *Store) stockStore(tx *state) ledger.Store {
	return ledger.Store{
		Levels: &levelRepo{store: s, tx: tx},
		Moves:  &moveRepo{store: s, tx: tx},
	}
}

// Stock repositorios de inventario fuera de transacción (lecturas).
func (s *Store) Stock() ledger.Store { return s.stockStore(nil) }

// Orders repositorio de órdenes fuera de transacción para la familia kind.
func (s *Store) Orders(kind entity.OrderKind) repository.OrderRepository {
	return &orderRepo{store: s, kind: kind}
}

// Rates repositorio de tasas de cambio.
func (s *Store) Rates() repository.CurrencyRateRepository {
	return &rateRepo{store: s}
}
