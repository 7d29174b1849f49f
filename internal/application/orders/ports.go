package orders

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner abre una transacción con el repositorio de órdenes de la familia kind
// y los repositorios del libro de inventario, atados a la misma tx.
type TxRunner interface {
	RunOrders(ctx context.Context, kind entity.OrderKind, fn func(orders repository.OrderRepository, stock ledger.Store) error) error
}

// StockPoster registra movimientos físicos dentro de la transacción del llamador.
// *ledger.Ledger lo implementa.
type StockPoster interface {
	ApplyInTx(ctx context.Context, stock ledger.Store, deltas ...inventory.Delta) (*ledger.Result, error)
}

// RateProvider entrega la última tasa de cambio conocida; (nil, nil) si no hay.
type RateProvider interface {
	Latest(ctx context.Context, currency string) (*entity.CurrencyRate, error)
}

// DocumentRenderer genera la representación imprimible de una orden.
type DocumentRenderer interface {
	RenderOrder(ctx context.Context, kind Kind, order *entity.Order) ([]byte, error)
}
