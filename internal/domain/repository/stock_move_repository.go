package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockMoveRepository define el puerto de persistencia del libro de movimientos (solo inserción).
type StockMoveRepository interface {
	Create(ctx context.Context, move *entity.StockMove) error
	List(ctx context.Context, filter entity.MoveFilter) ([]*entity.StockMove, error)

	// Audit compara cada nivel con la suma de sus movimientos y devuelve los pares que no cuadran.
	Audit(ctx context.Context, filter entity.StockFilter) ([]entity.LedgerDrift, error)
}
