package ledger

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Store repositorios de inventario atados a una misma transacción.
type Store struct {
	Levels repository.StockLevelRepository
	Moves  repository.StockMoveRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn retorna error todo se revierte.
type TxRunner interface {
	Run(ctx context.Context, fn func(stock Store) error) error
}
