package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and orders.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(stock ledger.Store) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(StockStore(tx))
	})
}

// RunOrders igual que Run pero agregando el repositorio de órdenes de la familia kind.
func (r *TxRunner) RunOrders(ctx context.Context, kind entity.OrderKind, fn func(orders repository.OrderRepository, stock ledger.Store) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		repo, err := NewOrderRepository(tx, kind)
		if err != nil {
			return err
		}
		return fn(repo, StockStore(tx))
	})
}

// StockStore repositorios de inventario sobre q (pool para lecturas, tx para mutaciones).
func StockStore(q Querier) ledger.Store {
	return ledger.Store{
		Levels: NewStockLevelRepository(q),
		Moves:  NewStockMoveRepository(q),
	}
}
