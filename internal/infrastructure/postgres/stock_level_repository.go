package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

const stockLevelColumns = `product_id, warehouse_id, quantity, reserved_quantity, updated_at`

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

func scanLevel(row pgx.Row) (*entity.StockLevel, error) {
	var l entity.StockLevel
	if err := row.Scan(&l.ProductID, &l.WarehouseID, &l.Quantity, &l.ReservedQuantity, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Get obtiene el stock actual de un producto en una bodega; (nil, nil) si no hay fila.
func (r *StockLevelRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	query := `SELECT ` + stockLevelColumns + ` FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`
	l, err := scanLevel(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return l, nil
}

// ApplyDelta aplica el delta en una sola sentencia:
//   - delta < 0: UPDATE condicionado a quantity + delta >= 0; cero filas = stock insuficiente.
//   - delta > 0: INSERT ... ON CONFLICT que suma sobre la fila existente.
//
// El CHECK (quantity >= 0) de la tabla respalda la misma regla.
func (r *StockLevelRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.StockLevel, error) {
	if delta.IsZero() {
		return r.Get(ctx, productID, warehouseID)
	}

	var query string
	if delta.IsNegative() {
		query = `
			UPDATE stock_levels
			SET quantity = quantity + $3, updated_at = now()
			WHERE product_id = $1 AND warehouse_id = $2 AND quantity + $3 >= 0
			RETURNING ` + stockLevelColumns
	} else {
		query = `
			INSERT INTO stock_levels (product_id, warehouse_id, quantity, reserved_quantity, updated_at)
			VALUES ($1, $2, $3, 0, now())
			ON CONFLICT (product_id, warehouse_id)
			DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING ` + stockLevelColumns
	}

	l, err := scanLevel(r.q.QueryRow(ctx, query, productID, warehouseID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return nil, domain.InsufficientStock(productID, warehouseID)
		}
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}
	return l, nil
}

// List devuelve los niveles filtrados por producto y/o bodega.
func (r *StockLevelRepo) List(ctx context.Context, filter entity.StockFilter) ([]*entity.StockLevel, error) {
	var w whereBuilder
	if filter.ProductID != "" {
		w.add("product_id = $%d", filter.ProductID)
	}
	if filter.WarehouseID != "" {
		w.add("warehouse_id = $%d", filter.WarehouseID)
	}
	query := `SELECT ` + stockLevelColumns + ` FROM stock_levels` + w.sql() + ` ORDER BY product_id, warehouse_id`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
