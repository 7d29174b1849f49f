package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

const stockMoveColumns = `id, COALESCE(group_id::text, ''), product_id, warehouse_id, kind, quantity,
	COALESCE(source_warehouse_id, ''), COALESCE(target_warehouse_id, ''), reference, note, created_by, created_at`

// StockMoveRepo implementación del libro de movimientos (sólo INSERT) sobre PostgreSQL.
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserta el movimiento.
func (r *StockMoveRepo) Create(ctx context.Context, m *entity.StockMove) error {
	query := `
		INSERT INTO stock_moves (id, group_id, product_id, warehouse_id, kind, quantity,
			source_warehouse_id, target_warehouse_id, reference, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, nullIfEmpty(m.GroupID), m.ProductID, m.WarehouseID, string(m.Kind), m.Quantity,
		nullIfEmpty(m.SourceWarehouseID), nullIfEmpty(m.TargetWarehouseID),
		m.Reference, m.Note, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock move: %w", err)
	}
	return nil
}

// List historial filtrado, más recientes primero.
func (r *StockMoveRepo) List(ctx context.Context, f entity.MoveFilter) ([]*entity.StockMove, error) {
	var w whereBuilder
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.Reference != "" {
		w.add("reference = $%d", f.Reference)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at < $%d", *f.To)
	}
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves` + w.sql() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.arg(f.Limit) + ` OFFSET ` + w.arg(f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMove(row pgx.Row) (*entity.StockMove, error) {
	var (
		m    entity.StockMove
		kind string
	)
	err := row.Scan(&m.ID, &m.GroupID, &m.ProductID, &m.WarehouseID, &kind, &m.Quantity,
		&m.SourceWarehouseID, &m.TargetWarehouseID, &m.Reference, &m.Note, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MoveKind(kind)
	return &m, nil
}

// Audit compara stock_levels con la suma de stock_moves por par (FULL OUTER JOIN para
// detectar también movimientos sin nivel y niveles sin movimientos).
func (r *StockMoveRepo) Audit(ctx context.Context, f entity.StockFilter) ([]entity.LedgerDrift, error) {
	query := `
		WITH sums AS (
			SELECT product_id, warehouse_id, SUM(quantity) AS total
			FROM stock_moves
			GROUP BY product_id, warehouse_id
		)
		SELECT COALESCE(l.product_id, s.product_id),
		       COALESCE(l.warehouse_id, s.warehouse_id),
		       COALESCE(l.quantity, 0),
		       COALESCE(s.total, 0)
		FROM stock_levels l
		FULL OUTER JOIN sums s ON s.product_id = l.product_id AND s.warehouse_id = l.warehouse_id
		WHERE COALESCE(l.quantity, 0) <> COALESCE(s.total, 0)
		  AND ($1 = '' OR COALESCE(l.product_id, s.product_id) = $1)
		  AND ($2 = '' OR COALESCE(l.warehouse_id, s.warehouse_id) = $2)
		ORDER BY 1, 2`
	rows, err := r.q.Query(ctx, query, f.ProductID, f.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("audit stock ledger: %w", err)
	}
	defer rows.Close()
	var out []entity.LedgerDrift
	for rows.Next() {
		var d entity.LedgerDrift
		if err := rows.Scan(&d.ProductID, &d.WarehouseID, &d.LevelQuantity, &d.MoveQuantity); err != nil {
			return nil, fmt.Errorf("scan ledger drift: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
