package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// orderTables enlace de una familia con su par de tablas y la columna de cantidad cumplida.
type orderTables struct {
	header    string
	lines     string
	fulfilled string
}

var tablesByKind = map[entity.OrderKind]orderTables{
	entity.OrderKindPurchase: {header: "purchase_orders", lines: "purchase_order_lines", fulfilled: "quantity_received"},
	entity.OrderKindSales:    {header: "sales_orders", lines: "sales_order_lines", fulfilled: "quantity_delivered"},
	entity.OrderKindSalesB2B: {header: "sales_b2b_orders", lines: "sales_b2b_order_lines", fulfilled: "quantity_delivered"},
}

const orderHeaderColumns = `id, code, counterparty, status, currency, COALESCE(warehouse_id, ''),
	subtotal, discount_total, tax_total, total_amount, currency_rate, currency_rate_at,
	note, created_by, created_at, updated_at`

// OrderRepo implementación de OrderRepository para una familia de órdenes.
type OrderRepo struct {
	q    Querier
	kind entity.OrderKind
	t    orderTables
}

// NewOrderRepository construye el adaptador para la familia kind. Acepta pool o tx (Querier).
func NewOrderRepository(q Querier, kind entity.OrderKind) (*OrderRepo, error) {
	t, ok := tablesByKind[kind]
	if !ok {
		return nil, fmt.Errorf("tipo de orden desconocido: %q", kind)
	}
	return &OrderRepo{q: q, kind: kind, t: t}, nil
}

// Create inserta cabecera y líneas. Un código repetido es conflicto.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, code, counterparty, status, currency, warehouse_id,
			subtotal, discount_total, tax_total, total_amount, currency_rate, currency_rate_at,
			note, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`, r.t.header)
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Code, o.Counterparty, string(o.Status), o.Currency, nullIfEmpty(o.WarehouseID),
		o.Subtotal, o.DiscountTotal, o.TaxTotal, o.TotalAmount, o.CurrencyRate, o.CurrencyRateAt,
		o.Note, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código de orden %s ya existe: %w", o.Code, domain.ErrConflict)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return r.insertLines(ctx, o)
}

func (r *OrderRepo) insertLines(ctx context.Context, o *entity.Order) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, order_id, position, product_id, quantity_ordered, %s,
			unit_price, discount_rate, tax_rate, subtotal, tax_amount, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, r.t.lines, r.t.fulfilled)
	for _, l := range o.Lines {
		_, err := r.q.Exec(ctx, query,
			l.ID, o.ID, l.Position, l.ProductID, l.QuantityOrdered, l.QuantityFulfilled,
			l.UnitPrice, l.DiscountRate, l.TaxRate, l.Subtotal, l.TaxAmount, l.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) scanHeader(row pgx.Row) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
		rate   decimal.NullDecimal
		rateAt *time.Time
	)
	err := row.Scan(&o.ID, &o.Code, &o.Counterparty, &status, &o.Currency, &o.WarehouseID,
		&o.Subtotal, &o.DiscountTotal, &o.TaxTotal, &o.TotalAmount, &rate, &rateAt,
		&o.Note, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Kind = r.kind
	o.Status = entity.OrderStatus(status)
	if rate.Valid {
		o.CurrencyRate = &rate.Decimal
	}
	o.CurrencyRateAt = rateAt
	return &o, nil
}

func (r *OrderRepo) get(ctx context.Context, id string, lock bool) (*entity.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, orderHeaderColumns, r.t.header)
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := r.scanHeader(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := fmt.Sprintf(`
		SELECT id, order_id, position, product_id, quantity_ordered, %s,
			unit_price, discount_rate, tax_rate, subtotal, tax_amount, total
		FROM %s WHERE order_id = $1 ORDER BY position`, r.t.fulfilled, r.t.lines)
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Position, &l.ProductID, &l.QuantityOrdered, &l.QuantityFulfilled,
			&l.UnitPrice, &l.DiscountRate, &l.TaxRate, &l.Subtotal, &l.TaxAmount, &l.Total); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetByID devuelve la orden con sus líneas o (nil, nil).
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE). Todas las operaciones que cambian
// líneas o estado pasan por aquí, así que el bloqueo de la cabecera serializa a los concurrentes.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, true)
}

// List página de cabeceras (sin líneas) más el total filtrado.
func (r *OrderRepo) List(ctx context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	if f.Counterparty != "" {
		w.add("counterparty = $%d", f.Counterparty)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.t.header, w.sql())
	if err := r.q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC, id LIMIT %s OFFSET %s`,
		orderHeaderColumns, r.t.header, w.sql(), w.arg(f.Limit), w.arg(f.Offset))
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	list := []*entity.Order{}
	for rows.Next() {
		o, err := r.scanHeader(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func (r *OrderRepo) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = now() WHERE id = $1`, r.t.header)
	if err := r.execOne(ctx, query, id, string(status)); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (r *OrderRepo) SetWarehouse(ctx context.Context, id, warehouseID string) error {
	query := fmt.Sprintf(`UPDATE %s SET warehouse_id = $2, updated_at = now() WHERE id = $1`, r.t.header)
	if err := r.execOne(ctx, query, id, nullIfEmpty(warehouseID)); err != nil {
		return fmt.Errorf("set order warehouse: %w", err)
	}
	return nil
}

// AddLineFulfilled incremento atómico condicionado a no superar lo pedido + epsilon.
func (r *OrderRepo) AddLineFulfilled(ctx context.Context, lineID string, quantity, epsilon decimal.Decimal) (decimal.Decimal, error) {
	col := r.t.fulfilled
	query := fmt.Sprintf(`
		UPDATE %s SET %s = %s + $2
		WHERE id = $1 AND %s + $2 - quantity_ordered <= $3
		RETURNING %s`, r.t.lines, col, col, col, col)
	var next decimal.Decimal
	err := r.q.QueryRow(ctx, query, lineID, quantity, epsilon).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("add line fulfilled: %w", err)
	}

	// sin filas: la línea no existe o el incremento la sobrepasa
	var (
		productID          string
		ordered, fulfilled decimal.Decimal
	)
	check := fmt.Sprintf(`SELECT product_id, quantity_ordered, %s FROM %s WHERE id = $1`, col, r.t.lines)
	if err := r.q.QueryRow(ctx, check, lineID).Scan(&productID, &ordered, &fulfilled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrLineNotFound
		}
		return decimal.Zero, fmt.Errorf("get order line: %w", err)
	}
	return decimal.Zero, domain.OverFulfillment(productID, ordered, fulfilled.Add(quantity))
}

func (r *OrderRepo) HasOutstandingLines(ctx context.Context, orderID string, epsilon decimal.Decimal) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE order_id = $1 AND quantity_ordered - %s > $2)`,
		r.t.lines, r.t.fulfilled)
	var outstanding bool
	if err := r.q.QueryRow(ctx, query, orderID, epsilon).Scan(&outstanding); err != nil {
		return false, fmt.Errorf("outstanding lines: %w", err)
	}
	return outstanding, nil
}

// ReplaceLines reescribe cabecera editable y reemplaza las líneas. Debe ejecutarse dentro de una tx.
func (r *OrderRepo) ReplaceLines(ctx context.Context, o *entity.Order) error {
	query := fmt.Sprintf(`
		UPDATE %s SET counterparty = $2, currency = $3, warehouse_id = $4, note = $5,
			subtotal = $6, discount_total = $7, tax_total = $8, total_amount = $9,
			currency_rate = $10, currency_rate_at = $11, updated_at = now()
		WHERE id = $1`, r.t.header)
	if err := r.execOne(ctx, query, o.ID, o.Counterparty, o.Currency, nullIfEmpty(o.WarehouseID), o.Note,
		o.Subtotal, o.DiscountTotal, o.TaxTotal, o.TotalAmount, o.CurrencyRate, o.CurrencyRateAt); err != nil {
		return fmt.Errorf("update order header: %w", err)
	}
	if _, err := r.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE order_id = $1`, r.t.lines), o.ID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return r.insertLines(ctx, o)
}
