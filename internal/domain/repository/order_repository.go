package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes y sus líneas.
// Cada instancia está atada a una familia de orden (compra, venta, venta B2B).
type OrderRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, order *entity.Order) error

	// GetByID devuelve la orden con sus líneas o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)

	// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)

	// List devuelve una página de órdenes (sin líneas) y el total que coincide con el filtro.
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int, error)

	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	SetWarehouse(ctx context.Context, id, warehouseID string) error

	// AddLineFulfilled incrementa de forma atómica la cantidad cumplida de la línea, condicionado a
	// que no supere lo pedido más epsilon. Devuelve el nuevo acumulado o domain.ErrOverFulfillment.
	AddLineFulfilled(ctx context.Context, lineID string, quantity, epsilon decimal.Decimal) (decimal.Decimal, error)

	// HasOutstandingLines indica si alguna línea conserva pedido > cumplido + epsilon.
	HasOutstandingLines(ctx context.Context, orderID string, epsilon decimal.Decimal) (bool, error)

	// ReplaceLines reescribe la cabecera editable (contraparte, moneda, bodega, totales, tasa)
	// y reemplaza por completo el conjunto de líneas.
	ReplaceLines(ctx context.Context, order *entity.Order) error
}
