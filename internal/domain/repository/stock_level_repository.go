package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockLevelRepository define el puerto para consultar y mutar el stock por producto+bodega.
// ApplyDelta es la única vía de mutación y debe ser una operación atómica condicional del almacén.
type StockLevelRepository interface {
	// Get devuelve el nivel actual o (nil, nil) si el par nunca tuvo movimientos.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)

	// ApplyDelta suma delta a la cantidad almacenada en una sola sentencia condicionada a que
	// el resultado sea >= 0. Crea la fila si el par es nuevo y delta es positivo.
	// Retorna domain.ErrInsufficientStock (envuelto) si la condición no se cumple; en ese caso no escribe nada.
	ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.StockLevel, error)

	// List devuelve los niveles que coinciden con el filtro (campos vacíos = sin filtro).
	List(ctx context.Context, filter entity.StockFilter) ([]*entity.StockLevel, error)
}
