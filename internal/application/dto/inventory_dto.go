package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body para POST /api/stock/receive, /issue y /adjust.
// En /adjust Quantity lleva signo; en receive e issue debe ser positiva.
type StockMovementRequest struct {
	ProductID   string          `json:"product_id" validate:"required,max=100"`
	WarehouseID string          `json:"warehouse_id" validate:"required,max=100"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reference   string          `json:"reference" validate:"max=100"`
	Note        string          `json:"note" validate:"max=500"`
}

// StockTransferRequest body para POST /api/stock/transfer.
type StockTransferRequest struct {
	ProductID         string          `json:"product_id" validate:"required,max=100"`
	SourceWarehouseID string          `json:"source_warehouse_id" validate:"required,max=100"`
	TargetWarehouseID string          `json:"target_warehouse_id" validate:"required,max=100"`
	Quantity          decimal.Decimal `json:"quantity"`
	Reference         string          `json:"reference" validate:"max=100"`
	Note              string          `json:"note" validate:"max=500"`
}

// StockLevelResponse nivel actual de un par producto/bodega.
type StockLevelResponse struct {
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockMoveResponse entrada del libro de movimientos.
type StockMoveResponse struct {
	ID                string          `json:"id"`
	GroupID           string          `json:"group_id,omitempty"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	Kind              string          `json:"kind"`
	Quantity          decimal.Decimal `json:"quantity"`
	SourceWarehouseID string          `json:"source_warehouse_id,omitempty"`
	TargetWarehouseID string          `json:"target_warehouse_id,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	Note              string          `json:"note,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
}

// StockMovementResponse resultado de una mutación: movimientos insertados y niveles resultantes.
type StockMovementResponse struct {
	Moves  []StockMoveResponse  `json:"moves"`
	Levels []StockLevelResponse `json:"levels"`
}

// StockMoveListResponse historial paginado de movimientos.
type StockMoveListResponse struct {
	Items []StockMoveResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// LedgerDriftResponse diferencia entre el nivel y la suma de movimientos de un par.
type LedgerDriftResponse struct {
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	LevelQuantity decimal.Decimal `json:"level_quantity"`
	MoveQuantity  decimal.Decimal `json:"move_quantity"`
	Difference    decimal.Decimal `json:"difference"`
}

// AuditResponse resultado de la auditoría del libro. Consistent = sin diferencias.
type AuditResponse struct {
	Consistent bool                  `json:"consistent"`
	Drifts     []LedgerDriftResponse `json:"drifts"`
}
