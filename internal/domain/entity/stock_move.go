package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveKind tipo de movimiento de inventario.
type MoveKind string

const (
	MoveKindInbound    MoveKind = "inbound"    // entrada
	MoveKindOutbound   MoveKind = "outbound"   // salida
	MoveKindAdjustment MoveKind = "adjustment" // ajuste manual
	MoveKindTransfer   MoveKind = "transfer"   // traslado entre bodegas (un registro por tramo)
)

// IsValid indica si el tipo es conocido.
func (k MoveKind) IsValid() bool {
	switch k {
	case MoveKindInbound, MoveKindOutbound, MoveKindAdjustment, MoveKindTransfer:
		return true
	}
	return false
}

// StockMove representa una entrada inmutable del libro de movimientos.
// WarehouseID es la bodega cuyo nivel cambió; SourceWarehouseID pierde stock y
// TargetWarehouseID lo gana (cualquiera puede ser vacío salvo en traslados).
type StockMove struct {
	ID                string
	GroupID           string // agrupa los dos tramos de un traslado
	ProductID         string
	WarehouseID       string
	Kind              MoveKind
	Quantity          decimal.Decimal // con signo: positivo entra, negativo sale
	SourceWarehouseID string
	TargetWarehouseID string
	Reference         string // código de orden, nota de ajuste, etc.
	Note              string
	CreatedBy         string
	CreatedAt         time.Time
}

// MoveFilter filtro para el historial de movimientos.
type MoveFilter struct {
	ProductID   string
	WarehouseID string
	Reference   string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
