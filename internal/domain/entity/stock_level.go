package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el stock actual de un producto en una bodega.
// Se crea con el primer movimiento del par y nunca se elimina; Quantity >= 0 siempre.
type StockLevel struct {
	ProductID        string
	WarehouseID      string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UpdatedAt        time.Time
}

// StockFilter filtro opcional para consultas de resumen.
type StockFilter struct {
	ProductID   string
	WarehouseID string
}

// LedgerDrift diferencia entre el nivel materializado y la suma de sus movimientos.
type LedgerDrift struct {
	ProductID     string
	WarehouseID   string
	LevelQuantity decimal.Decimal
	MoveQuantity  decimal.Decimal
}

// Difference devuelve LevelQuantity - MoveQuantity.
func (d LedgerDrift) Difference() decimal.Decimal {
	return d.LevelQuantity.Sub(d.MoveQuantity)
}
