package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Meta datos descriptivos que viajan con cada movimiento.
type Meta struct {
	Reference string
	Note      string
	Actor     string
}

// Delta solicitud de cambio de stock sobre un par producto/bodega.
// El enrutamiento (origen/destino) es explícito; nunca se infiere del signo en capas superiores.
type Delta struct {
	ProductID         string
	WarehouseID       string
	Kind              entity.MoveKind
	Quantity          decimal.Decimal // con signo
	SourceWarehouseID string
	TargetWarehouseID string
	GroupID           string
	Meta
}

// Inbound entrada de mercancía: quantity > 0, la bodega gana stock.
func Inbound(productID, warehouseID string, quantity decimal.Decimal, meta Meta) (Delta, error) {
	if !quantity.IsPositive() {
		return Delta{}, domain.ErrInvalidQuantity
	}
	d := Delta{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Kind:              entity.MoveKindInbound,
		Quantity:          quantity,
		TargetWarehouseID: warehouseID,
		Meta:              meta,
	}
	return d, d.Validate()
}

// Outbound salida de mercancía: quantity > 0, se aplica -quantity sobre la bodega.
func Outbound(productID, warehouseID string, quantity decimal.Decimal, meta Meta) (Delta, error) {
	if !quantity.IsPositive() {
		return Delta{}, domain.ErrInvalidQuantity
	}
	d := Delta{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Kind:              entity.MoveKindOutbound,
		Quantity:          quantity.Neg(),
		SourceWarehouseID: warehouseID,
		Meta:              meta,
	}
	return d, d.Validate()
}

// Adjustment corrección manual con delta arbitrario. Un delta cero es válido; quien aplica decide que es no-op.
func Adjustment(productID, warehouseID string, delta decimal.Decimal, meta Meta) (Delta, error) {
	d := Delta{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Kind:        entity.MoveKindAdjustment,
		Quantity:    delta,
		Meta:        meta,
	}
	switch {
	case delta.IsPositive():
		d.TargetWarehouseID = warehouseID
	case delta.IsNegative():
		d.SourceWarehouseID = warehouseID
	}
	return d, d.Validate()
}

// TransferLegs construye los dos tramos de un traslado: salida en origen y entrada en destino.
// Ambos comparten GroupID y registran origen y destino completos.
func TransferLegs(productID, sourceID, targetID string, quantity decimal.Decimal, meta Meta, groupID string) ([2]Delta, error) {
	var legs [2]Delta
	if sourceID == "" || targetID == "" {
		return legs, domain.ErrWarehouseRequired
	}
	if sourceID == targetID {
		return legs, domain.ErrSameWarehouse
	}
	if !quantity.IsPositive() {
		return legs, domain.ErrInvalidQuantity
	}
	base := Delta{
		ProductID:         productID,
		Kind:              entity.MoveKindTransfer,
		SourceWarehouseID: sourceID,
		TargetWarehouseID: targetID,
		GroupID:           groupID,
		Meta:              meta,
	}
	legs[0], legs[1] = base, base
	legs[0].WarehouseID, legs[0].Quantity = sourceID, quantity.Neg()
	legs[1].WarehouseID, legs[1].Quantity = targetID, quantity
	for _, l := range legs {
		if err := l.Validate(); err != nil {
			return legs, err
		}
	}
	return legs, nil
}

// Validate comprueba identificadores y tipo.
func (d Delta) Validate() error {
	if d.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if d.WarehouseID == "" {
		return domain.ErrWarehouseRequired
	}
	if !d.Kind.IsValid() {
		return domain.ErrInvalidInput
	}
	return nil
}

// Move construye la entrada del libro para este delta.
func (d Delta) Move(id string, at time.Time) *entity.StockMove {
	return &entity.StockMove{
		ID:                id,
		GroupID:           d.GroupID,
		ProductID:         d.ProductID,
		WarehouseID:       d.WarehouseID,
		Kind:              d.Kind,
		Quantity:          d.Quantity,
		SourceWarehouseID: d.SourceWarehouseID,
		TargetWarehouseID: d.TargetWarehouseID,
		Reference:         d.Reference,
		Note:              d.Note,
		CreatedBy:         d.Actor,
		CreatedAt:         at,
	}
}
