package orders

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Kind describe una familia de orden: prefijo del código, estados en curso y terminal,
// sentido del movimiento de stock y si admite edición.
type Kind struct {
	Kind       entity.OrderKind
	Label      string
	Prefix     string
	OpenStatus entity.OrderStatus
	DoneStatus entity.OrderStatus
	Movement   entity.MoveKind
	Updatable  bool
}

var (
	Purchase = Kind{
		Kind:       entity.OrderKindPurchase,
		Label:      "Orden de compra",
		Prefix:     "PO",
		OpenStatus: entity.OrderStatusConfirmed,
		DoneStatus: entity.OrderStatusReceived,
		Movement:   entity.MoveKindInbound,
	}
	Sales = Kind{
		Kind:       entity.OrderKindSales,
		Label:      "Orden de venta",
		Prefix:     "SO",
		OpenStatus: entity.OrderStatusConfirmed,
		DoneStatus: entity.OrderStatusFulfilled,
		Movement:   entity.MoveKindOutbound,
	}
	SalesB2B = Kind{
		Kind:       entity.OrderKindSalesB2B,
		Label:      "Orden de venta B2B",
		Prefix:     "B2B",
		OpenStatus: entity.OrderStatusSent,
		DoneStatus: entity.OrderStatusDelivered,
		Movement:   entity.MoveKindOutbound,
		Updatable:  true,
	}
)

// KindOf devuelve el descriptor de una familia.
func KindOf(k entity.OrderKind) (Kind, bool) {
	switch k {
	case entity.OrderKindPurchase:
		return Purchase, true
	case entity.OrderKindSales:
		return Sales, true
	case entity.OrderKindSalesB2B:
		return SalesB2B, true
	}
	return Kind{}, false
}

// Cancellable indica si una orden en status puede cancelarse (borrador o en curso).
func (k Kind) Cancellable(status entity.OrderStatus) bool {
	return status == entity.OrderStatusDraft || status == k.OpenStatus
}
