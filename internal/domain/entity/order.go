package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind familia de orden. Cada familia persiste en su propio par de tablas.
type OrderKind string

const (
	OrderKindPurchase OrderKind = "purchase"
	OrderKindSales    OrderKind = "sales"
	OrderKindSalesB2B OrderKind = "sales_b2b"
)

// OrderStatus estado de una orden. El nombre del estado "en curso" y del estado
// "completado" varía por familia; la semántica es la misma.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order cabecera de orden de compra o venta con sus líneas.
// Los totales se recalculan desde las líneas; no son autoritativos para el cumplimiento.
type Order struct {
	ID             string
	Kind           OrderKind
	Code           string
	Counterparty   string // proveedor o cliente
	Status         OrderStatus
	Currency       string
	WarehouseID    string // vacío si aún no se definió
	Subtotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	TotalAmount    decimal.Decimal
	CurrencyRate   *decimal.Decimal // snapshot B2B; nil = sin tasa disponible
	CurrencyRateAt *time.Time
	Note           string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []*OrderLine
}

// Line busca una línea por ID.
func (o *Order) Line(id string) *OrderLine {
	for _, l := range o.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// HasFulfillment indica si alguna línea ya registra cantidad recibida/entregada.
func (o *Order) HasFulfillment() bool {
	for _, l := range o.Lines {
		if l.QuantityFulfilled.IsPositive() {
			return true
		}
	}
	return false
}

// OrderLine línea de una orden. QuantityFulfilled es acumulativa (recibida en compras,
// entregada en ventas) y nunca disminuye.
type OrderLine struct {
	ID                string
	OrderID           string
	Position          int
	ProductID         string
	QuantityOrdered   decimal.Decimal
	QuantityFulfilled decimal.Decimal
	UnitPrice         decimal.Decimal
	DiscountRate      decimal.Decimal // porcentaje 0..100 (solo B2B)
	TaxRate           decimal.Decimal // porcentaje 0..100 (solo B2B)
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	Total             decimal.Decimal
}

// Outstanding cantidad pendiente (nunca negativa).
func (l *OrderLine) Outstanding() decimal.Decimal {
	rem := l.QuantityOrdered.Sub(l.QuantityFulfilled)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// OrderFilter filtro de listado de órdenes.
type OrderFilter struct {
	Status       OrderStatus
	Counterparty string
	Limit        int
	Offset       int
}
