package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de una orden. Descuento e impuesto (porcentajes 0..100) solo aplican a B2B.
type OrderLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required,max=100"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

// CreateOrderRequest body para POST /api/{familia}. Code vacío = se genera.
type CreateOrderRequest struct {
	Code         string             `json:"code" validate:"max=50"`
	Counterparty string             `json:"counterparty" validate:"required,max=200"`
	Currency     string             `json:"currency" validate:"omitempty,len=3,alpha"`
	WarehouseID  string             `json:"warehouse_id" validate:"max=100"`
	Note         string             `json:"note" validate:"max=500"`
	Lines        []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderRequest body para PUT /api/b2b-sales-orders/:id. Reemplaza cabecera editable y líneas.
type UpdateOrderRequest struct {
	Counterparty string             `json:"counterparty" validate:"required,max=200"`
	Currency     string             `json:"currency" validate:"omitempty,len=3,alpha"`
	WarehouseID  string             `json:"warehouse_id" validate:"max=100"`
	Note         string             `json:"note" validate:"max=500"`
	Lines        []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// FulfillLineRequest cantidad recibida o entregada de una línea.
type FulfillLineRequest struct {
	LineID   string          `json:"line_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// FulfillOrderRequest body para /receive y /deliver. WarehouseID vacío = bodega de la orden.
type FulfillOrderRequest struct {
	WarehouseID string               `json:"warehouse_id" validate:"max=100"`
	Lines       []FulfillLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderLineResponse salida de una línea.
type OrderLineResponse struct {
	ID                string          `json:"id"`
	Position          int             `json:"position"`
	ProductID         string          `json:"product_id"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityFulfilled decimal.Decimal `json:"quantity_fulfilled"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountRate      decimal.Decimal `json:"discount_rate"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
}

// OrderResponse salida de una orden con sus líneas.
type OrderResponse struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	Code           string              `json:"code"`
	Counterparty   string              `json:"counterparty"`
	Status         string              `json:"status"`
	Currency       string              `json:"currency"`
	WarehouseID    string              `json:"warehouse_id,omitempty"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountTotal  decimal.Decimal     `json:"discount_total"`
	TaxTotal       decimal.Decimal     `json:"tax_total"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	CurrencyRate   *decimal.Decimal    `json:"currency_rate,omitempty"`
	CurrencyRateAt *time.Time          `json:"currency_rate_at,omitempty"`
	Note           string              `json:"note,omitempty"`
	CreatedBy      string              `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Lines          []OrderLineResponse `json:"lines"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// FulfillOrderResponse orden actualizada y movimientos generados.
type FulfillOrderResponse struct {
	Order OrderResponse       `json:"order"`
	Moves []StockMoveResponse `json:"moves"`
}
