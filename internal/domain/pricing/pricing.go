// Package pricing calcula importes de línea y totales de orden.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Line importes calculados de una línea, redondeados a 2 decimales.
type Line struct {
	Gross    decimal.Decimal // cantidad * precio
	Discount decimal.Decimal
	Subtotal decimal.Decimal // bruto - descuento
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals suma de los importes de todas las líneas.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Simple importe sin descuento ni impuesto (compras y ventas simples).
func Simple(quantity, unitPrice decimal.Decimal) Line {
	gross := quantity.Mul(unitPrice).Round(2)
	return Line{Gross: gross, Discount: decimal.Zero, Subtotal: gross, Tax: decimal.Zero, Total: gross}
}

// WithDiscountAndTax aplica descuento y luego impuesto sobre la base descontada.
// Las tasas son porcentajes 0..100.
func WithDiscountAndTax(quantity, unitPrice, discountRate, taxRate decimal.Decimal) (Line, error) {
	if err := ValidateRate(discountRate); err != nil {
		return Line{}, err
	}
	if err := ValidateRate(taxRate); err != nil {
		return Line{}, err
	}
	gross := quantity.Mul(unitPrice)
	discount := gross.Mul(discountRate).Div(hundred).Round(2)
	subtotal := gross.Round(2).Sub(discount)
	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)
	return Line{
		Gross:    gross.Round(2),
		Discount: discount,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// ValidateRate comprueba que un porcentaje esté en [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Sum acumula los importes de las líneas.
func Sum(lines []Line) Totals {
	t := Totals{Subtotal: decimal.Zero, Discount: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.Discount = t.Discount.Add(l.Discount)
		t.Tax = t.Tax.Add(l.Tax)
		t.Total = t.Total.Add(l.Total)
	}
	return t
}
