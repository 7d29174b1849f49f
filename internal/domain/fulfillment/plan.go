// Package fulfillment contiene la conciliación pura entre cantidades pedidas y cumplidas
// (recibidas en compras, entregadas en ventas). No toca persistencia.
package fulfillment

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DefaultEpsilon tolerancia por redondeo decimal al comparar pedido vs cumplido.
var DefaultEpsilon = decimal.New(1, -4)

// Request cantidad a registrar contra una línea.
type Request struct {
	LineID   string
	Quantity decimal.Decimal
}

// Step cambio validado sobre una línea: Quantity es lo que se aplica ahora y
// Fulfilled el acumulado resultante.
type Step struct {
	Line      *entity.OrderLine
	Quantity  decimal.Decimal
	Fulfilled decimal.Decimal
}

// Plan valida las solicitudes contra las líneas de la orden y devuelve los pasos a aplicar,
// uno por línea en el orden de primera aparición. Las solicitudes repetidas sobre la misma
// línea se acumulan; las de cantidad <= 0 se ignoran.
func Plan(lines []*entity.OrderLine, requests []Request, epsilon decimal.Decimal) ([]Step, error) {
	byID := make(map[string]*entity.OrderLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	idx := make(map[string]int, len(requests))
	steps := make([]Step, 0, len(requests))
	for _, r := range requests {
		line, ok := byID[r.LineID]
		if !ok {
			return nil, domain.ErrLineNotFound
		}
		if !r.Quantity.IsPositive() {
			continue
		}
		i, seen := idx[r.LineID]
		if !seen {
			steps = append(steps, Step{Line: line, Quantity: decimal.Zero, Fulfilled: line.QuantityFulfilled})
			i = len(steps) - 1
			idx[r.LineID] = i
		}
		next := steps[i].Fulfilled.Add(r.Quantity)
		if next.Sub(line.QuantityOrdered).GreaterThan(epsilon) {
			return nil, domain.OverFulfillment(line.ProductID, line.QuantityOrdered, next)
		}
		steps[i].Quantity = steps[i].Quantity.Add(r.Quantity)
		steps[i].Fulfilled = next
	}
	return steps, nil
}

// LineComplete indica si la línea alcanzó lo pedido dentro de epsilon.
func LineComplete(l *entity.OrderLine, epsilon decimal.Decimal) bool {
	return l.QuantityFulfilled.GreaterThanOrEqual(l.QuantityOrdered.Sub(epsilon))
}

// Complete indica si todas las líneas están cumplidas.
func Complete(lines []*entity.OrderLine, epsilon decimal.Decimal) bool {
	for _, l := range lines {
		if !LineComplete(l, epsilon) {
			return false
		}
	}
	return true
}

// Status devuelve el estado agregado: done si no queda nada pendiente, open en otro caso.
func Status(outstanding bool, open, done entity.OrderStatus) entity.OrderStatus {
	if outstanding {
		return open
	}
	return done
}
