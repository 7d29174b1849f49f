package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/fulfillment"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Reconciler aplica cantidades cumplidas a las líneas de una orden, registra el movimiento
// físico en el libro y decide el estado agregado. Trabaja siempre dentro de la tx del llamador.
type Reconciler struct {
	kind    Kind
	stock   StockPoster
	epsilon decimal.Decimal
}

// NewReconciler construye el conciliador para una familia.
func NewReconciler(kind Kind, stock StockPoster, epsilon decimal.Decimal) *Reconciler {
	return &Reconciler{kind: kind, stock: stock, epsilon: epsilon}
}

// Reconciliation resultado de aplicar un cumplimiento.
type Reconciliation struct {
	Moves  []*entity.StockMove
	Status entity.OrderStatus
}

// Apply valida las solicitudes contra las líneas (bloqueadas) de order, incrementa cada línea de forma
// atómica, registra el movimiento de stock con el código de la orden como referencia y recalcula el estado.
func (r *Reconciler) Apply(
	ctx context.Context,
	orders repository.OrderRepository,
	stock ledger.Store,
	order *entity.Order,
	warehouseID, actor string,
	requests []fulfillment.Request,
) (*Reconciliation, error) {
	if r.stock == nil {
		return nil, domain.ErrDependencyUnavailable
	}
	steps, err := fulfillment.Plan(order.Lines, requests, r.epsilon)
	if err != nil {
		return nil, err
	}

	out := &Reconciliation{}
	for _, s := range steps {
		if _, err := orders.AddLineFulfilled(ctx, s.Line.ID, s.Quantity, r.epsilon); err != nil {
			return nil, err
		}
		d, err := r.delta(s, warehouseID, order.Code, actor)
		if err != nil {
			return nil, err
		}
		res, err := r.stock.ApplyInTx(ctx, stock, d)
		if err != nil {
			return nil, err
		}
		out.Moves = append(out.Moves, res.Moves...)
	}

	outstanding, err := orders.HasOutstandingLines(ctx, order.ID, r.epsilon)
	if err != nil {
		return nil, err
	}
	out.Status = fulfillment.Status(outstanding, r.kind.OpenStatus, r.kind.DoneStatus)
	return out, nil
}

func (r *Reconciler) delta(s fulfillment.Step, warehouseID, code, actor string) (inventory.Delta, error) {
	m := inventory.Meta{
		Reference: code,
		Note:      fmt.Sprintf("%s %s", r.kind.Label, code),
		Actor:     actor,
	}
	if r.kind.Movement == entity.MoveKindInbound {
		return inventory.Inbound(s.Line.ProductID, warehouseID, s.Quantity, m)
	}
	return inventory.Outbound(s.Line.ProductID, warehouseID, s.Quantity, m)
}
