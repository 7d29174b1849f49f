package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/fulfillment"
)

type orderRepo struct {
	store *Store
	tx    *state
	kind  entity.OrderKind
}

func (r *orderRepo) table(st *state) map[string]*entity.Order {
	t, ok := st.orders[r.kind]
	if !ok {
		t = map[string]*entity.Order{}
		st.orders[r.kind] = t
	}
	return t
}

func (r *orderRepo) Create(_ context.Context, order *entity.Order) error {
	return r.store.view(r.tx, func(st *state) error {
		t := r.table(st)
		if _, ok := t[order.ID]; ok {
			return domain.ErrConflict
		}
		for _, o := range t {
			if o.Code == order.Code {
				return domain.ErrConflict
			}
		}
		c := cloneOrder(order)
		c.Kind = r.kind
		t[order.ID] = c
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.store.view(r.tx, func(st *state) error {
		if o, ok := r.table(st)[id]; ok {
			out = cloneOrder(o)
		}
		return nil
	})
	return out, err
}

// GetForUpdate es GetByID: las transacciones ya están serializadas.
func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) List(_ context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	var all []*entity.Order
	err := r.store.view(r.tx, func(st *state) error {
		for _, o := range r.table(st) {
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.Counterparty != "" && o.Counterparty != f.Counterparty {
				continue
			}
			c := cloneOrder(o)
			c.Lines = nil
			all = append(all, c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if f.Offset >= total {
		return []*entity.Order{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}

func (r *orderRepo) mutate(id string, fn func(o *entity.Order) error) error {
	return r.store.view(r.tx, func(st *state) error {
		o, ok := r.table(st)[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if err := fn(o); err != nil {
			return err
		}
		o.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *orderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus) error {
	return r.mutate(id, func(o *entity.Order) error {
		o.Status = status
		return nil
	})
}

func (r *orderRepo) SetWarehouse(_ context.Context, id, warehouseID string) error {
	return r.mutate(id, func(o *entity.Order) error {
		o.WarehouseID = warehouseID
		return nil
	})
}

func (r *orderRepo) AddLineFulfilled(_ context.Context, lineID string, quantity, epsilon decimal.Decimal) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := r.store.view(r.tx, func(st *state) error {
		for _, o := range r.table(st) {
			l := o.Line(lineID)
			if l == nil {
				continue
			}
			next := l.QuantityFulfilled.Add(quantity)
			if next.Sub(l.QuantityOrdered).GreaterThan(epsilon) {
				return domain.OverFulfillment(l.ProductID, l.QuantityOrdered, next)
			}
			l.QuantityFulfilled = next
			out = next
			return nil
		}
		return domain.ErrLineNotFound
	})
	return out, err
}

func (r *orderRepo) HasOutstandingLines(_ context.Context, orderID string, epsilon decimal.Decimal) (bool, error) {
	var out bool
	err := r.store.view(r.tx, func(st *state) error {
		o, ok := r.table(st)[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = !fulfillment.Complete(o.Lines, epsilon)
		return nil
	})
	return out, err
}

func (r *orderRepo) ReplaceLines(_ context.Context, order *entity.Order) error {
	return r.mutate(order.ID, func(o *entity.Order) error {
		c := cloneOrder(order)
		o.Counterparty = c.Counterparty
		o.Currency = c.Currency
		o.WarehouseID = c.WarehouseID
		o.Note = c.Note
		o.Subtotal, o.DiscountTotal, o.TaxTotal, o.TotalAmount = c.Subtotal, c.DiscountTotal, c.TaxTotal, c.TotalAmount
		o.CurrencyRate, o.CurrencyRateAt = c.CurrencyRate, c.CurrencyRateAt
		o.Lines = c.Lines
		return nil
	})
}
