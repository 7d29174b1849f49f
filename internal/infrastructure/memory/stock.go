package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

type levelRepo struct {
	store *Store
	tx    *state
}

func (r *levelRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.store.view(r.tx, func(st *state) error {
		if lv, ok := st.levels[levelKey{productID, warehouseID}]; ok {
			c := *lv
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *levelRepo) ApplyDelta(_ context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.store.view(r.tx, func(st *state) error {
		k := levelKey{productID, warehouseID}
		lv, ok := st.levels[k]
		current := decimal.Zero
		if ok {
			current = lv.Quantity
		}
		next := current.Add(delta)
		if next.IsNegative() {
			return domain.InsufficientStock(productID, warehouseID)
		}
		if !ok {
			lv = &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID, ReservedQuantity: decimal.Zero}
			st.levels[k] = lv
		}
		lv.Quantity = next
		lv.UpdatedAt = time.Now().UTC()
		c := *lv
		out = &c
		return nil
	})
	return out, err
}

func (r *levelRepo) List(_ context.Context, filter entity.StockFilter) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	err := r.store.view(r.tx, func(st *state) error {
		for _, lv := range st.levels {
			if matchLevel(lv.ProductID, lv.WarehouseID, filter) {
				c := *lv
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, err
}

func matchLevel(productID, warehouseID string, f entity.StockFilter) bool {
	return (f.ProductID == "" || f.ProductID == productID) && (f.WarehouseID == "" || f.WarehouseID == warehouseID)
}

type moveRepo struct {
	store *Store
	tx    *state
}

func (r *moveRepo) Create(_ context.Context, move *entity.StockMove) error {
	c := *move
	return r.store.view(r.tx, func(st *state) error {
		st.moves = append(st.moves, &c)
		return nil
	})
}

// List devuelve los movimientos más recientes primero (orden inverso de inserción).
func (r *moveRepo) List(_ context.Context, f entity.MoveFilter) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	err := r.store.view(r.tx, func(st *state) error {
		skipped := 0
		for i := len(st.moves) - 1; i >= 0; i-- {
			m := st.moves[i]
			if !matchLevel(m.ProductID, m.WarehouseID, entity.StockFilter{ProductID: f.ProductID, WarehouseID: f.WarehouseID}) {
				continue
			}
			if f.Reference != "" && m.Reference != f.Reference {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.CreatedAt.Before(*f.To) {
				continue
			}
			if skipped < f.Offset {
				skipped++
				continue
			}
			c := *m
			out = append(out, &c)
			if f.Limit > 0 && len(out) >= f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *moveRepo) Audit(_ context.Context, f entity.StockFilter) ([]entity.LedgerDrift, error) {
	var out []entity.LedgerDrift
	err := r.store.view(r.tx, func(st *state) error {
		sums := map[levelKey]decimal.Decimal{}
		for _, m := range st.moves {
			k := levelKey{m.ProductID, m.WarehouseID}
			sums[k] = sums[k].Add(m.Quantity)
		}
		for k, lv := range st.levels {
			if !matchLevel(k.product, k.warehouse, f) {
				continue
			}
			if s := sums[k]; !s.Equal(lv.Quantity) {
				out = append(out, entity.LedgerDrift{ProductID: k.product, WarehouseID: k.warehouse, LevelQuantity: lv.Quantity, MoveQuantity: s})
			}
		}
		for k, s := range sums {
			if _, ok := st.levels[k]; !ok && matchLevel(k.product, k.warehouse, f) {
				out = append(out, entity.LedgerDrift{ProductID: k.product, WarehouseID: k.warehouse, LevelQuantity: decimal.Zero, MoveQuantity: s})
			}
		}
		return nil
	})
	return out, err
}
