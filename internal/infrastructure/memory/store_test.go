package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestRun_ErrorRevierteTodo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")

	err := s.Run(ctx, func(stock ledger.Store) error {
		_, err := stock.Levels.ApplyDelta(ctx, "p-1", "w-1", decimal.NewFromInt(5))
		require.NoError(t, err)
		require.NoError(t, stock.Moves.Create(ctx, &entity.StockMove{ID: "m-1", ProductID: "p-1", WarehouseID: "w-1", Kind: entity.MoveKindInbound, Quantity: decimal.NewFromInt(5)}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lv, err := s.Stock().Levels.Get(ctx, "p-1", "w-1")
	require.NoError(t, err)
	assert.Nil(t, lv, "el nivel creado dentro de la tx fallida no debe quedar")

	moves, err := s.Stock().Moves.List(ctx, entity.MoveFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestApplyDelta_NoPermiteNegativo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	levels := s.Stock().Levels

	_, err := levels.ApplyDelta(ctx, "p-1", "w-1", decimal.NewFromInt(3))
	require.NoError(t, err)

	_, err = levels.ApplyDelta(ctx, "p-1", "w-1", decimal.NewFromInt(-4))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	lv, err := levels.ApplyDelta(ctx, "p-1", "w-1", decimal.NewFromInt(-3))
	require.NoError(t, err)
	assert.True(t, lv.Quantity.IsZero())
}

func TestApplyDelta_SinNivelPrevioYSalida(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	_, err := s.Stock().Levels.ApplyDelta(ctx, "p-1", "w-1", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	lv, err := s.Stock().Levels.Get(ctx, "p-1", "w-1")
	require.NoError(t, err)
	assert.Nil(t, lv)
}

func TestOrders_CodigoDuplicadoPorFamilia(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	create := func(kind entity.OrderKind, id string) error {
		return s.RunOrders(ctx, kind, func(repo repository.OrderRepository, _ ledger.Store) error {
			return repo.Create(ctx, &entity.Order{ID: id, Code: "PO-20260101-AAAA", Status: entity.OrderStatusDraft})
		})
	}

	require.NoError(t, create(entity.OrderKindPurchase, "o-1"))
	assert.ErrorIs(t, create(entity.OrderKindPurchase, "o-2"), domain.ErrConflict)
	// cada familia tiene su propia tabla
	assert.NoError(t, create(entity.OrderKindSales, "o-3"))
}

func TestOrders_LecturaDevuelveCopia(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repo := s.Orders(entity.OrderKindSales)
	require.NoError(t, repo.Create(ctx, &entity.Order{
		ID:     "o-1",
		Code:   "SO-20260101-AAAA",
		Status: entity.OrderStatusDraft,
		Lines:  []*entity.OrderLine{{ID: "l-1", OrderID: "o-1", ProductID: "p-1", QuantityOrdered: decimal.NewFromInt(2)}},
	}))

	o, err := repo.GetByID(ctx, "o-1")
	require.NoError(t, err)
	o.Lines[0].QuantityFulfilled = decimal.NewFromInt(99)

	again, err := repo.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, again.Lines[0].QuantityFulfilled.IsZero())
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := memory.NewStore().Run(ctx, func(ledger.Store) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
