package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

var meta = inventory.Meta{Reference: "PO-20240101-AB12", Note: "recepción", Actor: "u-1"}

func TestInbound_RutaDestino(t *testing.T) {
	d, err := inventory.Inbound("p1", "w1", decimal.NewFromInt(5), meta)
	require.NoError(t, err)
	assert.Equal(t, entity.MoveKindInbound, d.Kind)
	assert.True(t, d.Quantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "w1", d.TargetWarehouseID)
	assert.Empty(t, d.SourceWarehouseID)
}

func TestOutbound_AplicaNegativo(t *testing.T) {
	d, err := inventory.Outbound("p1", "w1", decimal.NewFromInt(3), meta)
	require.NoError(t, err)
	assert.True(t, d.Quantity.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, "w1", d.SourceWarehouseID)
	assert.Empty(t, d.TargetWarehouseID)
}

func TestInboundOutbound_CantidadNoPositiva(t *testing.T) {
	for _, q := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := inventory.Inbound("p1", "w1", q, meta)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = inventory.Outbound("p1", "w1", q, meta)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestAdjustment_RutaSegunSigno(t *testing.T) {
	up, err := inventory.Adjustment("p1", "w1", decimal.NewFromInt(2), meta)
	require.NoError(t, err)
	assert.Equal(t, "w1", up.TargetWarehouseID)

	down, err := inventory.Adjustment("p1", "w1", decimal.NewFromInt(-2), meta)
	require.NoError(t, err)
	assert.Equal(t, "w1", down.SourceWarehouseID)

	zero, err := inventory.Adjustment("p1", "w1", decimal.Zero, meta)
	require.NoError(t, err)
	assert.True(t, zero.Quantity.IsZero())
}

func TestTransferLegs(t *testing.T) {
	legs, err := inventory.TransferLegs("p1", "A", "B", decimal.NewFromInt(4), meta, "g-1")
	require.NoError(t, err)

	out, in := legs[0], legs[1]
	assert.Equal(t, "A", out.WarehouseID)
	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, "B", in.WarehouseID)
	assert.True(t, in.Quantity.Equal(decimal.NewFromInt(4)))
	for _, l := range legs {
		assert.Equal(t, entity.MoveKindTransfer, l.Kind)
		assert.Equal(t, "A", l.SourceWarehouseID)
		assert.Equal(t, "B", l.TargetWarehouseID)
		assert.Equal(t, "g-1", l.GroupID)
	}
}

func TestTransferLegs_Invalidos(t *testing.T) {
	_, err := inventory.TransferLegs("p1", "A", "A", decimal.NewFromInt(1), meta, "g")
	assert.ErrorIs(t, err, domain.ErrSameWarehouse)

	_, err = inventory.TransferLegs("p1", "A", "B", decimal.Zero, meta, "g")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.TransferLegs("p1", "", "B", decimal.NewFromInt(1), meta, "g")
	assert.ErrorIs(t, err, domain.ErrWarehouseRequired)

	_, err = inventory.TransferLegs("", "A", "B", decimal.NewFromInt(1), meta, "g")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelta_Move(t *testing.T) {
	d, err := inventory.Inbound("p1", "w1", decimal.NewFromInt(7), meta)
	require.NoError(t, err)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	m := d.Move("m-1", at)
	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, "p1", m.ProductID)
	assert.Equal(t, meta.Reference, m.Reference)
	assert.Equal(t, meta.Actor, m.CreatedBy)
	assert.Equal(t, at, m.CreatedAt)
}
