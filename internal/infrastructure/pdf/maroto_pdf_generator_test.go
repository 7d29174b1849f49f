package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
)

func sampleOrder() *entity.Order {
	rate := decimal.NewFromInt(4000)
	return &entity.Order{
		ID:           "o-1",
		Kind:         entity.OrderKindSalesB2B,
		Code:         "B2B-20261019-AB12",
		Counterparty: "Distribuidora Andina",
		Status:       entity.OrderStatusSent,
		Currency:     "USD",
		WarehouseID:  "w-1",
		Subtotal:     decimal.NewFromInt(180),
		TaxTotal:     decimal.RequireFromString("34.2"),
		TotalAmount:  decimal.RequireFromString("214.2"),
		CurrencyRate: &rate,
		CreatedAt:    time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Lines: []*entity.OrderLine{{
			ID:                "l-1",
			ProductID:         "p-1",
			QuantityOrdered:   decimal.NewFromInt(10),
			QuantityFulfilled: decimal.RequireFromString("2.5"),
			UnitPrice:         decimal.NewFromInt(20),
			Total:             decimal.RequireFromString("214.2"),
		}},
	}
}

func TestRenderOrder_ProducesPDF(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("test")

	for _, k := range []orders.Kind{orders.Purchase, orders.Sales, orders.SalesB2B} {
		t.Run(string(k.Kind), func(t *testing.T) {
			out, err := g.RenderOrder(context.Background(), k, sampleOrder())
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}

func TestRenderOrder_NilOrder(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator("").RenderOrder(context.Background(), orders.Sales, nil)
	assert.Error(t, err)
}
