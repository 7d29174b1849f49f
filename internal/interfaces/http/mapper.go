package http

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toStockLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:        l.ProductID,
		WarehouseID:      l.WarehouseID,
		Quantity:         l.Quantity,
		ReservedQuantity: l.ReservedQuantity,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toStockLevelList(levels []*entity.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toStockLevelResponse(l))
	}
	return out
}

func toStockMoveResponse(m *entity.StockMove) dto.StockMoveResponse {
	return dto.StockMoveResponse{
		ID:                m.ID,
		GroupID:           m.GroupID,
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		Kind:              string(m.Kind),
		Quantity:          m.Quantity,
		SourceWarehouseID: m.SourceWarehouseID,
		TargetWarehouseID: m.TargetWarehouseID,
		Reference:         m.Reference,
		Note:              m.Note,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func toStockMoveList(moves []*entity.StockMove) []dto.StockMoveResponse {
	out := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, toStockMoveResponse(m))
	}
	return out
}

func toMovementResponse(r *ledger.Result) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		Moves:  toStockMoveList(r.Moves),
		Levels: toStockLevelList(r.Levels),
	}
}

func toAuditResponse(drifts []entity.LedgerDrift) dto.AuditResponse {
	out := dto.AuditResponse{Consistent: len(drifts) == 0, Drifts: make([]dto.LedgerDriftResponse, 0, len(drifts))}
	for _, d := range drifts {
		out.Drifts = append(out.Drifts, dto.LedgerDriftResponse{
			ProductID:     d.ProductID,
			WarehouseID:   d.WarehouseID,
			LevelQuantity: d.LevelQuantity,
			MoveQuantity:  d.MoveQuantity,
			Difference:    d.Difference(),
		})
	}
	return out
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:             o.ID,
		Kind:           string(o.Kind),
		Code:           o.Code,
		Counterparty:   o.Counterparty,
		Status:         string(o.Status),
		Currency:       o.Currency,
		WarehouseID:    o.WarehouseID,
		Subtotal:       o.Subtotal,
		DiscountTotal:  o.DiscountTotal,
		TaxTotal:       o.TaxTotal,
		TotalAmount:    o.TotalAmount,
		CurrencyRate:   o.CurrencyRate,
		CurrencyRateAt: o.CurrencyRateAt,
		Note:           o.Note,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Lines:          make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:                l.ID,
			Position:          l.Position,
			ProductID:         l.ProductID,
			QuantityOrdered:   l.QuantityOrdered,
			QuantityFulfilled: l.QuantityFulfilled,
			UnitPrice:         l.UnitPrice,
			DiscountRate:      l.DiscountRate,
			TaxRate:           l.TaxRate,
			Subtotal:          l.Subtotal,
			TaxAmount:         l.TaxAmount,
			Total:             l.Total,
		})
	}
	return out
}
