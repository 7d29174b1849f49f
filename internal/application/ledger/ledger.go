package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Input entrada de Receive, Issue y Adjust. En Adjust Quantity lleva signo.
type Input struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	Reference   string
	Note        string
	Actor       string
}

// TransferInput entrada de Transfer.
type TransferInput struct {
	ProductID         string
	SourceWarehouseID string
	TargetWarehouseID string
	Quantity          decimal.Decimal
	Reference         string
	Note              string
	Actor             string
}

// Result movimientos insertados y niveles resultantes, en el mismo orden.
type Result struct {
	Moves  []*entity.StockMove
	Levels []*entity.StockLevel
}

// Ledger libro de inventario: único punto de mutación de StockLevel.
// Cada delta es una actualización condicional atómica en el almacén más exactamente un StockMove.
type Ledger struct {
	tx    TxRunner
	store Store // lecturas fuera de transacción
	log   *logger.Logger
	now   func() time.Time
}

// New construye el libro. store se usa para consultas; las mutaciones van siempre por tx.
func New(tx TxRunner, store Store, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{tx: tx, store: store, log: log.Component("ledger"), now: time.Now}
}

// Receive registra una entrada (quantity > 0).
func (l *Ledger) Receive(ctx context.Context, in Input) (*Result, error) {
	d, err := inventory.Inbound(in.ProductID, in.WarehouseID, in.Quantity, meta(in))
	if err != nil {
		return nil, err
	}
	return l.run(ctx, d)
}

// Issue registra una salida (quantity > 0). Falla con ErrInsufficientStock si el nivel quedaría negativo.
func (l *Ledger) Issue(ctx context.Context, in Input) (*Result, error) {
	d, err := inventory.Outbound(in.ProductID, in.WarehouseID, in.Quantity, meta(in))
	if err != nil {
		return nil, err
	}
	return l.run(ctx, d)
}

// Adjust aplica un delta con signo. Con delta cero no escribe nada y devuelve el nivel actual (si existe).
func (l *Ledger) Adjust(ctx context.Context, in Input) (*Result, error) {
	d, err := inventory.Adjustment(in.ProductID, in.WarehouseID, in.Quantity, meta(in))
	if err != nil {
		return nil, err
	}
	if d.Quantity.IsZero() {
		level, err := l.GetLevel(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		if level != nil {
			res.Levels = append(res.Levels, level)
		}
		return res, nil
	}
	return l.run(ctx, d)
}

// Transfer mueve stock entre dos bodegas en una sola transacción: si el tramo de salida
// no tiene stock suficiente no se aplica ninguno de los dos.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (*Result, error) {
	m := inventory.Meta{Reference: in.Reference, Note: in.Note, Actor: in.Actor}
	legs, err := inventory.TransferLegs(in.ProductID, in.SourceWarehouseID, in.TargetWarehouseID, in.Quantity, m, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return l.run(ctx, legs[0], legs[1])
}

// ApplyInTx aplica deltas sobre repositorios de una transacción ya abierta por el llamador.
// Los deltas en cero se omiten.
func (l *Ledger) ApplyInTx(ctx context.Context, stock Store, deltas ...inventory.Delta) (*Result, error) {
	res := &Result{}
	at := l.now().UTC()
	for _, d := range deltas {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Quantity.IsZero() {
			continue
		}
		level, err := stock.Levels.ApplyDelta(ctx, d.ProductID, d.WarehouseID, d.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				l.log.Info().
					Str("product_id", d.ProductID).
					Str("warehouse_id", d.WarehouseID).
					Str("delta", d.Quantity.String()).
					Str("kind", string(d.Kind)).
					Msg("delta rechazado por stock insuficiente")
			}
			return nil, err
		}
		move := d.Move(uuid.NewString(), at)
		if err := stock.Moves.Create(ctx, move); err != nil {
			return nil, fmt.Errorf("registrar movimiento: %w", err)
		}
		l.log.Debug().
			Str("move_id", move.ID).
			Str("product_id", move.ProductID).
			Str("warehouse_id", move.WarehouseID).
			Str("kind", string(move.Kind)).
			Str("quantity", move.Quantity.String()).
			Str("level", level.Quantity.String()).
			Str("reference", move.Reference).
			Msg("movimiento aplicado")
		res.Moves = append(res.Moves, move)
		res.Levels = append(res.Levels, level)
	}
	return res, nil
}

func (l *Ledger) run(ctx context.Context, deltas ...inventory.Delta) (*Result, error) {
	var res *Result
	err := l.tx.Run(ctx, func(stock Store) error {
		var err error
		res, err = l.ApplyInTx(ctx, stock, deltas...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetLevel devuelve el nivel del par o (nil, nil) si nunca tuvo movimientos.
func (l *Ledger) GetLevel(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.store.Levels.Get(ctx, productID, warehouseID)
}

// GetSummary devuelve todos los niveles que coinciden con el filtro.
func (l *Ledger) GetSummary(ctx context.Context, filter entity.StockFilter) ([]*entity.StockLevel, error) {
	return l.store.Levels.List(ctx, filter)
}

// ListMoves historial de movimientos, más recientes primero.
func (l *Ledger) ListMoves(ctx context.Context, filter entity.MoveFilter) ([]*entity.StockMove, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.ErrInvalidInput
	}
	return l.store.Moves.List(ctx, filter)
}

// Audit compara cada nivel con la suma de sus movimientos. Una lista vacía significa libro consistente.
func (l *Ledger) Audit(ctx context.Context, filter entity.StockFilter) ([]entity.LedgerDrift, error) {
	drifts, err := l.store.Moves.Audit(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		l.log.Warn().
			Str("product_id", d.ProductID).
			Str("warehouse_id", d.WarehouseID).
			Str("level", d.LevelQuantity.String()).
			Str("moves", d.MoveQuantity.String()).
			Msg("nivel no cuadra con el libro")
	}
	return drifts, nil
}

func meta(in Input) inventory.Meta {
	return inventory.Meta{Reference: in.Reference, Note: in.Note, Actor: in.Actor}
}
