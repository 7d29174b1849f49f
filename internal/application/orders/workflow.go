package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/fulfillment"
	"github.com/jhoicas/inventario-ledger/internal/domain/pricing"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// LineInput línea solicitada al crear o editar una orden.
type LineInput struct {
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
}

// CreateInput datos de cabecera y líneas. Code vacío = se genera.
type CreateInput struct {
	Code         string
	Counterparty string
	Currency     string
	WarehouseID  string
	Note         string
	Actor        string
	Lines        []LineInput
}

// UpdateInput reemplazo completo de cabecera editable y líneas.
type UpdateInput struct {
	OrderID      string
	Counterparty string
	Currency     string
	WarehouseID  string
	Note         string
	Lines        []LineInput
}

// FulfillInput recepción (compras) o entrega (ventas). WarehouseID vacío = bodega de la orden.
type FulfillInput struct {
	OrderID     string
	WarehouseID string
	Actor       string
	Lines       []fulfillment.Request
}

// FulfillResult orden actualizada y movimientos registrados.
type FulfillResult struct {
	Order *entity.Order
	Moves []*entity.StockMove
}

// Options parámetros comunes a todas las familias.
type Options struct {
	Epsilon      decimal.Decimal
	BaseCurrency string
	Logger       *logger.Logger
}

// Workflow máquina de estados genérica de órdenes: draft -> abierta -> terminal, con cancelación
// desde draft o abierta. La familia (compra, venta, venta B2B) la fija el descriptor Kind.
type Workflow struct {
	kind       Kind
	tx         TxRunner
	pricing    PricingPolicy
	reconciler *Reconciler
	opts       Options
	log        *logger.Logger
	now        func() time.Time
}

// NewWorkflow construye el flujo. stock puede ser nil: entonces Fulfill falla con ErrDependencyUnavailable.
func NewWorkflow(kind Kind, tx TxRunner, stock StockPoster, policy PricingPolicy, opts Options) *Workflow {
	if opts.Epsilon.IsZero() {
		opts.Epsilon = fulfillment.DefaultEpsilon
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "COP"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if policy == nil {
		policy = SimplePricing{}
	}
	return &Workflow{
		kind:       kind,
		tx:         tx,
		pricing:    policy,
		reconciler: NewReconciler(kind, stock, opts.Epsilon),
		opts:       opts,
		log:        opts.Logger.Component("orders").WithField("kind", string(kind.Kind)),
		now:        time.Now,
	}
}

// Kind descriptor de la familia que maneja este flujo.
func (w *Workflow) Kind() Kind { return w.kind }

// Create valida, calcula importes y persiste la orden en draft.
func (w *Workflow) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if strings.TrimSpace(in.Counterparty) == "" {
		return nil, domain.ErrInvalidInput
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = w.opts.BaseCurrency
	}
	now := w.now().UTC()

	order := &entity.Order{
		ID:           uuid.NewString(),
		Kind:         w.kind.Kind,
		Code:         strings.TrimSpace(in.Code),
		Counterparty: strings.TrimSpace(in.Counterparty),
		Status:       entity.OrderStatusDraft,
		Currency:     currency,
		WarehouseID:  in.WarehouseID,
		Note:         in.Note,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if order.Code == "" {
		order.Code = NewCode(w.kind.Prefix, now)
	}
	if err := w.price(order, in.Lines); err != nil {
		return nil, err
	}
	order.CurrencyRate, order.CurrencyRateAt = w.pricing.Snapshot(ctx, currency)

	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, _ ledger.Store) error {
		return repo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("order_id", order.ID).Str("code", order.Code).Int("lines", len(order.Lines)).Msg("orden creada")
	return order, nil
}

// price construye las líneas de la orden y recalcula totales. Las líneas en cero se omiten.
func (w *Workflow) price(order *entity.Order, in []LineInput) error {
	if len(in) == 0 {
		return domain.ErrEmptyOrder
	}
	lines := make([]*entity.OrderLine, 0, len(in))
	amounts := make([]pricing.Line, 0, len(in))
	for _, li := range in {
		if strings.TrimSpace(li.ProductID) == "" {
			return domain.ErrInvalidInput
		}
		if li.Quantity.IsNegative() {
			return domain.ErrInvalidQuantity
		}
		if li.Quantity.IsZero() {
			continue
		}
		if li.UnitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		a, err := w.pricing.PriceLine(li)
		if err != nil {
			return err
		}
		amounts = append(amounts, a)
		lines = append(lines, &entity.OrderLine{
			ID:                uuid.NewString(),
			OrderID:           order.ID,
			Position:          len(lines) + 1,
			ProductID:         strings.TrimSpace(li.ProductID),
			QuantityOrdered:   li.Quantity,
			QuantityFulfilled: decimal.Zero,
			UnitPrice:         li.UnitPrice,
			DiscountRate:      li.DiscountRate,
			TaxRate:           li.TaxRate,
			Subtotal:          a.Subtotal,
			TaxAmount:         a.Tax,
			Total:             a.Total,
		})
	}
	if len(lines) == 0 {
		return domain.ErrEmptyOrder
	}
	t := pricing.Sum(amounts)
	order.Lines = lines
	order.Subtotal, order.DiscountTotal, order.TaxTotal, order.TotalAmount = t.Subtotal, t.Discount, t.Tax, t.Total
	return nil
}

// Confirm transición draft -> abierta. Sin efecto sobre stock.
func (w *Workflow) Confirm(ctx context.Context, orderID string) (*entity.Order, error) {
	return w.transition(ctx, orderID, w.kind.OpenStatus, func(s entity.OrderStatus) bool {
		return s == entity.OrderStatusDraft
	})
}

// Cancel transición a cancelled desde draft o abierta. No revierte movimientos ya registrados.
func (w *Workflow) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	return w.transition(ctx, orderID, entity.OrderStatusCancelled, w.kind.Cancellable)
}

func (w *Workflow) transition(ctx context.Context, orderID string, to entity.OrderStatus, allowed func(entity.OrderStatus) bool) (*entity.Order, error) {
	var order *entity.Order
	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, _ ledger.Store) error {
		o, err := repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		if !allowed(o.Status) {
			return domain.ErrInvalidStatus
		}
		if err := repo.UpdateStatus(ctx, orderID, to); err != nil {
			return err
		}
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("order_id", orderID).Str("status", string(to)).Msg("transición de estado")
	return order, nil
}

// Fulfill registra recepción o entrega de las líneas indicadas en una sola transacción:
// incrementos de línea, movimientos de stock, bodega usada y estado agregado.
func (w *Workflow) Fulfill(ctx context.Context, in FulfillInput) (*FulfillResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	res := &FulfillResult{}
	var from entity.OrderStatus
	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, stock ledger.Store) error {
		o, err := repo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		// una orden terminada sigue aceptando la solicitud para que el exceso se reporte como sobre-cumplimiento
		if o.Status != w.kind.OpenStatus && o.Status != w.kind.DoneStatus {
			return domain.ErrInvalidStatus
		}
		from = o.Status

		warehouseID := in.WarehouseID
		if warehouseID == "" {
			warehouseID = o.WarehouseID
		}
		if warehouseID == "" {
			return domain.ErrWarehouseRequired
		}

		rec, err := w.reconciler.Apply(ctx, repo, stock, o, warehouseID, in.Actor, in.Lines)
		if err != nil {
			return err
		}
		if o.WarehouseID == "" {
			if err := repo.SetWarehouse(ctx, o.ID, warehouseID); err != nil {
				return err
			}
		}
		if rec.Status != o.Status {
			if err := repo.UpdateStatus(ctx, o.ID, rec.Status); err != nil {
				return err
			}
		}
		res.Moves = rec.Moves

		res.Order, err = repo.GetByID(ctx, o.ID)
		return err
	})
	if err != nil {
		w.log.Info().Err(err).Str("order_id", in.OrderID).Msg("cumplimiento rechazado")
		return nil, err
	}
	w.log.Info().
		Str("order_id", res.Order.ID).
		Str("code", res.Order.Code).
		Int("moves", len(res.Moves)).
		Str("from", string(from)).
		Str("status", string(res.Order.Status)).
		Msg("cumplimiento registrado")
	return res, nil
}

// Update reemplaza cabecera editable y líneas (sólo familias editables). Se rechaza si alguna línea
// ya tiene cumplimiento. La tasa de cambio sólo se vuelve a capturar si cambia la moneda.
func (w *Workflow) Update(ctx context.Context, in UpdateInput) (*entity.Order, error) {
	if !w.kind.Updatable {
		return nil, domain.ErrNotSupported
	}
	if strings.TrimSpace(in.Counterparty) == "" {
		return nil, domain.ErrInvalidInput
	}

	// La tasa se captura antes de abrir la transacción.
	reqCurrency := strings.ToUpper(strings.TrimSpace(in.Currency))
	var (
		rate   *decimal.Decimal
		rateAt *time.Time
	)
	if reqCurrency != "" {
		rate, rateAt = w.pricing.Snapshot(ctx, reqCurrency)
	}

	var order *entity.Order
	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, _ ledger.Store) error {
		o, err := repo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		if o.Status != entity.OrderStatusDraft && o.Status != w.kind.OpenStatus {
			return domain.ErrInvalidStatus
		}
		if o.HasFulfillment() {
			return domain.ErrFulfillmentStarted
		}

		currency := reqCurrency
		if currency == "" {
			currency = o.Currency
		}
		if currency != o.Currency {
			o.CurrencyRate, o.CurrencyRateAt = rate, rateAt
		}
		o.Counterparty = strings.TrimSpace(in.Counterparty)
		o.Currency = currency
		o.WarehouseID = in.WarehouseID
		o.Note = in.Note
		if err := w.price(o, in.Lines); err != nil {
			return err
		}
		if err := repo.ReplaceLines(ctx, o); err != nil {
			return err
		}
		order, err = repo.GetByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("order_id", order.ID).Int("lines", len(order.Lines)).Msg("orden actualizada")
	return order, nil
}

// GetByID devuelve la orden con sus líneas.
func (w *Workflow) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, _ ledger.Store) error {
		var err error
		order, err = repo.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// List devuelve una página de órdenes y el total.
func (w *Workflow) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	var (
		list  []*entity.Order
		total int
	)
	err := w.tx.RunOrders(ctx, w.kind.Kind, func(repo repository.OrderRepository, _ ledger.Store) error {
		var err error
		list, total, err = repo.List(ctx, filter)
		return err
	})
	return list, total, err
}
