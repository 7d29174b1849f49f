package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/fulfillment"
)

// OrderHandler maneja una familia de órdenes (compra, venta o venta B2B) sobre el flujo genérico.
// Las rutas son las mismas para todas; sólo cambian el prefijo y el verbo de cumplimiento.
type OrderHandler struct {
	wf   *orders.Workflow
	docs *orders.DocumentUseCase
}

// NewOrderHandler construye el handler. docs puede ser nil: la descarga del PDF responde 503.
func NewOrderHandler(wf *orders.Workflow, docs *orders.DocumentUseCase) *OrderHandler {
	return &OrderHandler{wf: wf, docs: docs}
}

// Create godoc
// @Summary      Crear orden en borrador
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        family  path  string                  true  "purchase-orders | sales-orders | b2b-sales-orders"
// @Param        body    body  dto.CreateOrderRequest  true  "Cabecera y líneas"
// @Success      201     {object}  dto.OrderResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/{family} [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	actor := GetActorID(c)
	if actor == "" {
		return unauthorizedActor(c)
	}
	var in dto.CreateOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	o, err := h.wf.Create(c.UserContext(), orders.CreateInput{
		Code:         in.Code,
		Counterparty: in.Counterparty,
		Currency:     in.Currency,
		WarehouseID:  in.WarehouseID,
		Note:         in.Note,
		Actor:        actor,
		Lines:        lineInputs(in.Lines),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
}

// Update godoc
// @Summary      Editar orden B2B (reemplaza cabecera y líneas)
// @Description  Sólo en borrador o enviada y sin cumplimiento registrado.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderRequest  true  "Cabecera y líneas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/b2b-sales-orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	o, err := h.wf.Update(c.UserContext(), orders.UpdateInput{
		OrderID:      c.Params("id"),
		Counterparty: in.Counterparty,
		Currency:     in.Currency,
		WarehouseID:  in.WarehouseID,
		Note:         in.Note,
		Lines:        lineInputs(in.Lines),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Confirm godoc
// @Summary      Confirmar orden (borrador -> en curso)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        family  path  string  true  "Familia"
// @Param        id      path  string  true  "ID de la orden"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/{family}/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	o, err := h.wf.Confirm(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Cancel godoc
// @Summary      Cancelar orden (no revierte movimientos)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        family  path  string  true  "Familia"
// @Param        id      path  string  true  "ID de la orden"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/{family}/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.wf.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Fulfill godoc
// @Summary      Registrar recepción (compras) o entrega (ventas)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.FulfillOrderRequest  true  "Líneas y cantidades"
// @Success      200   {object}  dto.FulfillOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "OVER_FULFILLMENT | INSUFFICIENT_STOCK | INVALID_STATUS"
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
// @Router       /api/sales-orders/{id}/deliver [post]
// @Router       /api/b2b-sales-orders/{id}/deliver [post]
func (h *OrderHandler) Fulfill(c *fiber.Ctx) error {
	actor := GetActorID(c)
	if actor == "" {
		return unauthorizedActor(c)
	}
	var in dto.FulfillOrderRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	reqs := make([]fulfillment.Request, 0, len(in.Lines))
	for _, l := range in.Lines {
		reqs = append(reqs, fulfillment.Request{LineID: l.LineID, Quantity: l.Quantity})
	}
	res, err := h.wf.Fulfill(c.UserContext(), orders.FulfillInput{
		OrderID:     c.Params("id"),
		WarehouseID: in.WarehouseID,
		Actor:       actor,
		Lines:       reqs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FulfillOrderResponse{
		Order: toOrderResponse(res.Order),
		Moves: toStockMoveList(res.Moves),
	})
}

// GetByID godoc
// @Summary      Obtener orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        family  path  string  true  "Familia"
// @Param        id      path  string  true  "ID de la orden"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/{family}/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.wf.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        family        path   string  true   "Familia"
// @Param        status        query  string  false  "Estado"
// @Param        counterparty  query  string  false  "Proveedor o cliente"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/{family} [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage(50)
	if page.Limit > 200 {
		page.Limit = 200
	}
	list, total, err := h.wf.List(c.UserContext(), entity.OrderFilter{
		Status:       entity.OrderStatus(c.Query("status")),
		Counterparty: c.Query("counterparty"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Document godoc
// @Summary      Descargar PDF de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        family  path  string  true  "Familia"
// @Param        id      path  string  true  "ID de la orden"
// @Success      200     {file}    binary
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      503     {object}  dto.ErrorResponse
// @Router       /api/{family}/{id}/pdf [get]
func (h *OrderHandler) Document(c *fiber.Ctx) error {
	if h.docs == nil {
		return writeError(c, domain.ErrDependencyUnavailable)
	}
	pdfBytes, filename, err := h.docs.Download(c.UserContext(), h.wf, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdfBytes)
}

func lineInputs(in []dto.OrderLineRequest) []orders.LineInput {
	out := make([]orders.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, orders.LineInput{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			DiscountRate: l.DiscountRate,
			TaxRate:      l.TaxRate,
		})
	}
	return out
}
