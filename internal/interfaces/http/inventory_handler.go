package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryHandler expone el libro de inventario: mutaciones, niveles, historial y auditoría (protegido).
type InventoryHandler struct {
	ledger *ledger.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(l *ledger.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: l}
}

// Receive godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, warehouse_id, quantity > 0"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.Receive)
}

// Issue godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, warehouse_id, quantity > 0"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/issue [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.Issue)
}

// Adjust godoc
// @Summary      Ajuste manual (cantidad con signo)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "quantity con signo; 0 no registra movimiento"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.Adjust)
}

func (h *InventoryHandler) mutate(c *fiber.Ctx, op func(ctx context.Context, in ledger.Input) (*ledger.Result, error)) error {
	actor := GetActorID(c)
	if actor == "" {
		return unauthorizedActor(c)
	}
	var in dto.StockMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := op(c.UserContext(), ledger.Input{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
		Note:        in.Note,
		Actor:       actor,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// Transfer godoc
// @Summary      Traslado entre bodegas (dos movimientos atómicos)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockTransferRequest  true  "origen y destino distintos, quantity > 0"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	actor := GetActorID(c)
	if actor == "" {
		return unauthorizedActor(c)
	}
	var in dto.StockTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.Transfer(c.UserContext(), ledger.TransferInput{
		ProductID:         in.ProductID,
		SourceWarehouseID: in.SourceWarehouseID,
		TargetWarehouseID: in.TargetWarehouseID,
		Quantity:          in.Quantity,
		Reference:         in.Reference,
		Note:              in.Note,
		Actor:             actor,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// GetLevel godoc
// @Summary      Nivel de stock de un par producto/bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "Producto"
// @Param        warehouse_id  path  string  true  "Bodega"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse  "NO_RECORD: el par nunca tuvo movimientos"
// @Router       /api/stock/levels/{product_id}/{warehouse_id} [get]
func (h *InventoryHandler) GetLevel(c *fiber.Ctx) error {
	lv, err := h.ledger.GetLevel(c.UserContext(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	if lv == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_RECORD", Message: "sin registro de stock para el par"})
	}
	return c.JSON(toStockLevelResponse(lv))
}

// GetSummary godoc
// @Summary      Niveles de stock filtrados por producto y/o bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/levels [get]
func (h *InventoryHandler) GetSummary(c *fiber.Ctx) error {
	levels, err := h.ledger.GetSummary(c.UserContext(), stockFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockLevelList(levels))
}

// ListMoves godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        reference     query  string  false  "Referencia (p.ej. código de orden)"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMoveListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/moves [get]
func (h *InventoryHandler) ListMoves(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 100), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage(100)
	if page.Limit > 500 {
		page.Limit = 500
	}
	filter := entity.MoveFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Reference:   c.Query("reference"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	moves, err := h.ledger.ListMoves(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockMoveListResponse{
		Items: toStockMoveList(moves),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Audit godoc
// @Summary      Auditoría: niveles contra suma de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.AuditResponse
// @Router       /api/stock/audit [get]
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	drifts, err := h.ledger.Audit(c.UserContext(), stockFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAuditResponse(drifts))
}

func stockFilter(c *fiber.Ctx) entity.StockFilter {
	return entity.StockFilter{ProductID: c.Query("product_id"), WarehouseID: c.Query("warehouse_id")}
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
