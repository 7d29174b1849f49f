package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/rates"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RateHandler registro y consulta de tasas de cambio (protegido).
type RateHandler struct {
	svc *rates.Service
}

// NewRateHandler construye el handler.
func NewRateHandler(svc *rates.Service) *RateHandler {
	return &RateHandler{svc: svc}
}

// Register godoc
// @Summary      Registrar tasa de cambio
// @Tags         currency-rates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CurrencyRateRequest  true  "currency ISO 4217, rate > 0"
// @Success      201   {object}  dto.CurrencyRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/currency-rates [post]
func (h *RateHandler) Register(c *fiber.Ctx) error {
	var in dto.CurrencyRateRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	rate, err := h.svc.Register(c.UserContext(), rates.RegisterInput{
		Currency:    in.Currency,
		Rate:        in.Rate,
		EffectiveAt: in.EffectiveAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRateResponse(rate))
}

// Latest godoc
// @Summary      Tasa vigente de una moneda
// @Tags         currency-rates
// @Security     Bearer
// @Produce      json
// @Param        currency  path  string  true  "Moneda ISO 4217"
// @Success      200  {object}  dto.CurrencyRateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/currency-rates/{currency} [get]
func (h *RateHandler) Latest(c *fiber.Ctx) error {
	rate, err := h.svc.Latest(c.UserContext(), c.Params("currency"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRateResponse(rate))
}

func toRateResponse(r *entity.CurrencyRate) dto.CurrencyRateResponse {
	return dto.CurrencyRateResponse{Currency: r.Currency, Rate: r.Rate, EffectiveAt: r.EffectiveAt}
}
