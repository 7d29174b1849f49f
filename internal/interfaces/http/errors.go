package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// writeError traduce un error de dominio a status HTTP y cuerpo dto.ErrorResponse.
// El orden importa: los errores específicos se evalúan antes que su clase.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrOverFulfillment):
		status, code = fiber.StatusConflict, "OVER_FULFILLMENT"
	case errors.Is(err, domain.ErrFulfillmentStarted):
		status, code = fiber.StatusConflict, "FULFILLMENT_STARTED"
	case errors.Is(err, domain.ErrInvalidStatus):
		status, code = fiber.StatusConflict, "INVALID_STATUS"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrDependencyUnavailable):
		status, code = fiber.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// unauthorizedActor respuesta cuando el token no dejó actor en el contexto.
func unauthorizedActor(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
