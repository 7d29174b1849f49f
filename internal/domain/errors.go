package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores "de clase" permiten mapear a códigos HTTP con errors.Is;
// los errores específicos envuelven una clase con %w.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrOverFulfillment       = errors.New("cantidad excede lo pendiente de la línea")
	ErrDependencyUnavailable = errors.New("dependencia no disponible")
	ErrUnauthorized          = errors.New("no autorizado")
)

var (
	ErrOrderNotFound      = fmt.Errorf("orden no encontrada: %w", ErrNotFound)
	ErrLineNotFound       = fmt.Errorf("línea no pertenece a la orden: %w", ErrNotFound)
	ErrInvalidQuantity    = fmt.Errorf("la cantidad debe ser positiva: %w", ErrInvalidInput)
	ErrEmptyOrder         = fmt.Errorf("la orden requiere al menos una línea: %w", ErrInvalidInput)
	ErrSameWarehouse      = fmt.Errorf("bodega origen y destino deben ser distintas: %w", ErrInvalidInput)
	ErrWarehouseRequired  = fmt.Errorf("bodega requerida: %w", ErrInvalidInput)
	ErrInvalidStatus      = fmt.Errorf("transición de estado no permitida: %w", ErrConflict)
	ErrFulfillmentStarted = fmt.Errorf("la orden ya tiene cantidades recibidas o entregadas: %w", ErrConflict)
	ErrNotSupported       = fmt.Errorf("operación no soportada para este tipo de orden: %w", ErrInvalidInput)
)

// OverFulfillment construye el error de sobre-cumplimiento indicando el producto de la línea.
func OverFulfillment(productID string, ordered, fulfilled fmt.Stringer) error {
	return fmt.Errorf("%w: producto %s (pedido %s, acumulado %s)", ErrOverFulfillment, productID, ordered, fulfilled)
}

// InsufficientStock construye el error de stock insuficiente para un par producto/bodega.
func InsufficientStock(productID, warehouseID string) error {
	return fmt.Errorf("%w: producto %s en bodega %s", ErrInsufficientStock, productID, warehouseID)
}
