package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// DocumentUseCase genera el PDF de una orden (cabecera, líneas pedidas/cumplidas, totales y QR del código).
type DocumentUseCase struct {
	renderer DocumentRenderer
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(renderer DocumentRenderer) *DocumentUseCase {
	return &DocumentUseCase{renderer: renderer}
}

// Download devuelve los bytes del PDF y un nombre de archivo sugerido.
//
// Retorna:
//   - domain.ErrOrderNotFound          si la orden no existe.
//   - domain.ErrDependencyUnavailable  si no hay generador configurado.
func (uc *DocumentUseCase) Download(ctx context.Context, w *Workflow, orderID string) (pdfBytes []byte, filename string, err error) {
	if uc.renderer == nil {
		return nil, "", domain.ErrDependencyUnavailable
	}
	order, err := w.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.renderer.RenderOrder(ctx, w.Kind(), order)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("%s_%s.pdf", strings.ToLower(string(w.Kind().Kind)), order.Code)
	return pdfBytes, filename, nil
}
