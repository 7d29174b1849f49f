// Package pdf genera la representación imprimible de las órdenes de compra y venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de orden + estado │  Código + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTRAPARTE: proveedor o cliente, bodega, moneda           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Pedido | Cumplido | P.Unit | Total        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuestos / TOTAL           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del código + nota                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa orders.DocumentRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador; author se escribe en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// RenderOrder genera el PDF de la orden y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderOrder(_ context.Context, kind orders.Kind, order *entity.Order) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("pdf: orden nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(kind.Label+" "+order.Code, true).
		WithAuthor(nonEmpty(g.author, "inventario-ledger"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(kind, order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(counterpartyRow(kind, order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de líneas
	m.AddRows(tableHeaderRow(kind))
	for _, r := range tableDetailRows(order.Lines) {
		m.AddRows(r)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(order))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tipo de orden + estado (izq) y código + fecha (der).
func headerRow(kind orders.Kind, order *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(kind.Label, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+statusLabel(order.Status), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(order.Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 3,
			}),
			text.New("Fecha: "+order.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

// counterpartyRow: proveedor o cliente, bodega y moneda.
func counterpartyRow(kind orders.Kind, order *entity.Order) core.Row {
	title := "CLIENTE"
	if kind.Kind == entity.OrderKindPurchase {
		title = "PROVEEDOR"
	}
	detail := fmt.Sprintf("Bodega: %s   |   Moneda: %s",
		nonEmpty(order.WarehouseID, "—"),
		nonEmpty(order.Currency, "—"),
	)
	if order.CurrencyRate != nil {
		detail += "   |   Tasa: " + order.CurrencyRate.String()
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(order.Counterparty, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: la columna de cumplimiento se rotula según la familia.
func tableHeaderRow(kind orders.Kind) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	fulfilled := "Entregado"
	if kind.Kind == entity.OrderKindPurchase {
		fulfilled = "Recibido"
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Pedido", 2, align.Center),
		h(fulfilled, 2, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func tableDetailRows(lines []*entity.OrderLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(
				l.ProductID,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatQty(l.QuantityOrdered),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatQty(l.QuantityFulfilled),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(l.UnitPrice.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(l.Total.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(order *entity.Order) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(30).Add(
		col.New(3),
		col.New(3).Add(
			label("Subtotal:"),
			label("Descuento:"),
			label("Impuestos:"),
			label("TOTAL:"),
		),
		col.New(3).Add(
			value("$"+formatMoney(order.Subtotal.StringFixed(0))),
			value("$"+formatMoney(order.DiscountTotal.StringFixed(0))),
			value("$"+formatMoney(order.TaxTotal.StringFixed(0))),
			grand("$"+formatMoney(order.TotalAmount.StringFixed(0))),
		),
		col.New(3),
	)
}

// footerRow: QR con el código de la orden + nota libre.
func footerRow(order *entity.Order) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(order.Code, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Código de la orden: "+order.Code, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 4, Left: 3, Color: colorPrimary,
			}),
			text.New(order.Note, props.Text{
				Size: 8, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func statusLabel(s entity.OrderStatus) string {
	switch s {
	case entity.OrderStatusDraft:
		return "Borrador"
	case entity.OrderStatusConfirmed:
		return "Confirmada"
	case entity.OrderStatusSent:
		return "Enviada"
	case entity.OrderStatusReceived:
		return "Recibida"
	case entity.OrderStatusFulfilled:
		return "Despachada"
	case entity.OrderStatusDelivered:
		return "Entregada"
	case entity.OrderStatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// formatQty muestra enteros sin decimales y fracciones con hasta 4 decimales.
func formatQty(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.Round(4).String()
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
