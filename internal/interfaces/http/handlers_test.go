package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/rates"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type stubRenderer struct{}

func (stubRenderer) RenderOrder(_ context.Context, _ orders.Kind, o *entity.Order) ([]byte, error) {
	return []byte("%PDF-1.3 " + o.Code), nil
}

func newServer(t *testing.T, withDocs bool) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	l := ledger.New(store, store.Stock(), logger.Nop())
	opts := orders.Options{BaseCurrency: "COP"}

	var docs *orders.DocumentUseCase
	if withDocs {
		docs = orders.NewDocumentUseCase(stubRenderer{})
	}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    l,
		Purchase:  orders.NewWorkflow(orders.Purchase, store, l, orders.SimplePricing{}, opts),
		Sales:     orders.NewWorkflow(orders.Sales, store, l, orders.SimplePricing{}, opts),
		SalesB2B:  orders.NewWorkflow(orders.SalesB2B, store, l, orders.NewB2BPricing(store.Rates(), "COP", logger.Nop()), opts),
		Documents: docs,
		Rates:     rates.New(store.Rates(), nil, nil, "COP", logger.Nop()),
		JWTSecret: testJWTSecret,
		AppName:   "inventario-ledger-test",
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

func createOrder(t *testing.T, app *fiber.App, family, role string, lines ...map[string]interface{}) dto.OrderResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/"+family, role, map[string]interface{}{
		"counterparty": "ACME",
		"warehouse_id": "w-1",
		"lines":        lines,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var o dto.OrderResponse
	decode(t, resp, &o)
	return o
}

func confirm(t *testing.T, app *fiber.App, family, role, id string) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/"+family+"/"+id+"/confirm", role, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func orderLine(product string, qty, price int) map[string]interface{} {
	return map[string]interface{}{"product_id": product, "quantity": qty, "unit_price": price}
}

// ──────────────────────────────────────────────────────────────────────────────
// Salud y autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_Publico(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStock_SinToken_Retorna401(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodGet, "/api/stock/levels", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStock_RolSinPermiso_Retorna403(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/stock/receive", "vendedor",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_EntradaSalidaYNivel(t *testing.T) {
	app := newServer(t, false)

	resp := call(t, app, http.MethodPost, "/api/stock/receive", "bodeguero",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 10, "reference": "ING-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mv dto.StockMovementResponse
	decode(t, resp, &mv)
	require.Len(t, mv.Moves, 1)
	assert.Equal(t, "inbound", mv.Moves[0].Kind)
	assert.Equal(t, testActorID, mv.Moves[0].CreatedBy)
	assert.Equal(t, "10", mv.Levels[0].Quantity.String())

	resp = call(t, app, http.MethodPost, "/api/stock/issue", "bodeguero",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 11})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = call(t, app, http.MethodGet, "/api/stock/levels/p-1/w-1", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lv dto.StockLevelResponse
	decode(t, resp, &lv)
	assert.Equal(t, "10", lv.Quantity.String())
}

func TestStock_NivelInexistente_NoRecord(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodGet, "/api/stock/levels/p-x/w-x", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NO_RECORD", errorCode(t, resp))
}

func TestStock_ValidacionDelBody(t *testing.T) {
	app := newServer(t, false)

	resp := call(t, app, http.MethodPost, "/api/stock/receive", "admin",
		map[string]interface{}{"warehouse_id": "w-1", "quantity": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "VALIDATION", e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "product_id", e.Details[0].Field)

	// cantidad no positiva: la rechaza el dominio
	resp = call(t, app, http.MethodPost, "/api/stock/receive", "admin",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestStock_TrasladoYAuditoria(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/stock/receive", "admin",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/stock/transfer", "bodeguero", map[string]interface{}{
		"product_id": "p-1", "source_warehouse_id": "w-1", "target_warehouse_id": "w-2", "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mv dto.StockMovementResponse
	decode(t, resp, &mv)
	require.Len(t, mv.Moves, 2)
	assert.Equal(t, mv.Moves[0].GroupID, mv.Moves[1].GroupID)

	resp = call(t, app, http.MethodGet, "/api/stock/moves?product_id=p-1", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moves dto.StockMoveListResponse
	decode(t, resp, &moves)
	assert.Len(t, moves.Items, 3)

	resp = call(t, app, http.MethodGet, "/api/stock/audit", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var audit dto.AuditResponse
	decode(t, resp, &audit)
	assert.True(t, audit.Consistent)
	assert.Empty(t, audit.Drifts)
}

func TestStock_FechaInvalidaEnHistorial(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodGet, "/api/stock/moves?from=ayer", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_RecepcionCompletaYSobreRecepcion(t *testing.T) {
	app := newServer(t, false)
	o := createOrder(t, app, "purchase-orders", "comprador", orderLine("p-1", 10, 1000))
	assert.Equal(t, "draft", o.Status)
	assert.Regexp(t, `^PO-\d{8}-[0-9A-F]{4}$`, o.Code)
	confirm(t, app, "purchase-orders", "comprador", o.ID)

	lineID := o.Lines[0].ID
	receive := func(qty int) *http.Response {
		return call(t, app, http.MethodPost, "/api/purchase-orders/"+o.ID+"/receive", "bodeguero",
			map[string]interface{}{"lines": []map[string]interface{}{{"line_id": lineID, "quantity": qty}}})
	}

	resp := receive(6)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dto.FulfillOrderResponse
	decode(t, resp, &res)
	assert.Equal(t, "confirmed", res.Order.Status)
	assert.Equal(t, "6", res.Order.Lines[0].QuantityFulfilled.String())
	require.Len(t, res.Moves, 1)
	assert.Equal(t, o.Code, res.Moves[0].Reference)

	resp = receive(4)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &res)
	assert.Equal(t, "received", res.Order.Status)

	resp = receive(1)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OVER_FULFILLMENT", errorCode(t, resp))

	resp = call(t, app, http.MethodGet, "/api/stock/levels/p-1/w-1", "admin", nil)
	var lv dto.StockLevelResponse
	decode(t, resp, &lv)
	assert.Equal(t, "10", lv.Quantity.String())
}

func TestSales_EntregaSinStock_409(t *testing.T) {
	app := newServer(t, false)
	o := createOrder(t, app, "sales-orders", "vendedor", orderLine("p-1", 2, 500))
	confirm(t, app, "sales-orders", "vendedor", o.ID)

	resp := call(t, app, http.MethodPost, "/api/sales-orders/"+o.ID+"/deliver", "bodeguero",
		map[string]interface{}{"lines": []map[string]interface{}{{"line_id": o.Lines[0].ID, "quantity": 2}}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = call(t, app, http.MethodGet, "/api/sales-orders/"+o.ID, "vendedor", nil)
	var got dto.OrderResponse
	decode(t, resp, &got)
	assert.Equal(t, "confirmed", got.Status)
	assert.True(t, got.Lines[0].QuantityFulfilled.IsZero())
}

func TestOrders_ConfirmarDosVeces_409(t *testing.T) {
	app := newServer(t, false)
	o := createOrder(t, app, "sales-orders", "admin", orderLine("p-1", 1, 1))
	confirm(t, app, "sales-orders", "admin", o.ID)

	resp := call(t, app, http.MethodPost, "/api/sales-orders/"+o.ID+"/confirm", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", errorCode(t, resp))
}

func TestOrders_NoEncontrada_404(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodGet, "/api/purchase-orders/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestOrders_SinLineas_400(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/purchase-orders", "admin",
		map[string]interface{}{"counterparty": "ACME", "lines": []interface{}{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	require.NotEmpty(t, e.Details)
	assert.Equal(t, "lines", e.Details[0].Field)
}

func TestOrders_LineasEnCeroSeOmiten(t *testing.T) {
	app := newServer(t, false)
	o := createOrder(t, app, "purchase-orders", "comprador", orderLine("p-1", 5, 2), orderLine("p-2", 0, 9))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "p-1", o.Lines[0].ProductID)

	resp := call(t, app, http.MethodPost, "/api/purchase-orders", "comprador", map[string]interface{}{
		"counterparty": "ACME",
		"lines":        []map[string]interface{}{orderLine("p-2", 0, 9)},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestOrders_ListaPaginada(t *testing.T) {
	app := newServer(t, false)
	for i := 0; i < 3; i++ {
		createOrder(t, app, "purchase-orders", "admin", orderLine("p-1", 1, 1))
	}
	resp := call(t, app, http.MethodGet, "/api/purchase-orders?limit=2", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.OrderListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 3, list.Page.Total)
	assert.Equal(t, 2, list.Page.Limit)
}

func TestB2B_UpdateTrasEntregaParcial_409(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/stock/receive", "admin",
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 10})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	o := createOrder(t, app, "b2b-sales-orders", "vendedor", orderLine("p-1", 5, 100))
	confirm(t, app, "b2b-sales-orders", "vendedor", o.ID)

	resp = call(t, app, http.MethodPost, "/api/b2b-sales-orders/"+o.ID+"/deliver", "bodeguero",
		map[string]interface{}{"lines": []map[string]interface{}{{"line_id": o.Lines[0].ID, "quantity": 2}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPut, "/api/b2b-sales-orders/"+o.ID, "vendedor", map[string]interface{}{
		"counterparty": "ACME",
		"lines":        []map[string]interface{}{orderLine("p-1", 8, 100)},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FULFILLMENT_STARTED", errorCode(t, resp))
}

func TestOrders_DocumentoPDF(t *testing.T) {
	app := newServer(t, true)
	o := createOrder(t, app, "purchase-orders", "admin", orderLine("p-1", 1, 1))

	resp := call(t, app, http.MethodGet, "/api/purchase-orders/"+o.ID+"/pdf", "admin", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), o.Code)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestOrders_DocumentoSinGenerador_503(t *testing.T) {
	app := newServer(t, false)
	o := createOrder(t, app, "purchase-orders", "admin", orderLine("p-1", 1, 1))

	resp := call(t, app, http.MethodGet, "/api/purchase-orders/"+o.ID+"/pdf", "admin", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tasas de cambio
// ──────────────────────────────────────────────────────────────────────────────

func TestRates_RegistroYConsulta(t *testing.T) {
	app := newServer(t, false)

	resp := call(t, app, http.MethodGet, "/api/currency-rates/USD", "vendedor", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))

	resp = call(t, app, http.MethodPost, "/api/currency-rates", "admin",
		map[string]interface{}{"currency": "usd", "rate": "4000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.CurrencyRateResponse
	decode(t, resp, &created)
	assert.Equal(t, "USD", created.Currency)

	resp = call(t, app, http.MethodGet, "/api/currency-rates/usd", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.CurrencyRateResponse
	decode(t, resp, &got)
	assert.Equal(t, "4000", got.Rate.String())
}

func TestRates_Validacion(t *testing.T) {
	app := newServer(t, false)

	resp := call(t, app, http.MethodPost, "/api/currency-rates", "admin",
		map[string]interface{}{"currency": "USD", "rate": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	resp = call(t, app, http.MethodPost, "/api/currency-rates", "admin",
		map[string]interface{}{"currency": "COP", "rate": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRates_TasaRegistradaLlegaALaOrdenB2B(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/currency-rates", "admin",
		map[string]interface{}{"currency": "USD", "rate": "4100.5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	o := createOrder(t, app, "b2b-sales-orders", "vendedor", orderLine("p-1", 1, 10))
	require.NotNil(t, o.CurrencyRate)
	assert.Equal(t, "1", o.CurrencyRate.String(), "moneda base")

	resp = call(t, app, http.MethodPut, "/api/b2b-sales-orders/"+o.ID, "vendedor", map[string]interface{}{
		"counterparty": "ACME",
		"currency":     "USD",
		"lines":        []map[string]interface{}{orderLine("p-1", 2, 10)},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var up dto.OrderResponse
	decode(t, resp, &up)
	assert.Equal(t, "USD", up.Currency)
	require.NotNil(t, up.CurrencyRate)
	assert.Equal(t, "4100.5", up.CurrencyRate.String())
}
