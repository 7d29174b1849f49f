package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testActorID   = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT del actor de prueba con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testActorID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// rawCall petición contra el router completo con un header Authorization arbitrario.
func rawCall(t *testing.T, app *fiber.App, method, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Matriz de permisos por ruta
// ──────────────────────────────────────────────────────────────────────────────

// Un rol permitido pasa RequireRole aunque el handler luego rechace el body o no
// encuentre la orden; sólo 401 y 403 indican que el middleware lo detuvo.
func TestRouter_PermisosPorRol(t *testing.T) {
	app := newServer(t, false)

	cases := []struct {
		name    string
		method  string
		path    string
		role    string
		allowed bool
	}{
		// libro de inventario
		{"bodeguero registra entradas", http.MethodPost, "/api/stock/receive", apphttp.RoleBodeguero, true},
		{"comprador no registra entradas", http.MethodPost, "/api/stock/receive", apphttp.RoleComprador, false},
		{"vendedor no registra salidas", http.MethodPost, "/api/stock/issue", apphttp.RoleVendedor, false},
		{"bodeguero traslada", http.MethodPost, "/api/stock/transfer", apphttp.RoleBodeguero, true},
		{"bodeguero no ajusta", http.MethodPost, "/api/stock/adjust", apphttp.RoleBodeguero, false},
		{"admin ajusta", http.MethodPost, "/api/stock/adjust", apphttp.RoleAdmin, true},
		{"bodeguero no audita", http.MethodGet, "/api/stock/audit", apphttp.RoleBodeguero, false},
		{"vendedor no audita", http.MethodGet, "/api/stock/audit", apphttp.RoleVendedor, false},
		{"admin audita", http.MethodGet, "/api/stock/audit", apphttp.RoleAdmin, true},
		{"cualquiera consulta niveles", http.MethodGet, "/api/stock/levels", apphttp.RoleComprador, true},
		{"cualquiera consulta historial", http.MethodGet, "/api/stock/moves", apphttp.RoleVendedor, true},

		// compras
		{"comprador crea compra", http.MethodPost, "/api/purchase-orders", apphttp.RoleComprador, true},
		{"vendedor no crea compra", http.MethodPost, "/api/purchase-orders", apphttp.RoleVendedor, false},
		{"bodeguero no confirma compra", http.MethodPost, "/api/purchase-orders/x/confirm", apphttp.RoleBodeguero, false},
		{"bodeguero recibe compra", http.MethodPost, "/api/purchase-orders/x/receive", apphttp.RoleBodeguero, true},
		{"comprador recibe compra", http.MethodPost, "/api/purchase-orders/x/receive", apphttp.RoleComprador, true},
		{"vendedor no recibe compra", http.MethodPost, "/api/purchase-orders/x/receive", apphttp.RoleVendedor, false},

		// ventas
		{"vendedor crea venta", http.MethodPost, "/api/sales-orders", apphttp.RoleVendedor, true},
		{"comprador no crea venta", http.MethodPost, "/api/sales-orders", apphttp.RoleComprador, false},
		{"comprador no cancela venta", http.MethodPost, "/api/sales-orders/x/cancel", apphttp.RoleComprador, false},
		{"bodeguero entrega venta", http.MethodPost, "/api/sales-orders/x/deliver", apphttp.RoleBodeguero, true},
		{"comprador no entrega venta", http.MethodPost, "/api/sales-orders/x/deliver", apphttp.RoleComprador, false},

		// ventas B2B
		{"vendedor edita B2B", http.MethodPut, "/api/b2b-sales-orders/x", apphttp.RoleVendedor, true},
		{"bodeguero no edita B2B", http.MethodPut, "/api/b2b-sales-orders/x", apphttp.RoleBodeguero, false},
		{"bodeguero entrega B2B", http.MethodPost, "/api/b2b-sales-orders/x/deliver", apphttp.RoleBodeguero, true},

		// tasas de cambio
		{"admin registra tasa", http.MethodPost, "/api/currency-rates", apphttp.RoleAdmin, true},
		{"vendedor no registra tasa", http.MethodPost, "/api/currency-rates", apphttp.RoleVendedor, false},
		{"bodeguero consulta tasa", http.MethodGet, "/api/currency-rates/USD", apphttp.RoleBodeguero, true},

		// rol desconocido
		{"rol ajeno no escribe", http.MethodPost, "/api/stock/receive", "auditor", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := rawCall(t, app, tc.method, tc.path, tokenForRole(t, tc.role))
			defer resp.Body.Close()
			if tc.allowed {
				assert.NotEqual(t, http.StatusForbidden, resp.StatusCode)
				assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
				return
			}
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
			var e dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Equal(t, "FORBIDDEN", e.Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tokens incompletos o inválidos contra rutas del servicio
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_TokenSinRol_Retorna401EnEscrituras(t *testing.T) {
	app := newServer(t, false)
	tok, err := pkgjwt.Generate(testJWTSecret, testActorID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := rawCall(t, app, http.MethodPost, "/api/purchase-orders/x/receive", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, resp))

	// las lecturas sólo exigen un token válido
	resp = rawCall(t, app, http.MethodGet, "/api/stock/levels", "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_TokensRechazados(t *testing.T) {
	app := newServer(t, false)

	noSubject, err := pkgjwt.Generate(testJWTSecret, "", apphttp.RoleBodeguero, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testActorID, apphttp.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret-completamente-distinto", testActorID, apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"sin actor", "Bearer " + noSubject, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firma ajena", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := rawCall(t, app, http.MethodPost, "/api/stock/receive", tc.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// El actor del token queda registrado en el libro
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ActorEnMovimientos(t *testing.T) {
	app := newServer(t, false)
	resp := call(t, app, http.MethodPost, "/api/stock/receive", apphttp.RoleBodeguero,
		map[string]interface{}{"product_id": "p-1", "warehouse_id": "w-1", "quantity": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/stock/moves?product_id=p-1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.StockMoveListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, testActorID, list.Items[0].CreatedBy)
}

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"actor_id": apphttp.GetActorID(c),
			"role":     apphttp.GetRole(c),
		})
	})

	resp := rawCall(t, app, http.MethodGet, "/me", tokenForRole(t, apphttp.RoleComprador))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testActorID, body["actor_id"])
	assert.Equal(t, apphttp.RoleComprador, body["role"])
}

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testActorID, apphttp.RoleBodeguero, testIssuer, testExpMin)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testActorID, claims.ActorID())
	assert.Equal(t, apphttp.RoleBodeguero, claims.Role)
}
