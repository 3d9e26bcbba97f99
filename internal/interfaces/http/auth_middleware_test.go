package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// buildTestApp app mínima con AuthMiddleware y RequireRole delante de un handler que responde el rol.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"role": apphttp.GetRole(c)})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name     string
		allowed  []string
		header   string
		wantCode int
		wantBody string
	}{
		{"admin en ruta de admin", []string{apphttp.RoleAdmin}, tokenForRole(t, apphttp.RoleAdmin), http.StatusOK, `"role":"admin"`},
		{"bodeguero en ruta de escritura", []string{apphttp.RoleAdmin, apphttp.RoleBodeguero}, tokenForRole(t, apphttp.RoleBodeguero), http.StatusOK, `"role":"bodeguero"`},
		{"vendedor en ruta de escritura", []string{apphttp.RoleAdmin, apphttp.RoleBodeguero}, tokenForRole(t, "vendedor"), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{apphttp.RoleAdmin}, "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{apphttp.RoleAdmin}, "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"sin prefijo Bearer", []string{apphttp.RoleAdmin}, noRole, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secreto", []string{apphttp.RoleAdmin}, "Bearer " + otherSecret, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", []string{apphttp.RoleAdmin}, "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(tt.allowed...), tt.header)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			raw, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(raw), tt.wantBody)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos de las rutas de la API
// ──────────────────────────────────────────────────────────────────────────────

// Las lecturas quedan abiertas a cualquier rol autenticado; los disparadores de cálculo, solo a
// admin y bodeguero.
func TestRouter_PermisosPorRuta(t *testing.T) {
	const (
		rangeBody = `{"start_date":"2024-03-01","end_date":"2024-03-02"}`
		calcBody  = `{"date":"2024-03-02","granularity":"daily"}`
	)
	tests := []struct {
		method, path, role, body string
		want                     int
	}{
		{http.MethodPost, "/api/timeline/generate", "vendedor", rangeBody, http.StatusForbidden},
		{http.MethodPost, "/api/timeline/generate", apphttp.RoleAdmin, rangeBody, http.StatusOK},
		{http.MethodPost, "/api/analysis/turnover/calculate", "vendedor", calcBody, http.StatusForbidden},
		{http.MethodPost, "/api/analysis/turnover/calculate", apphttp.RoleBodeguero, calcBody, http.StatusOK},
		{http.MethodPost, "/api/analysis/profit/calculate", "vendedor", calcBody, http.StatusForbidden},
		{http.MethodPost, "/api/analysis/profit/calculate", apphttp.RoleBodeguero, calcBody, http.StatusOK},
		{http.MethodGet, "/api/analysis/turnover", "vendedor", "", http.StatusOK},
		{http.MethodGet, "/api/analysis/profit?min_profit_rate=0", "vendedor", "", http.StatusOK},
		{http.MethodGet, "/api/transit", "vendedor", "", http.StatusOK},
		{http.MethodGet, "/api/timeline?product_id=P&start_date=2024-03-01&end_date=2024-03-02", "vendedor", "", http.StatusOK},
		{http.MethodGet, "/api/analysis/profit/summary?granularity=daily&start_date=2024-03-01&end_date=2024-03-02", "", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/analysis/profit/calculate", "", calcBody, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		role := tt.role
		if role == "" {
			role = "anónimo"
		}
		t.Run(tt.method+" "+tt.path+" "+role, func(t *testing.T) {
			api := newAPI(t)
			resp, raw := api.call(t, tt.method, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode, string(raw))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: claims en locals
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}
