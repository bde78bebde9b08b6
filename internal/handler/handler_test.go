package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davranaff/coffee/internal/config"
	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/lib/metrics"
	"github.com/davranaff/coffee/internal/middleware"
	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/davranaff/coffee/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config:  &config.Config{Primary: config.Primary{Env: "test"}},
		Logger:  &logger,
		Latency: metrics.NewLatencyRecorder(),
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

type greetRequest struct {
	Name  string `param:"name" validate:"required,max=10"`
	Shout bool   `query:"shout"`
	Note  string `json:"note" validate:"omitempty,min=2"`
}

func (r *greetRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type greeting struct {
	Text string `json:"text"`
	Note string `json:"note,omitempty"`
}

func greet(c echo.Context, req *greetRequest) (*greeting, error) {
	if req.Name == "teapot" {
		return nil, errs.NewBadRequestError("No teapots", false, nil, nil, nil)
	}
	text := "hello " + req.Name
	if req.Shout {
		text = strings.ToUpper(text)
	}
	return &greeting{Text: text, Note: req.Note}, nil
}

func TestHandle_BindsPathAndBody(t *testing.T) {
	e := newEcho(testServer())
	e.POST("/greet/:name", Handle(greet, http.StatusCreated))

	req := httptest.NewRequest(http.MethodPost, "/greet/ada", strings.NewReader(`{"note":"hi there"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body greeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, greeting{Text: "hello ada", Note: "hi there"}, body)
}

func TestHandle_ValidationFailure(t *testing.T) {
	e := newEcho(testServer())
	e.POST("/greet/:name", Handle(greet, http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/greet/bartholomew-the-long", strings.NewReader(`{"note":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 2)
}

func TestHandle_MalformedBody(t *testing.T) {
	e := newEcho(testServer())
	e.POST("/greet/:name", Handle(greet, http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/greet/ada", strings.NewReader(`{"note":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_HandlerError(t *testing.T) {
	e := newEcho(testServer())
	e.GET("/greet/:name", Handle(greet, http.StatusOK))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/teapot", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No teapots")
}

func TestHandle_FreshRequestPerCall(t *testing.T) {
	e := newEcho(testServer())
	e.GET("/greet/:name", Handle(greet, http.StatusOK))

	var wg sync.WaitGroup
	names := []string{"ada", "alan", "grace", "linus", "ken"}
	results := make([]string, len(names))
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/"+name, nil))
			results[i] = rec.Body.String()
		}()
	}
	wg.Wait()

	for i, name := range names {
		assert.Contains(t, results[i], "hello "+name)
	}

	// a query flag set on one call must not leak into the next
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/ada?shout=true", nil))
	assert.Contains(t, rec.Body.String(), "HELLO ADA")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/ada", nil))
	assert.Contains(t, rec.Body.String(), "hello ada")
}

func TestSystemHandler(t *testing.T) {
	s := testServer()
	s.Latency.Record("GET /api/v1/products", 12*time.Millisecond)
	h := NewSystemHandler(s)

	e := newEcho(s)
	e.GET("/", Handle(h.Root, http.StatusOK))
	e.GET("/status/latency", Handle(h.Latency, http.StatusOK))
	e.GET("/emails/preview/:template", HandleHTML(h.EmailPreview, http.StatusOK))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Welcome to Coffee Shop!","docs":"/docs"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/latency", nil))
	var latencies []metrics.RouteLatency
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latencies))
	require.Len(t, latencies, 1)
	assert.Equal(t, "GET /api/v1/products", latencies[0].Route)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/preview/verification", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "<html")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/preview/newsletter", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Me(t *testing.T) {
	s := testServer()
	h := NewUserHandler(s, nil)

	user := &model.User{Email: "ada@example.com", PasswordHash: "secret-hash", Role: model.RoleUser}
	user.ID = 3

	e := newEcho(s)
	e.GET("/me", Handle(h.Me, http.StatusOK), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserKey, user)
			return next(c)
		}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestBuildOpenAPI(t *testing.T) {
	e := echo.New()
	noop := func(c echo.Context) error { return nil }
	e.GET("/", noop)
	e.GET("/api/v1/orders/:id", noop)
	e.PUT("/api/v1/orders/:id/status", noop)
	e.GET("/api/v1/info/static/:key", noop)
	e.GET("/static/*", noop)

	doc := BuildOpenAPI(e.Routes(), []string{"/api/v1/orders"})

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.NotContains(t, doc.Paths, "/static/*")

	get := doc.Paths["/api/v1/orders/{id}"]["get"]
	assert.Equal(t, []string{"orders"}, get.Tags)
	assert.Equal(t, "get_api_v1_orders_id", get.OperationID)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.Equal(t, "integer", get.Parameters[0].Schema["type"])
	assert.NotEmpty(t, get.Security)

	assert.Contains(t, doc.Paths["/api/v1/orders/{id}/status"], "put")

	static := doc.Paths["/api/v1/info/static/{key}"]["get"]
	assert.Equal(t, "string", static.Parameters[0].Schema["type"])
	assert.Empty(t, static.Security)

	assert.Equal(t, []string{"system"}, doc.Paths["/"]["get"].Tags)
}

func TestOpenAPIHandler_ServesUI(t *testing.T) {
	h := NewOpenAPIHandler(testServer())

	e := echo.New()
	e.GET("/docs", h.ServeOpenAPIUI)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/openapi.json")
}

func TestCloseReason(t *testing.T) {
	assert.Equal(t, "Not enough permissions", closeReason(errs.NewForbiddenError("Not enough permissions", false)))
	assert.Equal(t, "Access denied", closeReason(errors.New("pool exhausted")))
	assert.Equal(t, "Access denied", closeReason(errs.NewForbiddenError(strings.Repeat("x", 200), false)))
}
