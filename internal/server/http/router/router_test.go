package router

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/metrics"
	pkgAuth "github.com/polkiloo/retailpos/internal/pkg/auth"
	"github.com/polkiloo/retailpos/internal/server/http/handlers"
	"github.com/polkiloo/retailpos/internal/test/facadestub"
	"github.com/polkiloo/retailpos/internal/usecase"
)

func newEngine(facade facadestub.POSFacadeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return Setup(facade, logger, metrics.New(nil))
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(facadestub.POSFacadeStub{})

	body, _ := json.Marshal(map[string]string{"login": "user", "password": "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for register, got %d", resp.Code)
	}

	routes := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/api/products", http.StatusOK},
		{http.MethodGet, "/api/products/low-stock", http.StatusOK},
		{http.MethodGet, "/api/products/1", http.StatusOK},
		{http.MethodPost, "/api/products/1/archive", http.StatusNoContent},
		{http.MethodGet, "/api/orders", http.StatusOK},
		{http.MethodGet, "/api/orders/1", http.StatusOK},
		{http.MethodDelete, "/api/orders/1", http.StatusNoContent},
		{http.MethodPost, "/api/orders/1/submit", http.StatusOK},
		{http.MethodPost, "/api/orders/1/cancel", http.StatusOK},
		{http.MethodGet, "/api/orders/1/payments", http.StatusOK},
		{http.MethodGet, "/api/discounts", http.StatusOK},
		{http.MethodGet, "/api/discounts/1", http.StatusOK},
		{http.MethodPost, "/api/discounts/1/approve", http.StatusOK},
		{http.MethodPost, "/api/discounts/1/reject", http.StatusOK},
		{http.MethodPost, "/api/payments/1/confirm", http.StatusOK},
		{http.MethodGet, "/api/payments/1/receipt", http.StatusOK},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			req := httptest.NewRequest(r.method, r.path, nil)
			req.Header.Set("Authorization", "Bearer token")
			resp := httptest.NewRecorder()
			engine.ServeHTTP(resp, req)
			if resp.Code != r.status {
				t.Fatalf("expected %d, got %d", r.status, resp.Code)
			}
		})
	}
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	engine := newEngine(facadestub.POSFacadeStub{AuthFacadeStub: facadestub.AuthFacadeStub{ResolveErr: pkgAuth.ErrInvalidToken}})
	for _, path := range []string{"/api/orders", "/api/products", "/api/discounts"} {
		resp := httptest.NewRecorder()
		engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.Code)
		}
	}
}

func TestCreateOrderThroughRouterCarriesCorrelation(t *testing.T) {
	var correlation, key string
	facade := facadestub.POSFacadeStub{OrderFacadeStub: facadestub.OrderFacadeStub{
		CreateFn: func(ctx context.Context, actor model.Actor, in usecase.CreateOrderInput) (*model.Order, error) {
			correlation = usecase.CorrelationID(ctx)
			key = in.IdempotencyKey
			return facadestub.StubOrder(1, actor.UserID, model.OrderStatusPending), nil
		},
	}}
	engine := newEngine(facade)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"items":[{"product_id":1,"quantity":1}]}`))
	_ = gz.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("X-Request-ID", "trace-1")
	req.Header.Set(handlers.IdempotencyKeyHeader, "retry-1")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if correlation != "trace-1" || key != "retry-1" {
		t.Fatalf("unexpected correlation %q key %q", correlation, key)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	engine := newEngine(facadestub.POSFacadeStub{})

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "retailpos_http_request_duration_seconds") {
		t.Fatalf("expected metrics exposition, got %d", resp.Code)
	}
}

var _ handlers.POSFacade = facadestub.POSFacadeStub{}
