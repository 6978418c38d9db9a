package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	pkgAuth "github.com/polkiloo/retailpos/internal/pkg/auth"
	"github.com/polkiloo/retailpos/internal/server/http/dto"
	"github.com/polkiloo/retailpos/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/retailpos/internal/test"
	"github.com/polkiloo/retailpos/internal/test/facadestub"
)

var (
	salesRep   = model.Actor{UserID: 1, Role: model.RoleSalesRep}
	accountant = model.Actor{UserID: 4, Role: model.RoleAccountant}
	admin      = model.Actor{UserID: 3, Role: model.RoleAdmin}
)

func init() {
	gin.SetMode(gin.TestMode)
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func performRequest(t *testing.T, method, pattern, target string, handler gin.HandlerFunc, actor *model.Actor, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorContextKey, *actor)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	return out
}

func TestCurrentActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentActor(c); got.UserID != 0 {
		t.Fatalf("expected zero actor when not set, got %+v", got)
	}

	c.Set(middleware.ActorContextKey, admin)
	if got := CurrentActor(c); got != admin {
		t.Fatalf("expected admin, got %+v", got)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&domainErrors.StockError{ProductID: 1, Requested: 3, Available: 1}, http.StatusConflict},
		{domainErrors.ErrInvalidTransition, http.StatusConflict},
		{domainErrors.ErrInvalidOrderState, http.StatusConflict},
		{domainErrors.ErrPaymentPending, http.StatusConflict},
		{domainErrors.ErrAlreadyConfirmed, http.StatusConflict},
		{domainErrors.ErrAlreadyExists, http.StatusConflict},
		{domainErrors.ErrIdempotencyInFlight, http.StatusConflict},
		{domainErrors.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{domainErrors.ErrInvalidInput, http.StatusUnprocessableEntity},
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrForbidden, http.StatusForbidden},
		{domainErrors.ErrInvalidCredentials, http.StatusBadRequest},
		{pkgAuth.ErrInvalidToken, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			writeError(c, errors.Join(errors.New("context"), tt.err))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusInternalServerError && len(c.Errors) != 1 {
				t.Fatal("expected server error to be attached to context")
			}
		})
	}
}

func TestWriteErrorStockDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, &domainErrors.StockError{ProductID: 9, Requested: 5, Available: 2})

	body := decode[dto.ErrorResponse](t, rec)
	if body.Stock == nil || body.Stock.ProductID != 9 || body.Stock.Requested != 5 || body.Stock.Available != 2 {
		t.Fatalf("unexpected stock detail %+v", body.Stock)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/register", "/register", NewAuthHandler(facadestub.AuthFacadeStub{}).Register, nil, body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") == "" {
		t.Fatalf("expected auth header to be set")
	}
}

func TestAuthHandlerRegisterSetsCookie(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	body, _ := json.Marshal(dto.AuthRequest{Login: login, Password: password})
	handler := NewAuthHandler(facadestub.AuthFacadeStub{RegisterFn: func(ctx context.Context, gotLogin, gotPassword string) (string, error) {
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return "session-token", nil
	}})
	resp := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	found := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == "retailpos_token" && cookie.Value == "session-token" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected auth cookie named retailpos_token")
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade facadestub.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid credentials", body: []byte(`{"login":"","password":""}`), facade: facadestub.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusBadRequest},
		{name: "already exists", body: []byte(`{"login":"a","password":"b"}`), facade: facadestub.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: facadestub.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/register", "/register", NewAuthHandler(tt.facade).Register, nil, tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade facadestub.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "ok", body: []byte(`{"login":"a","password":"b"}`), status: http.StatusOK},
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid", body: []byte(`{"login":"a","password":"b"}`), facade: facadestub.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusUnauthorized},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: facadestub.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(tt.facade).Login, nil, tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerCreateUser(t *testing.T) {
	var gotRole model.Role
	var gotActor model.Actor
	handler := NewAuthHandler(facadestub.AuthFacadeStub{CreateUserFn: func(_ context.Context, actor model.Actor, login, _ string, role model.Role) (*model.User, error) {
		gotActor, gotRole = actor, role
		return &model.User{ID: 8, Login: login, Role: role}, nil
	}})
	body := []byte(`{"login":"acct","password":"pw","role":"accountant"}`)
	resp := performRequest(t, http.MethodPost, "/users", "/users", handler.CreateUser, &admin, body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if gotActor != admin || gotRole != model.RoleAccountant {
		t.Fatalf("unexpected call actor=%+v role=%s", gotActor, gotRole)
	}
	user := decode[dto.UserResponse](t, resp)
	if user.ID != 8 || user.Role != "accountant" {
		t.Fatalf("unexpected response %+v", user)
	}

	handler = NewAuthHandler(facadestub.AuthFacadeStub{CreateUserFn: func(context.Context, model.Actor, string, string, model.Role) (*model.User, error) {
		return nil, domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodPost, "/users", "/users", handler.CreateUser, &salesRep, body, jsonHeaders)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestHealth(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", Health(facadestub.POSFacadeStub{}), nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/healthz", "/healthz", Health(facadestub.POSFacadeStub{ReadyErr: errors.New("db down")}), nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
