package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/pkg/response"
)

// MockAuthService delegates to function fields
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, req *dto.RegisterRequest) error
	LoginFunc         func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.Claims, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, domain.ErrInvalidToken
}

func setupAuthRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	return router
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp response.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	return resp.Error.Code
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockFunc       func(ctx context.Context, req *dto.RegisterRequest) error
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful registration",
			body: `{"username":"alice","password":"secret"}`,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) error {
				return nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "duplicate username",
			body: `{"username":"alice","password":"secret"}`,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) error {
				return domain.ErrUserAlreadyExists
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "USER_EXISTS",
		},
		{
			name:           "missing password",
			body:           `{"username":"alice"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthRouter(&MockAuthService{RegisterFunc: tt.mockFunc})

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" && errorCode(t, w.Body.Bytes()) != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, errorCode(t, w.Body.Bytes()))
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockFunc       func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful login",
			body: `{"username":"alice","password":"secret"}`,
			mockFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
				return &dto.LoginResponse{Token: "signed-token", Role: "user", Username: "alice"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong credentials",
			body: `{"username":"alice","password":"wrong"}`,
			mockFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
				return nil, domain.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
		{
			name:           "missing fields",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthRouter(&MockAuthService{LoginFunc: tt.mockFunc})

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" && errorCode(t, w.Body.Bytes()) != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, errorCode(t, w.Body.Bytes()))
			}
		})
	}
}

func TestAuthHandler_RegisterResponseShape(t *testing.T) {
	router := setupAuthRouter(&MockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"alice","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["message"] != "Success" {
		t.Errorf("expected message Success, got %v", resp)
	}
}

func TestAuthHandler_InternalErrorHidesDetail(t *testing.T) {
	router := setupAuthRouter(&MockAuthService{
		LoginFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
			return nil, errors.New("dial tcp db-internal-1:5432: password=hunter2")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"alice","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "INTERNAL_ERROR" {
		t.Errorf("expected code INTERNAL_ERROR, got %s", code)
	}
	body := w.Body.String()
	if strings.Contains(body, "hunter2") || strings.Contains(body, "db-internal-1") {
		t.Errorf("error detail leaked to client: %s", body)
	}
}

func TestAuthHandler_LoginResponseShape(t *testing.T) {
	router := setupAuthRouter(&MockAuthService{
		LoginFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
			return &dto.LoginResponse{Token: "signed-token", Role: "admin", Username: "admin"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"admin","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["token"] != "signed-token" || resp["role"] != "admin" || resp["username"] != "admin" {
		t.Errorf("unexpected body: %v", resp)
	}
}
