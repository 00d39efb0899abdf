package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/config"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	authService, err := services.NewAuthService(
		config.JWTConfig{Secret: "test_secret", ExpiryHours: 1},
		config.OperatorConfig{Email: "operator@portrail.local", Password: "swordfish"},
	)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	router := gin.New()
	router.POST("/api/auth/login", NewAuthHandler(authService).Login)
	return router
}

func TestLogin(t *testing.T) {
	router := newAuthRouter(t)

	w := performRequest(router, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "operator@portrail.local", "password": "swordfish"}`))
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["token"] == nil || body["token"] == "" {
		t.Error("token missing")
	}
	if body["role"] != "operator" {
		t.Errorf("role = %v", body["role"])
	}
}

func TestLoginRejected(t *testing.T) {
	router := newAuthRouter(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email": "operator@portrail.local", "password": "trustno1"}`, http.StatusUnauthorized},
		{"wrong email", `{"email": "intruder@portrail.local", "password": "swordfish"}`, http.StatusUnauthorized},
		{"not an email", `{"email": "operator", "password": "swordfish"}`, http.StatusBadRequest},
		{"missing password", `{"email": "operator@portrail.local"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d\n%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
