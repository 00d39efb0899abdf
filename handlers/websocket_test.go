package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/config"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

func newLiveRouter(t *testing.T) (*gin.Engine, *services.AuthService) {
	t.Helper()
	authService, err := services.NewAuthService(
		config.JWTConfig{Secret: "test_secret", ExpiryHours: 1},
		config.OperatorConfig{Email: "operator@portrail.local", Password: "swordfish"},
	)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	router := gin.New()
	router.GET("/api/ship-tracker/live", LiveVessels(disabledCache(), authService))
	return router, authService
}

func TestLiveVesselsRejectsMissingToken(t *testing.T) {
	router, _ := newLiveRouter(t)

	w := performRequest(router, http.MethodGet, "/api/ship-tracker/live", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestLiveVesselsRejectsBadToken(t *testing.T) {
	router, _ := newLiveRouter(t)

	w := performRequest(router, http.MethodGet, "/api/ship-tracker/live?token=not.a.token", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestLiveVesselsRequiresRedis(t *testing.T) {
	router, authService := newLiveRouter(t)

	token, err := authService.GenerateToken("operator@portrail.local", "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	w := performRequest(router, http.MethodGet, "/api/ship-tracker/live?token="+token, nil)
	requireStatus(t, w, http.StatusServiceUnavailable)
}
