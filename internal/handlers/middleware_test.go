package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func originRouter(origins ...string) *gin.Engine {
	r := gin.New()
	r.Use(OriginFilter(origins))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestOriginFilter(t *testing.T) {
	r := originRouter("http://localhost:3000")

	tests := []struct {
		name   string
		method string
		origin string
		status int
		cors   string
	}{
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"allowed", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"denied", http.MethodGet, "http://evil.example", http.StatusForbidden, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.cors, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestOriginFilterWildcard(t *testing.T) {
	r := originRouter("*")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://anything.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://anything.example", w.Header().Get("Access-Control-Allow-Origin"))
}
