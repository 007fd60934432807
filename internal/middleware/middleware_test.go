package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(allowOrigin string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(allowOrigin), RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	r := newTestEngine("*")

	for _, path := range []string{"/ping", "/unknown"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code, path)
		assert.Empty(t, rr.Body.String(), path)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "GET, OPTIONS")
	}
}

func TestCORS_HeadersOnRegularResponses(t *testing.T) {
	r := newTestEngine("https://shop.example.com")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestRequestID_EchoAndGeneration(t *testing.T) {
	r := newTestEngine("*")

	reqWith := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqWith.Header.Set(HeaderRequestID, "abc")
	rrWith := httptest.NewRecorder()
	r.ServeHTTP(rrWith, reqWith)
	assert.Equal(t, "abc", rrWith.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc", rrWith.Body.String())

	reqGen := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rrGen := httptest.NewRecorder()
	r.ServeHTTP(rrGen, reqGen)
	assert.NotEmpty(t, rrGen.Header().Get(HeaderRequestID))
	assert.Equal(t, rrGen.Header().Get(HeaderRequestID), rrGen.Body.String())
}
