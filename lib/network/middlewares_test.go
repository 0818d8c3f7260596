package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter"

	"boscoin.io/feedback/lib/common"
)

func TestRecoverMiddleware(t *testing.T) {
	panicMsg := "Don't panic,just use go"

	router := mux.NewRouter()
	router.Use(RecoverMiddleware(false))
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		panic(panicMsg)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "panic: "+panicMsg, msg["detail"])
}

func newRateLimitRouter(rule common.RateLimitRule) *mux.Router {
	router := mux.NewRouter()
	router.Use(RateLimitMiddleware(log, rule))
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {})

	return router
}

func requestFrom(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	rule := common.NewRateLimitRule(limiter.Rate{Period: time.Minute, Limit: 2})
	router := newRateLimitRouter(rule)

	require.Equal(t, http.StatusOK, requestFrom(router, "1.2.3.4:1000").Code)

	rec := requestFrom(router, "1.2.3.4:1001")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusTooManyRequests, requestFrom(router, "1.2.3.4:1002").Code)

	// other clients have their own count
	require.Equal(t, http.StatusOK, requestFrom(router, "5.6.7.8:1000").Code)
}

func TestRateLimitMiddlewareByIPAddress(t *testing.T) {
	rule := common.NewRateLimitRule(limiter.Rate{Period: time.Minute, Limit: 1})
	rule.ByIPAddress["1.2.3.4"] = limiter.Rate{Period: time.Minute, Limit: 0}
	router := newRateLimitRouter(rule)

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, requestFrom(router, "1.2.3.4:1000").Code)
	}

	require.Equal(t, http.StatusOK, requestFrom(router, "5.6.7.8:1000").Code)
	require.Equal(t, http.StatusTooManyRequests, requestFrom(router, "5.6.7.8:1000").Code)
}

func TestCORSMiddleware(t *testing.T) {
	router := mux.NewRouter()
	router.Use(CORSMiddleware())
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {}).Methods("GET", "OPTIONS")

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://showme.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
