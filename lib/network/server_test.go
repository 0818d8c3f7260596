package network

import (
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/common"
)

func newTestHTTP2Server(t *testing.T) *HTTP2Server {
	endpoint, err := common.ParseEndpoint("http://localhost:12345")
	require.NoError(t, err)

	config, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
	require.NoError(t, err)

	return NewHTTP2Server(config)
}

func TestHTTP2ServerNotReady(t *testing.T) {
	s := newTestHTTP2Server(t)
	s.Router().HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("findme"))
	})

	{
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.False(t, s.IsReady())
	}

	s.Ready()

	{
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "findme", rec.Body.String())
		require.NotEmpty(t, rec.Header().Get(HeaderKeyRequestID))
	}
}

func TestHTTP2ServerKeepsRequestID(t *testing.T) {
	s := newTestHTTP2Server(t)
	s.Router().HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {})
	s.Ready()

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderKeyRequestID, "showme")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, "showme", rec.Header().Get(HeaderKeyRequestID))
}

func TestHTTP2ServerStartStop(t *testing.T) {
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	endpoint, err := common.ParseEndpoint(fmt.Sprintf("http://%s", addr))
	require.NoError(t, err)
	config, err := NewHTTP2ServerConfigFromEndpoint(endpoint)
	require.NoError(t, err)

	s := NewHTTP2Server(config)
	s.Router().HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("findme"))
	})
	s.Ready()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	var resp *http.Response
	for i := 0; i < 100; i++ {
		if resp, err = http.Get(fmt.Sprintf("http://%s/test", addr)); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)

	b, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, "findme", string(b))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
