package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nvellon/hal"
	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/errors"
)

type testResource struct {
	Name string `json:"name"`
}

func (r testResource) GetMap() hal.Entry {
	return hal.Entry{"name": r.Name}
}

func (r testResource) Resource() *hal.Resource {
	return hal.NewResource(r, "/findme")
}

func TestWriteJSON(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]int{"counter": 3})
	})
	router.HandleFunc("/hal", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, testResource{Name: "showme"})
	})
	router.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, errors.PollNotFound.Clone().SetData("id", 9))
	})
	router.HandleFunc("/problem", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusBadRequest, NewDetailedStatusProblem(http.StatusBadRequest, "paramaters are not enough"))
	})

	do := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", path, nil)
		router.ServeHTTP(w, r)
		return w
	}

	{
		w := do("/plain")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.JSONEq(t, `{"counter":3}`, w.Body.String())
	}

	{
		w := do("/hal")
		require.Equal(t, "application/hal+json", w.Header().Get("Content-Type"))

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		require.Equal(t, "showme", m["name"])
		require.Contains(t, m, "_links")
	}

	{
		w := do("/error")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

		var p Problem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.Equal(t, ProblemTypeErrorPrefix+"101", p.Type)
		require.Equal(t, errors.PollNotFound.Message, p.Title)

		err := ProblemToError(p)
		require.True(t, errors.Is(err, errors.PollNotFound))
		require.Equal(t, float64(9), err.(*errors.Error).Data["id"])
	}

	{
		w := do("/problem")
		require.Equal(t, http.StatusBadRequest, w.Code)

		var p Problem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.Equal(t, "about:blank", p.Type)
		require.Equal(t, "paramaters are not enough", p.Detail)

		_, ok := ProblemToError(p).(Problem)
		require.True(t, ok)
	}
}

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusConflict, StatusCode(errors.AlreadyResponded))
	require.Equal(t, http.StatusConflict, StatusCode(errors.PollStillActive.Clone()))
	require.Equal(t, http.StatusUnauthorized, StatusCode(errors.SignatureVerificationFailed))
	require.Equal(t, http.StatusInternalServerError, StatusCode(errors.NewError(999, "unknown")))
	require.Equal(t, http.StatusInternalServerError, StatusCode(http.ErrServerClosed))
}

func TestPageQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/polls?limit=2&cursor=5", nil)
	p, err := NewPageQuery(r)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p.Limit())
	require.Equal(t, []byte("5"), p.Cursor())
	require.False(t, p.Reverse())

	require.Equal(t, "/api/v1/polls?cursor=7&limit=2&reverse=false", p.NextLink([]byte("7")))
	require.Equal(t, "/api/v1/polls?cursor=6&limit=2&reverse=true", p.PrevLink([]byte("6")))

	_, err = NewPageQuery(httptest.NewRequest("GET", "/api/v1/polls?limit=findme", nil))
	require.True(t, errors.Is(err, errors.BadRequestParameter))
}
