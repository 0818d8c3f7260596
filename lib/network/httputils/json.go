package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/nvellon/hal"
)

type HALResource interface {
	Resource() *hal.Resource
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	switch t := v.(type) {
	case HALResource:
		w.Header().Set("Content-Type", "application/hal+json")
		v = t.Resource()
	case Problem:
		w.Header().Set("Content-Type", "application/problem+json")
	case error:
		w.Header().Set("Content-Type", "application/problem+json")
		v = NewErrorProblem(t, code)
	default:
		w.Header().Set("Content-Type", "application/json")
	}

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.WriteHeader(code)
	_, err = w.Write(bs)

	return err
}

// WriteError picks the status from `err`.
func WriteError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusCode(err), err)
}
