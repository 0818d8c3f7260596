package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	observable "github.com/GianlucaGuarini/go-observable"
	"github.com/pkg/errors"

	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httputils"
)

const (
	// DefaultContentType is "application/json"
	DefaultContentType = "application/json"

	// DefaultStreamBufferSize is the number of events kept for a slow
	// consumer; the events beyond it are dropped.
	DefaultStreamBufferSize = 100
)

// EventStream handles chunked responses of a observable trigger
//
// renderFunc uses on observable.On() and Render function
type EventStream struct {
	contentType string
	renderFunc  RenderFunc
	request     *http.Request
	writer      http.ResponseWriter
	flusher     http.Flusher
	bufferSize  int
	err         error
}

type RenderFunc func(args ...interface{}) ([]byte, error)

// RenderJSONFunc renders the value of the observable trigger, the first
// argument is the event name.
var RenderJSONFunc = func(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, errors.New("render: value is empty")
	}

	switch v := args[1].(type) {
	case nil:
		return nil, nil
	case ledger.Event:
		return json.Marshal(resource.NewEvent(v).Resource())
	case httputils.HALResource:
		return json.Marshal(v.Resource())
	default:
		return json.Marshal(v)
	}
}

// NewDefaultEventStream returns *EventStream with RenderJSONFunc and DefaultContentType
func NewDefaultEventStream(w http.ResponseWriter, r *http.Request) *EventStream {
	return NewEventStream(w, r, RenderJSONFunc, DefaultContentType)
}

// NewEventStream makes *EventStream and checks http.Flusher by type assertion.
func NewEventStream(w http.ResponseWriter, r *http.Request, renderFunc RenderFunc, ct string) *EventStream {
	es := &EventStream{
		request:     r,
		writer:      w,
		renderFunc:  renderFunc,
		contentType: ct,
		bufferSize:  DefaultStreamBufferSize,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		es.err = errors.New("http: can't do chunked response")
	} else {
		es.flusher = flusher
	}

	return es
}

// Run start observing events.
//
// Simple use case:
//
// 	event := observer.NewEvent(observer.ResourcePoll, observer.ConditionID, "1").String()
// 	es := NewDefaultEventStream(w, r)
// 	es.Run(observer.LedgerObserver, event)
func (s *EventStream) Run(ob *observable.Observable, events ...string) {
	s.Start(ob, events...)()
}

//
// Start subscribes to the events, sends the response header and returns the
// func which writes the events until the request is done.
//
// The observer never waits for the stream; when the consumer is slower than
// the ledger and the buffer is full, the event is dropped.
//
// The observer calls back from its own goroutines, so the events may be
// written out of order. `seq` of each event is the ordering key; consumers
// sort by it and fetch gaps from `/events`.
//
// In most case, Use Run instead of Start
//
func (s *EventStream) Start(ob *observable.Observable, events ...string) func() {
	if s.err != nil {
		http.Error(s.writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return func() {}
	}

	event := strings.Join(events, " ")
	msg := make(chan []byte, s.bufferSize)

	onFunc := func(args ...interface{}) {
		var as []interface{}
		as = append(as, event)
		as = append(as, args...)

		payload, err := s.renderFunc(as...)
		if err != nil {
			payload = s.errMessage(err)
		}
		if payload == nil {
			return
		}

		select {
		case msg <- payload:
		default:
			log.Warn("event stream is full; event dropped", "event", event, "remote", s.request.RemoteAddr)
		}
	}
	ob.On(event, onFunc)

	s.writer.Header().Set("Content-Type", s.contentType)
	s.writer.WriteHeader(http.StatusOK)
	s.flusher.Flush()

	return func() {
		defer ob.Off(event, onFunc)

		for {
			select {
			case payload := <-msg:
				fmt.Fprintf(s.writer, "%s\n", payload)
				s.flusher.Flush()
			case <-s.request.Context().Done():
				return
			}
		}
	}
}

func (s *EventStream) errMessage(err error) []byte {
	b, err := json.Marshal(httputils.NewErrorProblem(err, httputils.StatusCode(err)))
	if err != nil {
		return []byte{}
	}
	return b
}
