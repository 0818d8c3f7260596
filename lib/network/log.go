package network

import (
	"bufio"
	stdlog "log"
	"net"
	"net/http"
	"strings"

	logging "github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"boscoin.io/feedback/lib/common"
)

const HeaderKeyRequestID = "X-Request-Id"

type HTTP2ErrorLog15Writer struct {
	l logging.Logger
}

func (w HTTP2ErrorLog15Writer) Write(b []byte) (int, error) {
	w.l.Error("error", "error", strings.TrimSpace(string(b)))
	return len(b), nil
}

func newHTTP2ErrorLogger(l logging.Logger) *stdlog.Logger {
	return stdlog.New(HTTP2ErrorLog15Writer{l: l}, "", 0)
}

// HTTP2ResponseLog15Writer records the status and the size of the response.
type HTTP2ResponseLog15Writer struct {
	w      http.ResponseWriter
	status int
	size   int
}

func NewHTTP2ResponseLog15Writer(w http.ResponseWriter) *HTTP2ResponseLog15Writer {
	return &HTTP2ResponseLog15Writer{w: w}
}

func (l *HTTP2ResponseLog15Writer) Header() http.Header {
	return l.w.Header()
}

func (l *HTTP2ResponseLog15Writer) Write(b []byte) (int, error) {
	if l.status == 0 {
		l.status = http.StatusOK
	}
	size, err := l.w.Write(b)
	l.size += size
	return size, err
}

func (l *HTTP2ResponseLog15Writer) WriteHeader(s int) {
	l.w.WriteHeader(s)
	l.status = s
}

func (l *HTTP2ResponseLog15Writer) Status() int {
	if l.status == 0 {
		return http.StatusOK
	}
	return l.status
}

func (l *HTTP2ResponseLog15Writer) Size() int {
	return l.size
}

func (l *HTTP2ResponseLog15Writer) Flush() {
	if f, ok := l.w.(http.Flusher); ok {
		f.Flush()
	}
}

func (l *HTTP2ResponseLog15Writer) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := l.w.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

type HTTP2Log15Handler struct {
	log     logging.Logger
	handler http.Handler
}

func NewHTTP2Log15Handler(l logging.Logger, handler http.Handler) HTTP2Log15Handler {
	return HTTP2Log15Handler{log: l, handler: handler}
}

var HeaderKeyFiltered []string = []string{
	"Content-Length",
	"Content-Type",
	"Accept",
	"Accept-Encoding",
	"User-Agent",
}

// ServeHTTP will log in 2 phase, when request received and response sent. This
// was derived from github.com/gorilla/handlers/handlers.go
func (l HTTP2Log15Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := r.Header.Get(HeaderKeyRequestID)
	if len(uid) < 1 {
		uid = common.GetUniqueIDFromUUID()
	}
	w.Header().Set(HeaderKeyRequestID, uid)

	uri := r.RequestURI
	if r.ProtoMajor == 2 && r.Method == "CONNECT" {
		uri = r.Host
	}
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	header := http.Header{}
	for key, value := range r.Header {
		if _, found := common.InStringArray(HeaderKeyFiltered, key); found {
			continue
		}
		header[key] = value
	}

	l.log.Debug(
		"request",
		"content-length", r.ContentLength,
		"content-type", r.Header.Get("Content-Type"),
		"headers", header,
		"host", r.Host,
		"id", uid,
		"method", r.Method,
		"proto", r.Proto,
		"referer", r.Referer(),
		"remote", r.RemoteAddr,
		"uri", uri,
		"user-agent", r.UserAgent(),
	)

	writer := NewHTTP2ResponseLog15Writer(w)
	l.handler.ServeHTTP(writer, r)

	l.log.Debug(
		"response",
		"id", uid,
		"status", writer.Status(),
		"size", writer.Size(),
	)
}
