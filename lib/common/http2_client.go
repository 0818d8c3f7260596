package common

import (
	"bytes"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/sethgrid/pester"
	"golang.org/x/net/http2"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type BackoffStrategy = pester.BackoffStrategy

var (
	DefaultBackoff     BackoffStrategy = pester.ExponentialBackoff
	DefaultMaxRetries  int             = 3
	DefaultConcurrency int             = 1
)

// RetrySetting makes the client retry the failed requests with pester;
// connection errors and 5xx responses are retried.
type RetrySetting struct {
	MaxRetries  int
	Concurrency int
	Backoff     BackoffStrategy
}

func NewDefaultRetrySetting() *RetrySetting {
	return &RetrySetting{
		MaxRetries:  DefaultMaxRetries,
		Concurrency: DefaultConcurrency,
		Backoff:     DefaultBackoff,
	}
}

//
// HTTP2Client talks HTTP/2 to the `https` nodes and falls back to
// HTTP/1.1 for plain `http`.
//
type HTTP2Client struct {
	doer      HTTPDoer
	client    http.Client
	transport *http.Transport
}

func NewHTTP2Client(timeout, idleTimeout time.Duration, keepAlive bool, retrySetting *RetrySetting) (client *HTTP2Client, err error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			// nodes usually run with self signed certificates
			InsecureSkipVerify: true,
		},
		IdleConnTimeout:   idleTimeout,
		DisableKeepAlives: !keepAlive,
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 1 * time.Second,
			DualStack: true,
		}).DialContext,
	}

	if err = http2.ConfigureTransport(transport); err != nil {
		return
	}

	client = &HTTP2Client{
		client: http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: transport,
	}
	client.doer = &client.client

	if retrySetting != nil {
		ec := pester.NewExtendedClient(&client.client)
		ec.MaxRetries = retrySetting.MaxRetries
		ec.Concurrency = retrySetting.Concurrency
		ec.Backoff = retrySetting.Backoff
		client.doer = ec
	}

	return
}

func (c *HTTP2Client) Close() {
	c.transport.CloseIdleConnections()
}

func (c *HTTP2Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	request.Header = headers

	return c.Do(request.WithContext(ctx))
}

func (c *HTTP2Client) Post(ctx context.Context, url string, b []byte, headers http.Header) (*http.Response, error) {
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	request.Header = headers

	return c.Do(request.WithContext(ctx))
}

// It's same interface as https://golang.org/pkg/net/http/#Client.Do
func (c *HTTP2Client) Do(req *http.Request) (*http.Response, error) {
	return c.doer.Do(req)
}
