package client

import (
	"bufio"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/network/api"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httputils"
)

var (
	DefaultTimeout     = 10 * time.Second
	DefaultIdleTimeout = 30 * time.Second
)

type QueryKey string

func (qk QueryKey) String() string {
	return string(qk)
}

const (
	QueryLimit   QueryKey = "limit"
	QueryReverse QueryKey = "reverse"
	QueryCursor  QueryKey = "cursor"
	QueryPoll    QueryKey = "poll"
	QueryKind    QueryKey = "kind"
)

type Q struct {
	Key   QueryKey
	Value string
}

type Queries []Q

func (qs Queries) toQueryString() string {
	if len(qs) == 0 {
		return ""
	}

	urlValues := url.Values{}
	for _, q := range qs {
		urlValues.Add(q.Key.String(), q.Value)
	}
	return "?" + urlValues.Encode()
}

//
// Client of the node api. The write requests are signed with the given
// keypair for `networkID`, the node rejects them for any other network.
//
type Client struct {
	endpoint  *common.Endpoint
	networkID []byte

	HTTP *common.HTTP2Client
}

func NewClient(endpoint *common.Endpoint, networkID []byte, retrySetting *common.RetrySetting) (*Client, error) {
	httpClient, err := common.NewHTTP2Client(DefaultTimeout, DefaultIdleTimeout, true, retrySetting)
	if err != nil {
		return nil, err
	}

	return &Client{
		endpoint:  endpoint,
		networkID: networkID,
		HTTP:      httpClient,
	}, nil
}

func (c *Client) Close() {
	c.HTTP.Close()
}

func (c *Client) url(pattern string, kv ...string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		pattern = strings.Replace(pattern, "{"+kv[i]+"}", kv[i+1], -1)
	}
	return c.endpoint.ResolvePath(pattern).String()
}

// toResponse decodes the body into `response`; the problem of a failed
// request comes back as the `*errors.Error` the node returned.
func toResponse(resp *http.Response, response interface{}) error {
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var p httputils.Problem
		if err := json.Unmarshal(b, &p); err != nil {
			return errors.Errorf("unexpected response; status=%d body=%q", resp.StatusCode, string(b))
		}
		return httputils.ProblemToError(p)
	}

	return json.Unmarshal(b, response)
}

func (c *Client) get(ctx context.Context, u string, response interface{}) error {
	headers := http.Header{}
	headers.Set("Accept", "application/json")

	resp, err := c.HTTP.Get(ctx, u, headers)
	if err != nil {
		return err
	}

	return toResponse(resp, response)
}

func (c *Client) post(ctx context.Context, u string, body []byte, response interface{}) error {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Post(ctx, u, body, headers)
	if err != nil {
		return err
	}

	return toResponse(resp, response)
}

func (c *Client) postSigned(ctx context.Context, u string, kp keypair.KP, body interface{}, response interface{}) error {
	signed, err := api.NewSignedRequest(kp, c.networkID, body)
	if err != nil {
		return err
	}

	b, err := json.Marshal(signed)
	if err != nil {
		return err
	}

	return c.post(ctx, u, b, response)
}

// CreatePoll creates a poll which accepts responses for `openFor` milliseconds.
func (c *Client) CreatePoll(ctx context.Context, kp keypair.KP, title []byte, options [][]byte, openFor clock.Duration) (poll Poll, err error) {
	body := api.CreatePollBody{
		Title:   title,
		Options: options,
		OpenFor: uint64(openFor),
		Nonce:   uuid.New().String(),
	}

	err = c.postSigned(ctx, c.url(resource.URLPolls), kp, &body, &poll)
	return
}

func (c *Client) RecordResponse(ctx context.Context, kp keypair.KP, id uint64, option []byte) (tally Tally, err error) {
	body := api.RecordResponseBody{
		PollId: id,
		Option: option,
		Nonce:  uuid.New().String(),
	}

	err = c.postSigned(ctx, c.url(resource.URLPollResponses, "id", strconv.FormatUint(id, 10)), kp, &body, &tally)
	return
}

func (c *Client) SealPoll(ctx context.Context, id uint64) (poll Poll, err error) {
	err = c.post(ctx, c.url(resource.URLPollSeal, "id", strconv.FormatUint(id, 10)), nil, &poll)
	return
}

func (c *Client) LoadPoll(ctx context.Context, id uint64) (poll Poll, err error) {
	err = c.get(ctx, c.url(resource.URLPoll, "id", strconv.FormatUint(id, 10)), &poll)
	return
}

func (c *Client) LoadPolls(ctx context.Context, queries ...Q) (page PollsPage, err error) {
	err = c.get(ctx, c.url(resource.URLPolls)+Queries(queries).toQueryString(), &page)
	return
}

func (c *Client) LoadTally(ctx context.Context, id uint64, h common.Hash) (tally Tally, err error) {
	err = c.get(ctx, c.url(resource.URLPollTally, "id", strconv.FormatUint(id, 10), "hash", h.String()), &tally)
	return
}

func (c *Client) LoadEntry(ctx context.Context, id uint64, account string) (entry Entry, err error) {
	err = c.get(ctx, c.url(resource.URLPollEntry, "id", strconv.FormatUint(id, 10), "account", account), &entry)
	return
}

func (c *Client) LoadCounter(ctx context.Context) (counter Counter, err error) {
	err = c.get(ctx, c.url(resource.URLCounter), &counter)
	return
}

func (c *Client) LoadEvents(ctx context.Context, queries ...Q) (page EventsPage, err error) {
	err = c.get(ctx, c.url(resource.URLEvents)+Queries(queries).toQueryString(), &page)
	return
}

func (c *Client) LoadEvent(ctx context.Context, seq uint64) (event Event, err error) {
	err = c.get(ctx, c.url(resource.URLEvent, "id", strconv.FormatUint(seq, 10)), &event)
	return
}

//
// StreamEvents calls `handler` for every event the node commits from now
// on, until `ctx` is done or the connection is lost. `QueryPoll` and
// `QueryKind` filter the events.
//
func (c *Client) StreamEvents(ctx context.Context, handler func(Event), queries ...Q) error {
	headers := http.Header{}
	headers.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Get(ctx, c.url(resource.URLEvents)+Queries(queries).toQueryString(), headers)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return toResponse(resp, nil)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if len(strings.TrimSpace(string(line))) < 1 {
			continue
		}

		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		handler(e)
	}
}
