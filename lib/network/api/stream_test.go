package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/common/observer"
	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/network/api/resource"
)

func openEventStream(t *testing.T, u string) (chan map[string]interface{}, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequest("GET", u, nil)
	require.NoError(t, err)
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")

	// the headers are sent once the stream is subscribed
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	received := make(chan map[string]interface{}, 10)
	go func() {
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}

			m := map[string]interface{}{}
			if err := json.Unmarshal(line, &m); err != nil {
				return
			}
			received <- m
		}
	}()

	return received, cancel
}

func waitEvent(t *testing.T, received chan map[string]interface{}) map[string]interface{} {
	select {
	case m := <-received:
		return m
	case <-time.After(3 * time.Second):
		t.Fatal("event was not streamed")
	}
	return nil
}

func TestAPIEventStream(t *testing.T) {
	ts, closeFunc := prepareAPIServer(t)
	defer closeFunc()

	received, cancel := openEventStream(t, ts.url(resource.URLEvents)+"?kind="+string(ledger.EventPollCreated))
	defer cancel()

	kp := keypair.Random()
	id := ts.createPoll(t, kp, CreatePollBody{Title: []byte("a"), Options: [][]byte{[]byte("A")}, OpenFor: 10})

	m := waitEvent(t, received)
	require.Equal(t, string(ledger.EventPollCreated), m["kind"])
	require.Equal(t, float64(id), m["poll_id"])
	require.Equal(t, float64(10), m["expiration"])
}

func TestAPIEventStreamByPoll(t *testing.T) {
	ts, closeFunc := prepareAPIServer(t)
	defer closeFunc()

	kp := keypair.Random()
	ts.createPoll(t, kp, CreatePollBody{Title: []byte("a"), Options: [][]byte{[]byte("A")}, OpenFor: 10})
	ts.createPoll(t, kp, CreatePollBody{Title: []byte("b"), Options: [][]byte{[]byte("A")}, OpenFor: 10})

	received, cancel := openEventStream(t, ts.url(resource.URLEvents)+"?poll=2")
	defer cancel()

	body := RecordResponseBody{PollId: 1, Option: []byte("A")}
	status, _ := doRequest(t, "POST", ts.url(resource.URLPollResponses, "id", "1"), ts.signed(t, kp, &body))
	require.Equal(t, http.StatusCreated, status)

	body = RecordResponseBody{PollId: 2, Option: []byte("A")}
	status, _ = doRequest(t, "POST", ts.url(resource.URLPollResponses, "id", "2"), ts.signed(t, kp, &body))
	require.Equal(t, http.StatusCreated, status)

	m := waitEvent(t, received)
	require.Equal(t, string(ledger.EventResponseRecorded), m["kind"])
	require.Equal(t, float64(2), m["poll_id"])

	select {
	case m := <-received:
		t.Fatalf("unexpected event, %v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAPIEventStreamBadPoll(t *testing.T) {
	ts, closeFunc := prepareAPIServer(t)
	defer closeFunc()

	req, err := http.NewRequest("GET", ts.url(resource.URLEvents)+"?poll=showme", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIEventStreamPollLeadingZero(t *testing.T) {
	ts, closeFunc := prepareAPIServer(t)
	defer closeFunc()

	kp := keypair.Random()
	id := ts.createPoll(t, kp, CreatePollBody{Title: []byte("a"), Options: [][]byte{[]byte("A")}, OpenFor: 10})

	received, cancel := openEventStream(t, ts.url(resource.URLEvents)+"?poll=01")
	defer cancel()

	body := RecordResponseBody{PollId: id, Option: []byte("A")}
	status, _ := doRequest(t, "POST", ts.url(resource.URLPollResponses, "id", "1"), ts.signed(t, kp, &body))
	require.Equal(t, http.StatusCreated, status)

	m := waitEvent(t, received)
	require.Equal(t, string(ledger.EventResponseRecorded), m["kind"])
	require.Equal(t, float64(1), m["poll_id"])
}

func TestStreamEventName(t *testing.T) {
	expected := observer.NewEvent(observer.ResourcePoll, observer.ConditionID, "1").String()
	for _, q := range []string{"1", "01", "001"} {
		r := httptest.NewRequest("GET", resource.URLEvents+"?poll="+q, nil)
		name, err := streamEventName(r)
		require.NoError(t, err)
		require.Equal(t, expected, name, q)
	}

	r := httptest.NewRequest("GET", resource.URLEvents+"?kind="+string(ledger.EventPollSealed), nil)
	name, err := streamEventName(r)
	require.NoError(t, err)
	require.Equal(t, observer.NewEvent(observer.ResourceEvent, observer.ConditionKind, string(ledger.EventPollSealed)).String(), name)
}
