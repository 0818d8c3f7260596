package api

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/common/test"
	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httpcache"
	"boscoin.io/feedback/lib/sequencer"
	"boscoin.io/feedback/lib/storage"
)

func init() {
	SetLogging(logging.LvlDebug, test.LogHandler())
}

type testAPIServer struct {
	*httptest.Server

	config    common.Config
	clock     *clock.ManualClock
	ledger    *ledger.Ledger
	sequencer *sequencer.Sequencer
}

func prepareAPIServer(t *testing.T) (*testAPIServer, func()) {
	st := storage.NewTestStorage()
	c := clock.NewManualClock(0)
	config := common.NewTestConfig()
	l := ledger.NewLedger(st, c, config)

	s := sequencer.NewSequencer(l, config.SequencerQueueSize)
	go s.Run()

	router := mux.NewRouter()
	require.NoError(t, NewNetworkHandlerAPI(s, config.NetworkID).AddRoutes(router, httpcache.NewNopClient(), config))

	ts := &testAPIServer{
		Server:    httptest.NewServer(router),
		config:    config,
		clock:     c,
		ledger:    l,
		sequencer: s,
	}

	return ts, func() {
		ts.Close()
		s.Stop()
		st.Close()
	}
}

// url fills the `{key}` of `pattern` with the `kv` pairs.
func (ts *testAPIServer) url(pattern string, kv ...string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		pattern = strings.Replace(pattern, "{"+kv[i]+"}", kv[i+1], -1)
	}
	return ts.URL + pattern
}

func (ts *testAPIServer) signed(t *testing.T, kp keypair.KP, body interface{}) []byte {
	signed, err := NewSignedRequest(kp, ts.config.NetworkID, body)
	require.NoError(t, err)

	b, err := json.Marshal(signed)
	require.NoError(t, err)

	return b
}

func doRequest(t *testing.T, method, u string, body []byte) (int, map[string]interface{}) {
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	recv := map[string]interface{}{}
	if len(b) > 0 {
		require.NoError(t, json.Unmarshal(b, &recv), string(b))
	}

	return resp.StatusCode, recv
}

func (ts *testAPIServer) createPoll(t *testing.T, kp keypair.KP, body CreatePollBody) uint64 {
	status, recv := doRequest(t, "POST", ts.url(resource.URLPolls), ts.signed(t, kp, &body))
	require.Equal(t, http.StatusCreated, status, recv)

	return uint64(recv["id"].(float64))
}
