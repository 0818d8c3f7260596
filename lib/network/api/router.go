package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/network"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httpcache"
)

const (
	JSONRPCPattern = "/jsonrpc"
	MetricsPattern = "/metrics"
)

func apiPath(u string) string {
	return strings.TrimPrefix(u, resource.APIPrefix)
}

//
// AddRoutes registers the api under `resource.APIPrefix` and the JSON-RPC
// service on `router`.
//
// The GET responses of the polls, tallies, entries and the counter go thru
// `cache`; the event log is never cached.
//
func (api NetworkHandlerAPI) AddRoutes(router *mux.Router, cache httpcache.Cache, config common.Config) error {
	router.Use(network.RecoverMiddleware(false))
	router.Use(network.MetricsMiddleware)

	r := router.PathPrefix(resource.APIPrefix).Subrouter()
	r.Use(network.RateLimitMiddleware(log, config.RateLimitRuleAPI))
	r.Use(network.CORSMiddleware())

	get := []string{http.MethodGet, http.MethodOptions}
	post := []string{http.MethodPost, http.MethodOptions}

	r.HandleFunc(apiPath(resource.URLPolls), api.PostPollHandler).Methods(post...)
	r.HandleFunc(apiPath(resource.URLPolls), cache.WrapHandlerFunc(api.GetPollsHandler)).Methods(get...)
	r.HandleFunc(apiPath(resource.URLPoll), cache.WrapHandlerFunc(api.GetPollHandler)).Methods(get...)
	r.HandleFunc(apiPath(resource.URLPollResponses), api.PostResponseHandler).Methods(post...)
	r.HandleFunc(apiPath(resource.URLPollSeal), api.PostSealHandler).Methods(post...)
	r.HandleFunc(apiPath(resource.URLPollTally), cache.WrapHandlerFunc(api.GetTallyHandler)).Methods(get...)
	r.HandleFunc(apiPath(resource.URLPollEntry), cache.WrapHandlerFunc(api.GetEntryHandler)).Methods(get...)
	r.HandleFunc(apiPath(resource.URLCounter), cache.WrapHandlerFunc(api.GetCounterHandler)).Methods(get...)
	r.HandleFunc(apiPath(resource.URLEvents), api.GetEventsHandler).Methods(get...)
	r.HandleFunc(apiPath(resource.URLEvent), api.GetEventHandler).Methods(get...)

	rpcServer, err := NewJSONRPCServer(api.ledger)
	if err != nil {
		return err
	}
	router.Handle(JSONRPCPattern, rpcServer).Methods(http.MethodPost)

	return nil
}
