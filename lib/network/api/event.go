package api

import (
	"net/http"
	"strconv"

	"boscoin.io/feedback/lib/common/observer"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httputils"
)

//
// GetEventsHandler lists the event log. With `Accept: text/event-stream`
// it streams the events committed from now on instead, filtered by the
// `poll` or `kind` query.
//
func (api NetworkHandlerAPI) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	if httputils.IsEventStream(r) {
		event, err := streamEventName(r)
		if err != nil {
			httputils.WriteError(w, err)
			return
		}

		es := NewDefaultEventStream(w, r)
		es.Run(observer.LedgerObserver, event)
		return
	}

	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	events, err := api.ledger.Events(p)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	var firstCursor, lastCursor []byte
	var list []resource.Resource
	for _, e := range events {
		list = append(list, resource.NewEvent(e))
	}
	if len(events) > 0 {
		firstCursor = []byte(strconv.FormatUint(events[0].Seq, 10))
		lastCursor = []byte(strconv.FormatUint(events[len(events)-1].Seq, 10))
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewResourceList(
		list,
		p.SelfLink(),
		p.NextLink(lastCursor),
		p.PrevLink(firstCursor),
	))
}

func streamEventName(r *http.Request) (string, error) {
	query := r.URL.Query()

	if s := query.Get("poll"); len(s) > 0 {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return "", errors.BadRequestParameter.Clone().SetData("poll", s)
		}
		// same form as the ledger publishes, so "01" follows poll 1
		return observer.NewEvent(observer.ResourcePoll, observer.ConditionID, strconv.FormatUint(id, 10)).String(), nil
	}

	if s := query.Get("kind"); len(s) > 0 {
		return observer.NewEvent(observer.ResourceEvent, observer.ConditionKind, s).String(), nil
	}

	return observer.NewEvent(observer.ResourceEvent, observer.ConditionAll, "").String(), nil
}

func (api NetworkHandlerAPI) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	seq, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	e, err := api.ledger.GetEvent(seq)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewEvent(e))
}
