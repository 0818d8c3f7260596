package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/network/httputils"
	"boscoin.io/feedback/lib/sequencer"
)

func (api NetworkHandlerAPI) PostPollHandler(w http.ResponseWriter, r *http.Request) {
	var body CreatePollBody
	caller, err := readSignedRequest(r, api.networkID, &body)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	id, err := api.sequencer.CreatePoll(r.Context(), sequencer.CreatePoll{
		Caller:  caller,
		Title:   body.Title,
		Options: body.Options,
		OpenFor: clock.Duration(body.OpenFor),
	})
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	poll, _, err := api.ledger.GetPoll(id)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, api.newPoll(poll))
}

func (api NetworkHandlerAPI) GetPollsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	polls, err := api.ledger.Polls(p)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	var firstCursor, lastCursor []byte
	var list []resource.Resource
	for _, poll := range polls {
		list = append(list, api.newPoll(poll))
	}
	if len(polls) > 0 {
		firstCursor = []byte(strconv.FormatUint(polls[0].Id, 10))
		lastCursor = []byte(strconv.FormatUint(polls[len(polls)-1].Id, 10))
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewResourceList(
		list,
		p.SelfLink(),
		p.NextLink(lastCursor),
		p.PrevLink(firstCursor),
	))
}

func (api NetworkHandlerAPI) GetPollHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	poll, found, err := api.ledger.GetPoll(id)
	if err != nil {
		httputils.WriteError(w, err)
		return
	} else if !found {
		httputils.WriteError(w, errors.PollNotFound.Clone().SetData("id", id))
		return
	}

	httputils.WriteJSON(w, http.StatusOK, api.newPoll(poll))
}

func (api NetworkHandlerAPI) PostResponseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	var body RecordResponseBody
	caller, err := readSignedRequest(r, api.networkID, &body)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	if body.PollId != id {
		httputils.WriteError(w, errors.BadRequestParameter.Clone().SetData("poll_id", body.PollId))
		return
	}

	err = api.sequencer.RecordResponse(r.Context(), sequencer.RecordResponse{
		Caller: caller,
		PollId: id,
		Option: body.Option,
	})
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	h := api.ledger.Hash(body.Option)
	count, err := api.ledger.GetTally(id, h)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, resource.Tally{PollId: id, Hash: h.String(), Count: count})
}

func (api NetworkHandlerAPI) PostSealHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	if _, err = api.sequencer.SealPoll(r.Context(), sequencer.SealPoll{PollId: id}); err != nil {
		httputils.WriteError(w, err)
		return
	}

	poll, _, err := api.ledger.GetPoll(id)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, api.newPoll(poll))
}

func (api NetworkHandlerAPI) GetTallyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	h, err := common.ParseHash(mux.Vars(r)["hash"])
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	count, err := api.ledger.GetTally(id, h)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.Tally{PollId: id, Hash: h.String(), Count: count})
}

func (api NetworkHandlerAPI) GetEntryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	account := mux.Vars(r)["account"]
	if !keypair.IsAddress(account) {
		httputils.WriteError(w, errors.InvalidAccount.Clone().SetData("account", account))
		return
	}

	responded, err := api.ledger.HasResponded(account, id)
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.Entry{PollId: id, Account: account, Responded: responded})
}

func (api NetworkHandlerAPI) GetCounterHandler(w http.ResponseWriter, r *http.Request) {
	counter, err := api.ledger.GetPollCounter()
	if err != nil {
		httputils.WriteError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.Counter{Counter: counter})
}
