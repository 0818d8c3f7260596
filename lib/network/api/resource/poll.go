package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/feedback/lib/ledger"
)

type Poll struct {
	p         ledger.Poll
	undecided bool
}

func NewPoll(p ledger.Poll, undecided bool) *Poll {
	return &Poll{p: p, undecided: undecided}
}

func (p Poll) GetMap() hal.Entry {
	return hal.Entry{
		"id":            p.p.Id,
		"owner":         p.p.Owner,
		"title":         p.p.Title,
		"option_hashes": p.p.OptionHashes,
		"choice":        p.p.Choice,
		"undecided":     p.undecided,
		"expiration":    p.p.Expiration,
	}
}

func (p Poll) Resource() *hal.Resource {
	r := hal.NewResource(p, p.LinkSelf())
	r.AddLink("responses", hal.NewLink(replaceID(URLPollResponses, p.p.Id)))
	r.AddLink("seal", hal.NewLink(replaceID(URLPollSeal, p.p.Id)))
	r.AddLink("tally", hal.NewLink(replaceID(URLPollTally, p.p.Id), hal.LinkAttr{"templated": true}))
	r.AddLink("entry", hal.NewLink(replaceID(URLPollEntry, p.p.Id), hal.LinkAttr{"templated": true}))

	return r
}

func (p Poll) LinkSelf() string {
	return replaceID(URLPoll, p.p.Id)
}

type Tally struct {
	PollId uint64
	Hash   string
	Count  uint64
}

func (t Tally) GetMap() hal.Entry {
	return hal.Entry{
		"poll_id": t.PollId,
		"hash":    t.Hash,
		"count":   t.Count,
	}
}

func (t Tally) Resource() *hal.Resource {
	r := hal.NewResource(t, t.LinkSelf())
	r.AddLink("poll", hal.NewLink(replaceID(URLPoll, t.PollId)))
	return r
}

func (t Tally) LinkSelf() string {
	return strings.Replace(replaceID(URLPollTally, t.PollId), "{hash}", t.Hash, -1)
}

type Entry struct {
	PollId    uint64
	Account   string
	Responded bool
}

func (e Entry) GetMap() hal.Entry {
	return hal.Entry{
		"poll_id":   e.PollId,
		"account":   e.Account,
		"responded": e.Responded,
	}
}

func (e Entry) Resource() *hal.Resource {
	r := hal.NewResource(e, e.LinkSelf())
	r.AddLink("poll", hal.NewLink(replaceID(URLPoll, e.PollId)))
	return r
}

func (e Entry) LinkSelf() string {
	return strings.Replace(replaceID(URLPollEntry, e.PollId), "{account}", e.Account, -1)
}

type Counter struct {
	Counter uint64
}

func (c Counter) GetMap() hal.Entry {
	return hal.Entry{"counter": c.Counter}
}

func (c Counter) Resource() *hal.Resource {
	r := hal.NewResource(c, c.LinkSelf())
	r.AddLink("polls", hal.NewLink(URLPolls+"{?cursor,limit,reverse}", hal.LinkAttr{"templated": true}))
	return r
}

func (c Counter) LinkSelf() string {
	return URLCounter
}
