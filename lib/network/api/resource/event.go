package resource

import (
	"github.com/nvellon/hal"

	"boscoin.io/feedback/lib/ledger"
)

type Event struct {
	e ledger.Event
}

func NewEvent(e ledger.Event) *Event {
	return &Event{e: e}
}

func (e Event) GetMap() hal.Entry {
	m := hal.Entry{
		"seq":     e.e.Seq,
		"kind":    e.e.Kind,
		"poll_id": e.e.PollId,
	}

	switch e.e.Kind {
	case ledger.EventPollCreated:
		m["options"] = e.e.Options
		m["expiration"] = e.e.Expiration
	case ledger.EventResponseRecorded:
		m["option_hash"] = e.e.OptionHash
	case ledger.EventPollSealed:
		m["choice"] = e.e.Choice
	}

	return m
}

func (e Event) Resource() *hal.Resource {
	r := hal.NewResource(e, e.LinkSelf())
	r.AddLink("poll", hal.NewLink(replaceID(URLPoll, e.e.PollId)))
	return r
}

func (e Event) LinkSelf() string {
	return replaceID(URLEvent, e.e.Seq)
}
