package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// LedgerObserver fans out every ledger event after it was committed.
var LedgerObserver = observable.New()

const (
	ResourceEvent = "event"
	ResourcePoll  = "poll"
	ConditionAll  = "*"
	ConditionID   = "id"
	ConditionKind = "kind"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

func (e Event) String() string {
	toStr := e.Resource + "-"
	if e.Condition == ConditionAll {
		toStr += e.Condition
	} else {
		toStr += e.Condition + "="
		toStr += e.Id
	}
	return toStr
}
