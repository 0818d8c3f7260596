package ledger

import (
	"strconv"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/observer"
	"boscoin.io/feedback/lib/storage"
)

type EventKind string

const (
	EventPollCreated      EventKind = "PollCreated"
	EventResponseRecorded EventKind = "ResponseRecorded"
	EventPollSealed       EventKind = "PollSealed"
)

//
// Event is emitted once per successful operation. `Seq` orders the events
// of a ledger, starting at 1.
//
// Only the fields of its kind are set:
//  * PollCreated: `Options`, `Expiration`
//  * ResponseRecorded: `OptionHash`
//  * PollSealed: `Choice`
//
type Event struct {
	Seq        uint64       `json:"seq"`
	Kind       EventKind    `json:"kind"`
	PollId     uint64       `json:"poll_id"`
	Options    [][]byte     `json:"options,omitempty"`
	Expiration clock.Moment `json:"expiration,omitempty"`
	OptionHash *common.Hash `json:"option_hash,omitempty"`
	Choice     *common.Hash `json:"choice,omitempty"`
}

func NewPollCreatedEvent(id uint64, options [][]byte, expiration clock.Moment) Event {
	return Event{
		Kind:       EventPollCreated,
		PollId:     id,
		Options:    options,
		Expiration: expiration,
	}
}

func NewResponseRecordedEvent(id uint64, h common.Hash) Event {
	return Event{
		Kind:       EventResponseRecorded,
		PollId:     id,
		OptionHash: &h,
	}
}

func NewPollSealedEvent(id uint64, choice common.Hash) Event {
	return Event{
		Kind:   EventPollSealed,
		PollId: id,
		Choice: &choice,
	}
}

func (e Event) Serialize() ([]byte, error) {
	return common.EncodeJSONValue(e)
}

// saveEvent assigns the next sequence number and stores the event.
func saveEvent(st *storage.LevelDBBackend, e *Event) error {
	var seq uint64
	if err := getUint64(st, KeyEventCounter, &seq); err != nil {
		return err
	}

	next, err := common.SafeAddUint64(seq, 1)
	if err != nil {
		return err
	}
	e.Seq = next

	if err := st.Put(KeyEventCounter, next); err != nil {
		return err
	}

	return st.New(GetEventKey(e.Seq), e)
}

// publishEvent lets the subscribers of `observer.LedgerObserver` know about
// a committed event.
func publishEvent(e Event) {
	id := strconv.FormatUint(e.PollId, 10)

	observer.LedgerObserver.Trigger(
		observer.NewEvent(observer.ResourceEvent, observer.ConditionAll, "").String(),
		e,
	)
	observer.LedgerObserver.Trigger(
		observer.NewEvent(observer.ResourceEvent, observer.ConditionKind, string(e.Kind)).String(),
		e,
	)
	observer.LedgerObserver.Trigger(
		observer.NewEvent(observer.ResourcePoll, observer.ConditionID, id).String(),
		e,
	)
}
