package sequencer

import (
	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/ledger"
)

// Operation is one write to the ledger.
type Operation interface {
	Name() string
	Apply(*ledger.Ledger) (interface{}, error)
}

type CreatePoll struct {
	Caller  string         `json:"caller"`
	Title   []byte         `json:"title"`
	Options [][]byte       `json:"options"`
	OpenFor clock.Duration `json:"open_for"`
}

func (o CreatePoll) Name() string {
	return ledger.OperationCreatePoll
}

// Apply returns the new poll id.
func (o CreatePoll) Apply(l *ledger.Ledger) (interface{}, error) {
	return l.CreatePoll(o.Caller, o.Title, o.Options, o.OpenFor)
}

type RecordResponse struct {
	Caller string `json:"caller"`
	PollId uint64 `json:"poll_id"`
	Option []byte `json:"option"`
}

func (o RecordResponse) Name() string {
	return ledger.OperationRecordResponse
}

func (o RecordResponse) Apply(l *ledger.Ledger) (interface{}, error) {
	return nil, l.RecordResponse(o.Caller, o.PollId, o.Option)
}

type SealPoll struct {
	PollId uint64 `json:"poll_id"`
}

func (o SealPoll) Name() string {
	return ledger.OperationSealPoll
}

// Apply returns the choice of the poll.
func (o SealPoll) Apply(l *ledger.Ledger) (interface{}, error) {
	choice, err := l.SealPoll(o.PollId)
	if err != nil {
		return common.Hash{}, err
	}

	return choice, nil
}
