package client

import (
	"bytes"
	"encoding/json"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/ledger"
)

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Poll struct {
	Links struct {
		Self      Link `json:"self"`
		Responses Link `json:"responses"`
		Seal      Link `json:"seal"`
		Tally     Link `json:"tally"`
		Entry     Link `json:"entry"`
	} `json:"_links"`

	Id           uint64        `json:"id" yaml:"id"`
	Owner        string        `json:"owner" yaml:"owner"`
	Title        []byte        `json:"title" yaml:"title"`
	OptionHashes []common.Hash `json:"option_hashes" yaml:"option_hashes"`
	Choice       common.Hash   `json:"choice" yaml:"choice"`
	Undecided    bool          `json:"undecided" yaml:"undecided"`
	Expiration   clock.Moment  `json:"expiration" yaml:"expiration"`
}

type Tally struct {
	Links struct {
		Self Link `json:"self"`
		Poll Link `json:"poll"`
	} `json:"_links"`

	PollId uint64 `json:"poll_id" yaml:"poll_id"`
	Hash   string `json:"hash" yaml:"hash"`
	Count  uint64 `json:"count" yaml:"count"`
}

type Entry struct {
	Links struct {
		Self Link `json:"self"`
		Poll Link `json:"poll"`
	} `json:"_links"`

	PollId    uint64 `json:"poll_id" yaml:"poll_id"`
	Account   string `json:"account" yaml:"account"`
	Responded bool   `json:"responded" yaml:"responded"`
}

type Counter struct {
	Counter uint64 `json:"counter" yaml:"counter"`
}

type Event struct {
	Links struct {
		Self Link `json:"self"`
		Poll Link `json:"poll"`
	} `json:"_links"`

	Seq        uint64           `json:"seq" yaml:"seq"`
	Kind       ledger.EventKind `json:"kind" yaml:"kind"`
	PollId     uint64           `json:"poll_id" yaml:"poll_id"`
	Options    [][]byte         `json:"options,omitempty" yaml:"options,omitempty"`
	Expiration clock.Moment     `json:"expiration,omitempty" yaml:"expiration,omitempty"`
	OptionHash *common.Hash     `json:"option_hash,omitempty" yaml:"option_hash,omitempty"`
	Choice     *common.Hash     `json:"choice,omitempty" yaml:"choice,omitempty"`
}

type PageLinks struct {
	Self Link `json:"self"`
	Next Link `json:"next"`
	Prev Link `json:"prev"`
}

// isObject is true for the single embedded resource, which hal renders
// as an object instead of an array.
func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

type Polls []Poll

func (p *Polls) UnmarshalJSON(b []byte) error {
	if isObject(b) {
		var one Poll
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*p = Polls{one}
		return nil
	}

	return json.Unmarshal(b, (*[]Poll)(p))
}

type Events []Event

func (e *Events) UnmarshalJSON(b []byte) error {
	if isObject(b) {
		var one Event
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*e = Events{one}
		return nil
	}

	return json.Unmarshal(b, (*[]Event)(e))
}

type PollsPage struct {
	Links    PageLinks `json:"_links"`
	Embedded struct {
		Records Polls `json:"records"`
	} `json:"_embedded"`
}

type EventsPage struct {
	Links    PageLinks `json:"_links"`
	Embedded struct {
		Records Events `json:"records"`
	} `json:"_embedded"`
}
