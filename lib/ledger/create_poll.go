package ledger

import (
	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/storage"
)

//
// CreatePoll stores a new poll and returns its id.
//
// The option hashes keep the order and the duplicates of `options`; the
// poll expires `openFor` after the current moment of the ledger clock.
// Both the new id and the expiration are checked for overflow before
// anything is written, unless `Config.LegacyCounterBump` is set: then the
// id counter is bumped even when the expiration overflows.
//
func (l *Ledger) CreatePoll(caller string, title []byte, options [][]byte, openFor clock.Duration) (uint64, error) {
	if len(caller) < 1 {
		return 0, errors.InvalidAccount
	}

	event, err := l.apply(OperationCreatePoll, func(st *storage.LevelDBBackend) (Event, error) {
		return l.createPoll(st, caller, title, options, openFor)
	})
	if err != nil {
		return 0, err
	}

	metrics.Ledger.AddPollCreated()
	metrics.Ledger.SetPollCounter(event.PollId)

	l.log.Debug(
		"poll created",
		"id", event.PollId,
		"caller", caller,
		"options", len(options),
		"expiration", event.Expiration,
	)

	return event.PollId, nil
}

func (l *Ledger) createPoll(st *storage.LevelDBBackend, caller string, title []byte, options [][]byte, openFor clock.Duration) (Event, error) {
	var counter uint64
	if err := getUint64(st, KeyPollCounter, &counter); err != nil {
		return Event{}, err
	}

	id, err := common.SafeAddUint64(counter, 1)
	if err != nil {
		return Event{}, err
	}

	if l.config.LegacyCounterBump {
		if err := st.Put(KeyPollCounter, id); err != nil {
			return Event{}, err
		}
	}

	now := l.clock.Now()

	hashes := make([]common.Hash, 0, len(options))
	for _, option := range options {
		hashes = append(hashes, l.hasher.Hash(option))
	}

	expiration, err := now.Add(openFor)
	if err != nil {
		if l.config.LegacyCounterBump {
			return Event{}, partialCommit{err: err}
		}
		return Event{}, err
	}

	if !l.config.LegacyCounterBump {
		if err := st.Put(KeyPollCounter, id); err != nil {
			return Event{}, err
		}
	}

	poll := Poll{
		Id:           id,
		Owner:        caller,
		Title:        title,
		OptionHashes: hashes,
		Choice:       l.undecided,
		Expiration:   expiration,
	}
	if err := st.New(GetPollKey(id), poll); err != nil {
		return Event{}, err
	}

	return NewPollCreatedEvent(id, options, expiration), nil
}
