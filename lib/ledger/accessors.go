package ledger

import (
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/storage"
)

// GetPollCounter returns the last assigned poll id, 0 before the first
// poll.
func (l *Ledger) GetPollCounter() (uint64, error) {
	var counter uint64
	err := getUint64(l.st, KeyPollCounter, &counter)

	return counter, err
}

// GetPoll returns false when there is no poll for `id`.
func (l *Ledger) GetPoll(id uint64) (Poll, bool, error) {
	poll, err := l.getPoll(l.st, id)
	if errors.Is(err, errors.PollNotFound) {
		return Poll{}, false, nil
	} else if err != nil {
		return Poll{}, false, err
	}

	return poll, true, nil
}

func (l *Ledger) HasResponded(account string, id uint64) (bool, error) {
	return l.hasResponded(l.st, account, id)
}

// GetTally is 0 for any poll or option nobody responded to.
func (l *Ledger) GetTally(id uint64, h common.Hash) (uint64, error) {
	return l.getTally(l.st, id, h)
}

//
// Polls lists the polls ordered by id. The cursor of `options` is a poll
// id; the listing starts right after it.
//
func (l *Ledger) Polls(options storage.ListOptions) (polls []Poll, err error) {
	err = l.walk(PrefixPoll, GetPollKey, options, func(b []byte) error {
		var poll Poll
		if err := common.DecodeJSONValue(b, &poll); err != nil {
			return err
		}
		polls = append(polls, poll)
		return nil
	})

	return
}

// Events lists the stored events ordered by `Seq`. The cursor of `options`
// is a sequence number.
func (l *Ledger) Events(options storage.ListOptions) (events []Event, err error) {
	err = l.walk(PrefixEvent, GetEventKey, options, func(b []byte) error {
		var event Event
		if err := common.DecodeJSONValue(b, &event); err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})

	return
}

func (l *Ledger) walk(prefix string, keyFunc func(uint64) string, options storage.ListOptions, f func([]byte) error) error {
	var iterOptions storage.ListOptions
	if options != nil {
		cursor, err := cursorToKey(options.Cursor(), keyFunc)
		if err != nil {
			return err
		}
		iterOptions = storage.NewDefaultListOptions(options.Reverse(), cursor, options.Limit())
	}

	iterFunc, closeFunc := l.st.GetIterator(prefix, iterOptions)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}
		if err := f(item.Value); err != nil {
			return errors.StorageCoreError.Clone().SetData("key", string(item.Key))
		}
	}

	return nil
}

func (l *Ledger) GetEvent(seq uint64) (event Event, err error) {
	err = l.st.Get(GetEventKey(seq), &event)
	return
}
