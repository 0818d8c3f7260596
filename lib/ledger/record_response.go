package ledger

import (
	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/storage"
)

type responseChecker struct {
	common.DefaultChecker

	ledger *Ledger
	st     *storage.LevelDBBackend

	Caller string
	PollId uint64
	Now    clock.Moment

	Poll Poll
}

var RecordResponseCheckerFuncs = []common.CheckerFunc{
	CheckPollExists,
	CheckNotResponded,
	CheckPollNotExpired,
}

func CheckPollExists(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*responseChecker)
	checker.Poll, err = checker.ledger.getPoll(checker.st, checker.PollId)

	return
}

func CheckNotResponded(c common.Checker, args ...interface{}) error {
	checker := c.(*responseChecker)

	responded, err := checker.ledger.hasResponded(checker.st, checker.Caller, checker.PollId)
	if err != nil {
		return err
	} else if responded {
		return errors.AlreadyResponded.Clone().
			SetData("id", checker.PollId).
			SetData("account", checker.Caller)
	}

	return nil
}

// CheckPollNotExpired accepts responses strictly before the expiration.
func CheckPollNotExpired(c common.Checker, args ...interface{}) error {
	checker := c.(*responseChecker)
	if checker.Poll.IsExpiredAt(checker.Now) {
		return errors.PollExpired.Clone().
			SetData("id", checker.PollId).
			SetData("expiration", checker.Poll.Expiration)
	}

	return nil
}

//
// RecordResponse counts the response of `caller` for `option` of the poll.
//
// `option` does not have to be one of the declared options of the poll;
// it is counted under its hash like any other, but can never be the
// choice of the poll.
//
func (l *Ledger) RecordResponse(caller string, pollId uint64, option []byte) error {
	if len(caller) < 1 {
		return errors.InvalidAccount
	}

	event, err := l.apply(OperationRecordResponse, func(st *storage.LevelDBBackend) (Event, error) {
		return l.recordResponse(st, caller, pollId, option)
	})
	if err != nil {
		return err
	}

	metrics.Ledger.AddResponseRecorded()

	l.log.Debug("response recorded", "id", pollId, "caller", caller, "hash", event.OptionHash)

	return nil
}

func (l *Ledger) recordResponse(st *storage.LevelDBBackend, caller string, pollId uint64, option []byte) (Event, error) {
	checker := &responseChecker{
		DefaultChecker: common.DefaultChecker{Funcs: RecordResponseCheckerFuncs},
		ledger:         l,
		st:             st,
		Caller:         caller,
		PollId:         pollId,
		Now:            l.clock.Now(),
	}
	if err := common.RunChecker(checker, nil); err != nil {
		return Event{}, err
	}

	h := l.hasher.Hash(option)

	count, err := l.getTally(st, pollId, h)
	if err != nil {
		return Event{}, err
	}
	if count, err = common.SafeAddUint64(count, 1); err != nil {
		return Event{}, err
	}

	if err := st.Put(GetTallyKey(pollId, h), count); err != nil {
		return Event{}, err
	}
	if err := st.Put(GetEntryKey(caller, pollId), true); err != nil {
		return Event{}, err
	}

	return NewResponseRecordedEvent(pollId, h), nil
}
