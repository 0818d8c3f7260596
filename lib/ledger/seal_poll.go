package ledger

import (
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/storage"
)

//
// SealPoll sets the choice of an expired poll from its tallies.
//
// The declared options are walked in order. An option counted more than
// any before it becomes the choice; an option counted as much as the best
// so far resets the choice to undecided. The first option is compared
// against zero, so a poll nobody responded to stays undecided.
//
// Anybody can seal; sealing again recomputes the choice.
//
func (l *Ledger) SealPoll(pollId uint64) (common.Hash, error) {
	event, err := l.apply(OperationSealPoll, func(st *storage.LevelDBBackend) (Event, error) {
		return l.sealPoll(st, pollId)
	})
	if err != nil {
		return common.Hash{}, err
	}

	choice := *event.Choice
	metrics.Ledger.AddPollSealed(choice != l.undecided)

	l.log.Debug("poll sealed", "id", pollId, "choice", choice)

	return choice, nil
}

func (l *Ledger) sealPoll(st *storage.LevelDBBackend, pollId uint64) (Event, error) {
	poll, err := l.getPoll(st, pollId)
	if err != nil {
		return Event{}, err
	}

	now := l.clock.Now()
	if !poll.IsSealableAt(now) {
		return Event{}, errors.PollStillActive.Clone().
			SetData("id", pollId).
			SetData("expiration", poll.Expiration)
	}

	var best uint64
	choice := poll.Choice
	for _, h := range poll.OptionHashes {
		count, err := l.getTally(st, pollId, h)
		if err != nil {
			return Event{}, err
		}

		if count > best {
			best = count
			choice = h
		} else if count == best {
			choice = l.undecided
		}
	}

	poll.Choice = choice
	if err := st.Set(GetPollKey(pollId), poll); err != nil {
		return Event{}, err
	}

	return NewPollSealedEvent(pollId, choice), nil
}
