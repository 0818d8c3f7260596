package ledger

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/storage"
)

const (
	OperationCreatePoll     = "create-poll"
	OperationRecordResponse = "record-response"
	OperationSealPoll       = "seal-poll"
)

//
// Ledger is the poll state machine.
//
// All the state lives in the storage given to `NewLedger`; every operation
// is applied in its own storage transaction, so a failed operation leaves
// nothing behind. Operations are expected to be called one at a time, see
// `sequencer.Sequencer`.
//
type Ledger struct {
	st        *storage.LevelDBBackend
	clock     clock.Clock
	hasher    common.Hasher
	config    common.Config
	undecided common.Hash

	log logging.Logger
}

func NewLedger(st *storage.LevelDBBackend, c clock.Clock, config common.Config) *Ledger {
	l := &Ledger{
		st:     st,
		clock:  c,
		config: config,
		log:    log.New(logging.Ctx{"network": string(config.NetworkID)}),
	}
	l.SetHasher(common.DefaultHasher)

	return l
}

// SetHasher must be called before any operation; option hashes already
// stored are not migrated.
func (l *Ledger) SetHasher(hasher common.Hasher) {
	l.hasher = hasher
	l.undecided = UndecidedChoice(hasher)
}

func (l *Ledger) Hash(b []byte) common.Hash {
	return l.hasher.Hash(b)
}

func (l *Ledger) Undecided() common.Hash {
	return l.undecided
}

func (l *Ledger) Clock() clock.Clock {
	return l.clock
}

// partialCommit makes `apply` commit what the operation wrote before it
// failed.
type partialCommit struct {
	err error
}

func (p partialCommit) Error() string {
	return p.err.Error()
}

//
// apply runs `f` in a new transaction. On success the transaction is
// committed, the emitted event is stored and published. On failure
// everything `f` wrote is discarded.
//
func (l *Ledger) apply(operation string, f func(*storage.LevelDBBackend) (Event, error)) (Event, error) {
	ts, err := l.st.OpenTransaction()
	if err != nil {
		return Event{}, err
	}

	event, err := f(ts)
	if err == nil {
		err = saveEvent(ts, &event)
	}

	if err != nil {
		if p, ok := err.(partialCommit); ok {
			err = p.err
			if cerr := ts.Commit(); cerr != nil {
				l.log.Error("failed to commit", "operation", operation, "error", cerr)
				err = cerr
			}
		} else {
			ts.Discard()
		}

		l.log.Debug("operation rejected", "operation", operation, "error", err)
		if e, ok := err.(*errors.Error); ok {
			metrics.Ledger.AddRejected(operation, e.Code)
		}

		return Event{}, err
	}

	if err = ts.Commit(); err != nil {
		l.log.Error("failed to commit", "operation", operation, "error", err)
		return Event{}, err
	}

	publishEvent(event)

	return event, nil
}

func getUint64(st *storage.LevelDBBackend, key string, v *uint64) error {
	err := st.Get(key, v)
	if errors.Is(err, errors.StorageRecordDoesNotExist) {
		*v = 0
		return nil
	}

	return err
}

func (l *Ledger) getPoll(st *storage.LevelDBBackend, id uint64) (poll Poll, err error) {
	if err = st.Get(GetPollKey(id), &poll); err != nil {
		if errors.Is(err, errors.StorageRecordDoesNotExist) {
			err = errors.PollNotFound.Clone().SetData("id", id)
		}
	}

	return
}

func (l *Ledger) hasResponded(st *storage.LevelDBBackend, account string, id uint64) (bool, error) {
	var responded bool
	err := st.Get(GetEntryKey(account, id), &responded)
	if errors.Is(err, errors.StorageRecordDoesNotExist) {
		return false, nil
	}

	return responded, err
}

func (l *Ledger) getTally(st *storage.LevelDBBackend, id uint64, h common.Hash) (uint64, error) {
	var count uint64
	err := getUint64(st, GetTallyKey(id, h), &count)

	return count, err
}
