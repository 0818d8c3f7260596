package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/common/observer"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/storage"
)

var (
	optionA = []byte{1}
	optionB = []byte{2}
)

func prepareLedger(config common.Config) (*Ledger, *clock.ManualClock, *storage.LevelDBBackend) {
	st := storage.NewTestStorage()
	c := clock.NewManualClock(0)

	return NewLedger(st, c, config), c, st
}

func newTestAccounts(n int) (accounts []string) {
	for i := 0; i < n; i++ {
		accounts = append(accounts, keypair.Random().Address())
	}

	return
}

func TestCreatePoll(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	owner := newTestAccounts(1)[0]
	title := []byte{123}

	id, err := l.CreatePoll(owner, title, [][]byte{optionA, optionA}, 240)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	counter, err := l.GetPollCounter()
	require.NoError(t, err)
	require.Equal(t, uint64(1), counter)

	poll, found, err := l.GetPoll(id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, title, poll.Title)
	require.Equal(t, owner, poll.Owner)
	require.Equal(t, []common.Hash{l.Hash(optionA), l.Hash(optionA)}, poll.OptionHashes)
	require.Equal(t, clock.Moment(240), poll.Expiration)
	require.Equal(t, l.Undecided(), poll.Choice)
}

func TestCreatePollIDsAreContiguous(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	owner := newTestAccounts(1)[0]
	for i := uint64(1); i <= 20; i++ {
		c.Advance(7)
		id, err := l.CreatePoll(owner, nil, nil, clock.Duration(i))
		require.NoError(t, err)
		require.Equal(t, i, id)
	}

	counter, _ := l.GetPollCounter()
	require.Equal(t, uint64(20), counter)
}

func TestCreatePollWithoutOptions(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	id, err := l.CreatePoll(newTestAccounts(1)[0], []byte("empty"), nil, 10)
	require.NoError(t, err)

	poll, _, _ := l.GetPoll(id)
	require.Empty(t, poll.OptionHashes)

	c.Set(11)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, l.Undecided(), choice)
}

func TestCreatePollInvalidAccount(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	_, err := l.CreatePoll("", nil, nil, 10)
	require.Equal(t, errors.InvalidAccount, err)

	counter, _ := l.GetPollCounter()
	require.Equal(t, uint64(0), counter)
}

func TestCreatePollCounterOverflow(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	require.NoError(t, st.Put(KeyPollCounter, uint64(math.MaxUint64)))

	_, err := l.CreatePoll(newTestAccounts(1)[0], nil, nil, 10)
	require.Equal(t, errors.OverflowError, err)

	counter, err := l.GetPollCounter()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), counter)
}

func TestCreatePollExpirationOverflow(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	owner := newTestAccounts(1)[0]
	c.Set(10)

	_, err := l.CreatePoll(owner, nil, [][]byte{optionA}, clock.Duration(math.MaxUint64))
	require.Equal(t, errors.OverflowError, err)

	// nothing was written
	counter, _ := l.GetPollCounter()
	require.Equal(t, uint64(0), counter)

	_, found, err := l.GetPoll(1)
	require.NoError(t, err)
	require.False(t, found)

	events, err := l.Events(nil)
	require.NoError(t, err)
	require.Empty(t, events)

	id, err := l.CreatePoll(owner, nil, [][]byte{optionA}, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
}

func TestCreatePollExpirationOverflowLegacyCounterBump(t *testing.T) {
	config := common.NewTestConfig()
	config.LegacyCounterBump = true

	l, c, st := prepareLedger(config)
	defer st.Close()

	owner := newTestAccounts(1)[0]
	c.Set(10)

	_, err := l.CreatePoll(owner, nil, [][]byte{optionA}, clock.Duration(math.MaxUint64))
	require.Equal(t, errors.OverflowError, err)

	// the id is burnt, but no poll is stored for it
	counter, _ := l.GetPollCounter()
	require.Equal(t, uint64(1), counter)

	_, found, _ := l.GetPoll(1)
	require.False(t, found)

	events, _ := l.Events(nil)
	require.Empty(t, events)

	id, err := l.CreatePoll(owner, nil, [][]byte{optionA}, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)
}

func TestRecordResponse(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(2)
	id, err := l.CreatePoll(accounts[0], []byte{123}, [][]byte{optionA, optionA}, 240)
	require.NoError(t, err)

	responded, err := l.HasResponded(accounts[1], id)
	require.NoError(t, err)
	require.False(t, responded)

	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))

	responded, err = l.HasResponded(accounts[1], id)
	require.NoError(t, err)
	require.True(t, responded)

	tally, err := l.GetTally(id, l.Hash(optionA))
	require.NoError(t, err)
	require.Equal(t, uint64(1), tally)
}

func TestRecordResponseUnknownPoll(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(2)

	err := l.RecordResponse(accounts[1], 1, optionA)
	require.True(t, errors.Is(err, errors.PollNotFound))

	_, err = l.CreatePoll(accounts[0], nil, [][]byte{optionA}, 240)
	require.NoError(t, err)

	err = l.RecordResponse(accounts[1], 2, optionA)
	require.True(t, errors.Is(err, errors.PollNotFound))

	err = l.RecordResponse(accounts[1], 0, optionA)
	require.True(t, errors.Is(err, errors.PollNotFound))
}

func TestRecordResponseTwice(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(3)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA, optionB}, 240)

	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))

	err := l.RecordResponse(accounts[1], id, optionA)
	require.True(t, errors.Is(err, errors.AlreadyResponded))
	err = l.RecordResponse(accounts[1], id, optionB)
	require.True(t, errors.Is(err, errors.AlreadyResponded))

	require.NoError(t, l.RecordResponse(accounts[2], id, optionA))

	tally, _ := l.GetTally(id, l.Hash(optionA))
	require.Equal(t, uint64(2), tally)
	tally, _ = l.GetTally(id, l.Hash(optionB))
	require.Equal(t, uint64(0), tally)
}

func TestRecordResponseCheckOrder(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(2)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA}, 10)
	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))

	// responded and expired: the entry is checked first
	c.Set(100)
	err := l.RecordResponse(accounts[1], id, optionA)
	require.True(t, errors.Is(err, errors.AlreadyResponded))
}

func TestRecordResponseExpiration(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(4)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA}, 120)

	c.Set(119)
	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))

	c.Set(120)
	err := l.RecordResponse(accounts[2], id, optionA)
	require.True(t, errors.Is(err, errors.PollExpired))

	c.Set(129)
	err = l.RecordResponse(accounts[3], id, optionA)
	require.True(t, errors.Is(err, errors.PollExpired))

	responded, _ := l.HasResponded(accounts[3], id)
	require.False(t, responded)

	tally, _ := l.GetTally(id, l.Hash(optionA))
	require.Equal(t, uint64(1), tally)
}

func TestRecordResponseUndeclaredOption(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(4)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA, optionB}, 240)

	undeclared := []byte("not an option")
	require.NoError(t, l.RecordResponse(accounts[1], id, undeclared))
	require.NoError(t, l.RecordResponse(accounts[2], id, undeclared))
	require.NoError(t, l.RecordResponse(accounts[3], id, optionB))

	tally, _ := l.GetTally(id, l.Hash(undeclared))
	require.Equal(t, uint64(2), tally)

	c.Set(241)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, l.Hash(optionB), choice)
}

func TestRecordResponseTallyOverflow(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(2)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA}, 240)

	require.NoError(t, st.Put(GetTallyKey(id, l.Hash(optionA)), uint64(math.MaxUint64)))

	err := l.RecordResponse(accounts[1], id, optionA)
	require.Equal(t, errors.OverflowError, err)

	responded, _ := l.HasResponded(accounts[1], id)
	require.False(t, responded)

	tally, _ := l.GetTally(id, l.Hash(optionA))
	require.Equal(t, uint64(math.MaxUint64), tally)
}

func TestRecordResponseTallyRoundTrip(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(11)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA, optionB}, 240)

	for _, account := range accounts[1:] {
		require.NoError(t, l.RecordResponse(account, id, optionB))
	}

	tally, _ := l.GetTally(id, l.Hash(optionB))
	require.Equal(t, uint64(10), tally)
}

func TestSealPollStillActive(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	id, _ := l.CreatePoll(newTestAccounts(1)[0], nil, [][]byte{optionA}, 240)

	for _, now := range []clock.Moment{0, 239, 240} {
		c.Set(now)
		_, err := l.SealPoll(id)
		require.True(t, errors.Is(err, errors.PollStillActive), "now=%d", now)
	}

	poll, _, _ := l.GetPoll(id)
	require.Equal(t, l.Undecided(), poll.Choice)
}

func TestSealPollUnknownPoll(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	_, err := l.SealPoll(1)
	require.True(t, errors.Is(err, errors.PollNotFound))
}

func TestSealPollPopularChoice(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(3)
	id, _ := l.CreatePoll(accounts[0], []byte{123}, [][]byte{optionA, optionB}, 240)

	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))
	require.NoError(t, l.RecordResponse(accounts[2], id, optionA))

	c.Set(241)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, l.Hash(optionA), choice)

	poll, _, _ := l.GetPoll(id)
	require.Equal(t, l.Hash(optionA), poll.Choice)
	require.Equal(t, []byte{123}, poll.Title)
	require.Equal(t, clock.Moment(240), poll.Expiration)

	// sealing again gives the same choice
	c.Set(1000)
	choice, err = l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, l.Hash(optionA), choice)
}

func TestSealPollDraw(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(3)
	id, _ := l.CreatePoll(accounts[0], []byte{123}, [][]byte{optionA, optionB}, 240)

	require.NoError(t, l.RecordResponse(accounts[1], id, optionA))
	require.NoError(t, l.RecordResponse(accounts[2], id, optionB))

	c.Set(241)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, UndecidedChoice(common.DefaultHasher), choice)

	poll, _, _ := l.GetPoll(id)
	require.Equal(t, l.Undecided(), poll.Choice)
}

func TestSealPollNoResponses(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	id, _ := l.CreatePoll(newTestAccounts(1)[0], nil, [][]byte{optionA, optionB}, 240)

	c.Set(241)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, l.Undecided(), choice)
}

func TestSealPollTieBreak(t *testing.T) {
	optionC := []byte{3}

	cases := []struct {
		name     string
		options  [][]byte
		votes    [][]byte
		expected []byte // nil for undecided
	}{
		{"leader first", [][]byte{optionA, optionB}, [][]byte{optionA, optionA, optionB}, optionA},
		{"leader last", [][]byte{optionA, optionB, optionC}, [][]byte{optionA, optionB, optionC, optionC}, optionC},
		// a later strictly bigger count restores a choice after a tie
		{"tie then leader", [][]byte{optionA, optionB, optionC}, [][]byte{optionA, optionB, optionC, optionC, optionC}, optionC},
		{"leader then tie", [][]byte{optionA, optionB, optionC}, [][]byte{optionA, optionA, optionB, optionC, optionC}, nil},
		// a smaller count after the leader does not touch the choice
		{"leader then smaller", [][]byte{optionA, optionB}, [][]byte{optionA, optionA, optionB}, optionA},
		// the first option with zero responses ties the initial zero
		{"zero then leader", [][]byte{optionA, optionB}, [][]byte{optionB}, optionB},
		{"leader then zero", [][]byte{optionA, optionB}, [][]byte{optionA}, optionA},
		// duplicated option ties with itself
		{"duplicated leader", [][]byte{optionA, optionA}, [][]byte{optionA}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, c, st := prepareLedger(common.NewTestConfig())
			defer st.Close()

			accounts := newTestAccounts(len(tc.votes) + 1)
			id, err := l.CreatePoll(accounts[0], nil, tc.options, 10)
			require.NoError(t, err)

			for i, vote := range tc.votes {
				require.NoError(t, l.RecordResponse(accounts[i+1], id, vote))
			}

			c.Set(11)
			choice, err := l.SealPoll(id)
			require.NoError(t, err)

			if tc.expected == nil {
				require.Equal(t, l.Undecided(), choice)
			} else {
				require.Equal(t, l.Hash(tc.expected), choice)
			}
		})
	}
}

func TestLedgerEvents(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	accounts := newTestAccounts(2)
	c.Set(5)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{optionA, optionB}, 10)
	require.NoError(t, l.RecordResponse(accounts[1], id, optionB))

	// rejected operations emit nothing
	require.Error(t, l.RecordResponse(accounts[1], id, optionB))
	_, err := l.SealPoll(id)
	require.Error(t, err)

	c.Set(16)
	_, err = l.SealPoll(id)
	require.NoError(t, err)

	events, err := l.Events(nil)
	require.NoError(t, err)
	require.Equal(t, 3, len(events))

	require.Equal(t, uint64(1), events[0].Seq)
	require.Equal(t, EventPollCreated, events[0].Kind)
	require.Equal(t, id, events[0].PollId)
	require.Equal(t, [][]byte{optionA, optionB}, events[0].Options)
	require.Equal(t, clock.Moment(15), events[0].Expiration)

	require.Equal(t, uint64(2), events[1].Seq)
	require.Equal(t, EventResponseRecorded, events[1].Kind)
	require.Equal(t, l.Hash(optionB), *events[1].OptionHash)

	require.Equal(t, uint64(3), events[2].Seq)
	require.Equal(t, EventPollSealed, events[2].Kind)
	require.Equal(t, l.Hash(optionB), *events[2].Choice)

	event, err := l.GetEvent(2)
	require.NoError(t, err)
	require.Equal(t, events[1], event)

	_, err = l.GetEvent(4)
	require.Equal(t, errors.StorageRecordDoesNotExist, err)

	// listing after a cursor, in reverse
	events, err = l.Events(storage.NewDefaultListOptions(true, []byte("3"), 1))
	require.NoError(t, err)
	require.Equal(t, 1, len(events))
	require.Equal(t, uint64(2), events[0].Seq)

	_, err = l.Events(storage.NewDefaultListOptions(false, []byte("findme"), 1))
	require.True(t, errors.Is(err, errors.BadRequestParameter))
}

func TestLedgerEventObserver(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	id, _ := l.CreatePoll(newTestAccounts(1)[0], nil, [][]byte{optionA}, 10)

	triggered := make(chan Event, 1)
	observerFunc := func(args ...interface{}) {
		triggered <- args[0].(Event)
	}

	name := observer.NewEvent(observer.ResourceEvent, observer.ConditionKind, string(EventPollSealed)).String()
	observer.LedgerObserver.On(name, observerFunc)
	defer observer.LedgerObserver.Off(name, observerFunc)

	c.Set(11)
	_, err := l.SealPoll(id)
	require.NoError(t, err)

	select {
	case e := <-triggered:
		require.Equal(t, EventPollSealed, e.Kind)
		require.Equal(t, id, e.PollId)
		require.Equal(t, l.Undecided(), *e.Choice)
	case <-time.After(time.Second):
		t.Error("event was not triggered")
	}
}

func TestLedgerPolls(t *testing.T) {
	l, _, st := prepareLedger(common.NewTestConfig())
	defer st.Close()

	owner := newTestAccounts(1)[0]
	for i := 0; i < 12; i++ {
		_, err := l.CreatePoll(owner, []byte{byte(i)}, nil, 10)
		require.NoError(t, err)
	}

	polls, err := l.Polls(nil)
	require.NoError(t, err)
	require.Equal(t, 12, len(polls))
	for i, poll := range polls {
		require.Equal(t, uint64(i+1), poll.Id)
	}

	// ids above 9 must stay ordered
	polls, err = l.Polls(storage.NewDefaultListOptions(false, []byte("9"), 2))
	require.NoError(t, err)
	require.Equal(t, 2, len(polls))
	require.Equal(t, uint64(10), polls[0].Id)
	require.Equal(t, uint64(11), polls[1].Id)

	polls, err = l.Polls(storage.NewDefaultListOptions(true, nil, 3))
	require.NoError(t, err)
	require.Equal(t, []uint64{12, 11, 10}, []uint64{polls[0].Id, polls[1].Id, polls[2].Id})
}

func TestUndecidedChoice(t *testing.T) {
	b := common.EncodeUint64ToByteSlice(0)
	require.Equal(t, common.MakeHash(b[:]), UndecidedChoice(common.DefaultHasher))
	require.NotEqual(t, common.MakeHash(optionA), UndecidedChoice(common.DefaultHasher))
}

type sumHasher struct{}

func (sumHasher) Hash(b []byte) (h common.Hash) {
	for i, c := range b {
		h[i%common.HashLength] += c
	}
	return
}

func TestLedgerCustomHasher(t *testing.T) {
	l, c, st := prepareLedger(common.NewTestConfig())
	defer st.Close()
	l.SetHasher(sumHasher{})

	// 8 zero bytes sum to the zero hash
	require.Equal(t, common.Hash{}, l.Undecided())

	accounts := newTestAccounts(2)
	id, _ := l.CreatePoll(accounts[0], nil, [][]byte{{1, 1}, {2}}, 10)
	require.NoError(t, l.RecordResponse(accounts[1], id, []byte{2}))

	poll, _, _ := l.GetPoll(id)
	require.Equal(t, sumHasher{}.Hash([]byte{1, 1}), poll.OptionHashes[0])

	c.Set(11)
	choice, err := l.SealPoll(id)
	require.NoError(t, err)
	require.Equal(t, sumHasher{}.Hash([]byte{2}), choice)
}
