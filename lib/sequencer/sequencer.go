package sequencer

import (
	"context"
	"sync"
	"time"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/metrics"
)

var log logging.Logger = logging.New("module", "sequencer")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

type result struct {
	value interface{}
	err   error
}

type request struct {
	ctx    context.Context
	op     Operation
	result chan result
}

//
// Sequencer applies the operations to the ledger one by one, in the order
// they were queued, from a single goroutine.
//
type Sequencer struct {
	ledger *ledger.Ledger
	queue  chan *request

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	log logging.Logger
}

func NewSequencer(l *ledger.Ledger, queueSize int) *Sequencer {
	if queueSize < 0 {
		queueSize = 0
	}

	return &Sequencer{
		ledger: l,
		queue:  make(chan *request, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    log.New(logging.Ctx{"queue": queueSize}),
	}
}

func (s *Sequencer) Ledger() *ledger.Ledger {
	return s.ledger
}

//
// Run applies the queued operations until `Stop` is called. It must be
// called once.
//
func (s *Sequencer) Run() error {
	defer close(s.done)

	s.log.Debug("sequencer started")
	for {
		// stop wins over a non-empty queue
		select {
		case <-s.stop:
			s.log.Debug("sequencer stopped", "pending", len(s.queue))
			return nil
		default:
		}

		select {
		case <-s.stop:
			s.log.Debug("sequencer stopped", "pending", len(s.queue))
			return nil
		case req := <-s.queue:
			metrics.Sequencer.AddQueueSize(-1)
			s.apply(req)
		}
	}
}

func (s *Sequencer) apply(req *request) {
	// the caller gave up while it was queued
	if err := req.ctx.Err(); err != nil {
		req.result <- result{err: err}
		return
	}

	begin := time.Now()
	value, err := req.op.Apply(s.ledger)
	metrics.Sequencer.ObserveApplyDuration(begin, req.op.Name())

	req.result <- result{value: value, err: err}
}

//
// Stop makes `Run` return once the operation being applied is done. The
// operations still queued are not applied; their callers get
// `errors.SequencerStopped`.
//
func (s *Sequencer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

//
// Apply queues `op` and waits for its result.
//
// When `ctx` is done before `op` is applied, `op` is skipped and the
// context error is returned. When `ctx` is done while `op` is being
// applied, the context error is returned but `op` may still take effect.
//
func (s *Sequencer) Apply(ctx context.Context, op Operation) (interface{}, error) {
	req := &request{ctx: ctx, op: op, result: make(chan result, 1)}

	select {
	case <-s.stop:
		return nil, errors.SequencerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	case s.queue <- req:
		metrics.Sequencer.AddQueueSize(1)
	}

	select {
	case r := <-req.result:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		select {
		case r := <-req.result:
			return r.value, r.err
		default:
			return nil, errors.SequencerStopped
		}
	}
}

func (s *Sequencer) CreatePoll(ctx context.Context, op CreatePoll) (uint64, error) {
	v, err := s.Apply(ctx, op)
	if err != nil {
		return 0, err
	}

	return v.(uint64), nil
}

func (s *Sequencer) RecordResponse(ctx context.Context, op RecordResponse) error {
	_, err := s.Apply(ctx, op)
	return err
}

func (s *Sequencer) SealPoll(ctx context.Context, op SealPoll) (common.Hash, error) {
	v, err := s.Apply(ctx, op)
	if err != nil {
		return common.Hash{}, err
	}

	return v.(common.Hash), nil
}
