package clock

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"boscoin.io/feedback/lib/common"
)

// Moment is the number of milliseconds since the unix epoch.
type Moment uint64

// Duration is a span of milliseconds.
type Duration uint64

//
// Add returns `m + d`.
//
// It fails with `errors.OverflowError` when the sum does not fit in a
// `Moment`, the same way the poll expiration has to fail.
//
func (m Moment) Add(d Duration) (Moment, error) {
	n, err := common.SafeAddUint64(uint64(m), uint64(d))
	if err != nil {
		return m, err
	}

	return Moment(n), nil
}

func (m Moment) Time() time.Time {
	return time.Unix(0, 0).Add(time.Duration(m) * time.Millisecond).UTC()
}

func (m Moment) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

func MomentFromTime(t time.Time) Moment {
	if t.Before(time.Unix(0, 0)) {
		return 0
	}
	return Moment(t.UnixNano() / int64(time.Millisecond))
}

func DurationFromTime(d time.Duration) Duration {
	if d < 0 {
		return 0
	}
	return Duration(d / time.Millisecond)
}

// Clock is the only source of "now" for the ledger.
type Clock interface {
	Now() Moment
}

// started carries the monotonic reading every later "now" is measured from.
var started = time.Now()

// monotonicNow is the wall time at `started` moved forward by the monotonic
// time elapsed since, so stepping the system clock does not move it back.
func monotonicNow() time.Time {
	return started.Add(time.Since(started))
}

// SystemClock never goes backwards, even when the wall clock is stepped.
type SystemClock struct{}

func (SystemClock) Now() Moment {
	return MomentFromTime(monotonicNow())
}

// ManualClock only moves when it is told to.
type ManualClock struct {
	sync.RWMutex
	now Moment
}

func NewManualClock(now Moment) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() Moment {
	c.RLock()
	defer c.RUnlock()

	return c.now
}

func (c *ManualClock) Set(now Moment) {
	c.Lock()
	defer c.Unlock()

	c.now = now
}

func (c *ManualClock) Advance(d Duration) {
	c.Lock()
	defer c.Unlock()

	c.now += Moment(d)
}

//
// NewClockFromString parses the clock flag of the node.
//
//  * "system" or "": `SystemClock`
//  * "ntp://<host>": `NTPClock` against <host>
//
func NewClockFromString(s string) (Clock, error) {
	if len(s) < 1 || s == "system" {
		return SystemClock{}, nil
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid clock, %q", s)
	}

	switch parsed.Scheme {
	case "ntp":
		if len(parsed.Host) < 1 {
			return nil, errors.Errorf("ntp clock needs host, %q", s)
		}
		return NewNTPClock(parsed.Host), nil
	default:
		return nil, errors.Errorf("unknown clock, %q", s)
	}
}
