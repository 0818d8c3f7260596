package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/common"
)

var log logging.Logger = logging.New("module", "clock")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

const DefaultNTPSyncInterval = 10 * time.Minute

type ntpQueryFunc func(host string) (time.Duration, error)

func queryNTPOffset(host string) (time.Duration, error) {
	response, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	if err := response.Validate(); err != nil {
		return 0, err
	}

	return response.ClockOffset, nil
}

//
// NTPClock is the local clock corrected by the offset reported by a ntp
// server. The offset is refreshed by `Sync`; until the first successful
// sync, the local clock is used as is.
//
// A negative offset never moves `Now` backwards; the clock holds at the last
// returned moment until the corrected time catches up.
//
type NTPClock struct {
	sync.RWMutex

	host   string
	offset time.Duration
	last   Moment
	query  ntpQueryFunc
}

func NewNTPClock(host string) *NTPClock {
	return &NTPClock{
		host:  host,
		query: queryNTPOffset,
	}
}

func (c *NTPClock) Now() Moment {
	c.Lock()
	defer c.Unlock()

	now := MomentFromTime(monotonicNow().Add(c.offset))
	if now < c.last {
		return c.last
	}
	c.last = now

	return now
}

func (c *NTPClock) Offset() time.Duration {
	c.RLock()
	defer c.RUnlock()

	return c.offset
}

func (c *NTPClock) Sync() error {
	offset, err := c.query(c.host)
	if err != nil {
		log.Warn("failed to query ntp server", "host", c.host, "error", err)
		return err
	}

	c.Lock()
	c.offset = offset
	c.Unlock()

	log.Debug("clock offset updated", "host", c.host, "offset", offset)

	return nil
}

// Run syncs every `interval` until `stop` is closed.
func (c *NTPClock) Run(interval time.Duration, stop <-chan struct{}) {
	c.Sync()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sync()
		case <-stop:
			return
		}
	}
}
