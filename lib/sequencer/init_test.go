package sequencer

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/common/test"
)

func init() {
	SetLogging(logging.LvlDebug, test.LogHandler())
}
