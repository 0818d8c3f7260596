package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/network/api/resource"
	"boscoin.io/feedback/lib/sequencer"
)

var log logging.Logger = logging.New("module", "api")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

//
// NetworkHandlerAPI serves the poll ledger. Writes go thru the sequencer,
// reads go to the ledger directly.
//
type NetworkHandlerAPI struct {
	sequencer *sequencer.Sequencer
	ledger    *ledger.Ledger
	networkID []byte
}

func NewNetworkHandlerAPI(s *sequencer.Sequencer, networkID []byte) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		sequencer: s,
		ledger:    s.Ledger(),
		networkID: networkID,
	}
}

func (api NetworkHandlerAPI) newPoll(p ledger.Poll) *resource.Poll {
	return resource.NewPoll(p, p.Choice.Equal(api.ledger.Undecided()))
}

func parseID(r *http.Request, key string) (uint64, error) {
	s := mux.Vars(r)[key]
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.BadRequestParameter.Clone().SetData(key, s)
	}

	return id, nil
}
