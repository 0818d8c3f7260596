package api

import (
	"net/http"

	"github.com/gorilla/rpc"
	"github.com/gorilla/rpc/json"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/ledger"
)

const JSONRPCServiceName = "Ledger"

// LedgerService exposes the read accessors of the ledger over JSON-RPC,
// like `Ledger.GetPoll`.
type LedgerService struct {
	ledger *ledger.Ledger
}

type GetPollCounterArgs struct{}

type GetPollArgs struct {
	Id uint64 `json:"id"`
}

type GetPollResult struct {
	Poll  ledger.Poll `json:"poll"`
	Found bool        `json:"found"`
}

type HasRespondedArgs struct {
	Id      uint64 `json:"id"`
	Account string `json:"account"`
}

type GetTallyArgs struct {
	Id   uint64      `json:"id"`
	Hash common.Hash `json:"hash"`
}

func (s *LedgerService) GetPollCounter(r *http.Request, args *GetPollCounterArgs, result *uint64) (err error) {
	*result, err = s.ledger.GetPollCounter()
	return
}

func (s *LedgerService) GetPoll(r *http.Request, args *GetPollArgs, result *GetPollResult) (err error) {
	result.Poll, result.Found, err = s.ledger.GetPoll(args.Id)
	return
}

func (s *LedgerService) HasResponded(r *http.Request, args *HasRespondedArgs, result *bool) (err error) {
	*result, err = s.ledger.HasResponded(args.Account, args.Id)
	return
}

func (s *LedgerService) GetTally(r *http.Request, args *GetTallyArgs, result *uint64) (err error) {
	*result, err = s.ledger.GetTally(args.Id, args.Hash)
	return
}

func NewJSONRPCServer(l *ledger.Ledger) (*rpc.Server, error) {
	s := rpc.NewServer()
	s.RegisterCodec(json.NewCodec(), "application/json")
	if err := s.RegisterService(&LedgerService{ledger: l}, JSONRPCServiceName); err != nil {
		return nil, err
	}

	return s, nil
}
