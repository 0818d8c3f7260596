package ledger

import (
	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
)

//
// Poll is one voting round.
//
// `Choice` is the undecided marker until the poll is sealed; after a seal
// it is either the hash of the unique leading option or the undecided
// marker again when the leaders tie.
//
type Poll struct {
	Id           uint64        `json:"id"`
	Owner        string        `json:"owner"`
	Title        []byte        `json:"title"`
	OptionHashes []common.Hash `json:"option_hashes"`
	Choice       common.Hash   `json:"choice"`
	Expiration   clock.Moment  `json:"expiration"`
}

func (p Poll) Serialize() ([]byte, error) {
	return common.EncodeJSONValue(p)
}

func (p Poll) IsExpiredAt(now clock.Moment) bool {
	return now >= p.Expiration
}

func (p Poll) IsSealableAt(now clock.Moment) bool {
	return now > p.Expiration
}

// UndecidedChoice is the hash of the 8 byte big-endian zero.
func UndecidedChoice(hasher common.Hasher) common.Hash {
	b := common.EncodeUint64ToByteSlice(0)
	return hasher.Hash(b[:])
}
