package ledger

import (
	"fmt"
	"strconv"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
)

const (
	PrefixPoll  = "lp-poll-"
	PrefixEntry = "lp-entry-"
	PrefixTally = "lp-tally-"
	PrefixEvent = "lp-event-"

	KeyPollCounter  = "lp-counter"
	KeyEventCounter = "lp-counter-event"
)

// ids are zero padded, so the keys are ordered like the ids.
func formatID(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

func GetPollKey(id uint64) string {
	return PrefixPoll + formatID(id)
}

func GetEntryKey(account string, id uint64) string {
	return fmt.Sprintf("%s%s-%s", PrefixEntry, account, formatID(id))
}

func GetTallyKey(id uint64, h common.Hash) string {
	return fmt.Sprintf("%s%s-%s", PrefixTally, formatID(id), h.String())
}

func GetEventKey(seq uint64) string {
	return PrefixEvent + formatID(seq)
}

// cursorToKey turns the id given as list cursor into the storage key.
func cursorToKey(cursor []byte, keyFunc func(uint64) string) ([]byte, error) {
	if len(cursor) < 1 {
		return nil, nil
	}

	id, err := strconv.ParseUint(string(cursor), 10, 64)
	if err != nil {
		return nil, errors.BadRequestParameter.Clone().SetData("cursor", string(cursor))
	}

	return []byte(keyFunc(id)), nil
}
