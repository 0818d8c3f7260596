package httputils

import (
	"net/http"

	"boscoin.io/feedback/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	return r.Header.Get("Accept") == "text/event-stream"
}

var ErrorsToStatus = map[uint]int{
	errors.OverflowError.Code:               http.StatusBadRequest,
	errors.PollNotFound.Code:                http.StatusNotFound,
	errors.AlreadyResponded.Code:            http.StatusConflict,
	errors.PollExpired.Code:                 http.StatusConflict,
	errors.PollStillActive.Code:             http.StatusConflict,
	errors.InvalidAccount.Code:              http.StatusBadRequest,
	errors.StorageRecordDoesNotExist.Code:   http.StatusNotFound,
	errors.StorageRecordAlreadyExists.Code:  http.StatusBadRequest,
	errors.StorageCoreError.Code:            http.StatusInternalServerError,
	errors.BadRequestParameter.Code:         http.StatusBadRequest,
	errors.SignatureVerificationFailed.Code: http.StatusUnauthorized,
	errors.SequencerStopped.Code:            http.StatusServiceUnavailable,
	errors.InvalidHash.Code:                 http.StatusBadRequest,
}

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
	}
	return http.StatusInternalServerError
}
