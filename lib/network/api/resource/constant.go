package resource

import (
	"strconv"
	"strings"
)

const (
	APIVersionV1 = "/v1"
	APIPrefix    = "/api"

	URLPolls         = APIPrefix + APIVersionV1 + "/polls"
	URLPoll          = APIPrefix + APIVersionV1 + "/polls/{id}"
	URLPollResponses = APIPrefix + APIVersionV1 + "/polls/{id}/responses"
	URLPollSeal      = APIPrefix + APIVersionV1 + "/polls/{id}/seal"
	URLPollTally     = APIPrefix + APIVersionV1 + "/polls/{id}/tallies/{hash}"
	URLPollEntry     = APIPrefix + APIVersionV1 + "/polls/{id}/entries/{account}"
	URLCounter       = APIPrefix + APIVersionV1 + "/counter"
	URLEvents        = APIPrefix + APIVersionV1 + "/events"
	URLEvent         = APIPrefix + APIVersionV1 + "/events/{id}"
)

func replaceID(pattern string, id uint64) string {
	return strings.Replace(pattern, "{id}", strconv.FormatUint(id, 10), -1)
}
