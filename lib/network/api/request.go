package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/btcsuite/btcutil/base58"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
	"boscoin.io/feedback/lib/errors"
)

const MaxRequestBodySize int64 = 1 << 20

//
// CreatePollBody and RecordResponseBody carry titles and options as raw
// bytes, base64 encoded in json, so any byte sequence survives the trip to
// the signature check.
//
// `OpenFor` is in milliseconds.
//
type CreatePollBody struct {
	Title   []byte   `json:"title"`
	Options [][]byte `json:"options"`
	OpenFor uint64   `json:"open_for"`
	Nonce   string   `json:"nonce"`
}

type RecordResponseBody struct {
	PollId uint64 `json:"poll_id"`
	Option []byte `json:"option"`
	Nonce  string `json:"nonce"`
}

//
// SignedRequest carries the body of a write request signed by the account
// in `Source`.
//
// The signature covers the network id followed by the base58 encoded hash
// of the rlp encoded body, so a request made for one network can not be
// replayed on another.
//
type SignedRequest struct {
	Source    string          `json:"source"`
	Signature string          `json:"signature"`
	Body      json.RawMessage `json:"body"`
}

func NewSignedRequest(kp keypair.KP, networkID []byte, body interface{}) (SignedRequest, error) {
	h, err := common.MakeObjectHash(body)
	if err != nil {
		return SignedRequest{}, err
	}

	signature, err := keypair.MakeSignature(kp, networkID, h.String())
	if err != nil {
		return SignedRequest{}, err
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return SignedRequest{}, err
	}

	return SignedRequest{
		Source:    kp.Address(),
		Signature: base58.Encode(signature),
		Body:      encoded,
	}, nil
}

// Open decodes the body into `body` and verifies the signature against it.
func (s SignedRequest) Open(networkID []byte, body interface{}) error {
	if len(s.Body) < 1 {
		return errors.BadRequestParameter.Clone().SetData("body", "empty")
	}
	if err := json.Unmarshal(s.Body, body); err != nil {
		return errors.BadRequestParameter.Clone().SetData("body", err.Error())
	}

	h, err := common.MakeObjectHash(body)
	if err != nil {
		return errors.BadRequestParameter.Clone().SetData("body", err.Error())
	}

	return keypair.VerifySignature(s.Source, networkID, h.String(), s.Signature)
}

func readSignedRequest(r *http.Request, networkID []byte, body interface{}) (string, error) {
	b, err := ioutil.ReadAll(http.MaxBytesReader(nil, r.Body, MaxRequestBodySize))
	if err != nil {
		return "", errors.BadRequestParameter.Clone().SetData("body", err.Error())
	}

	var signed SignedRequest
	if err := json.Unmarshal(b, &signed); err != nil {
		return "", errors.BadRequestParameter.Clone().SetData("body", err.Error())
	}

	if err := signed.Open(networkID, body); err != nil {
		return "", err
	}

	return signed.Source, nil
}
