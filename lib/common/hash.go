package common

import (
	"bytes"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"boscoin.io/feedback/lib/errors"
)

const HashLength = 32

type Hash [HashLength]byte

// Hasher is the content hash collaborator. Implementations must be
// deterministic, every node applying the same input has to get the same
// `Hash`.
type Hasher interface {
	Hash([]byte) Hash
}

type Blake2bHasher struct{}

func (Blake2bHasher) Hash(b []byte) Hash {
	return Hash(blake2b.Sum256(b))
}

var DefaultHasher Hasher = Blake2bHasher{}

func MakeHash(b []byte) Hash {
	return DefaultHasher.Hash(b)
}

func MakeObjectHash(i interface{}) (h Hash, err error) {
	var e []byte
	if e, err = rlp.EncodeToBytes(i); err != nil {
		return
	}

	h = MakeHash(e)

	return
}

func MustMakeObjectHash(i interface{}) Hash {
	h, err := MakeObjectHash(i)
	if err != nil {
		panic(err)
	}

	return h
}

func ParseHash(s string) (h Hash, err error) {
	b := base58.Decode(s)
	if len(b) != HashLength {
		err = errors.InvalidHash.Clone().SetData("hash", s)
		return
	}
	copy(h[:], b)

	return
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) Equal(o Hash) bool {
	return bytes.Equal(h[:], o[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed

	return nil
}
