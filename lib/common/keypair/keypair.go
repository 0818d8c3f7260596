//
// Encapsulate Stellar's keypair package
//
// Account identifiers of the ledger are stellar addresses; requests are
// signed with the matching ed25519 key.
//
package keypair

import (
	"github.com/btcsuite/btcutil/base58"
	stellar "github.com/stellar/go/keypair"

	"boscoin.io/feedback/lib/errors"
)

// Aliases to stellar types
type Full = stellar.Full
type KP = stellar.KP

// Aliases to stellar functions
var Master = stellar.Master
var Parse = stellar.Parse
var RandomCanFail = stellar.Random

// IsAddress checks `address` is a public address, not a secret seed.
func IsAddress(address string) bool {
	kp, err := stellar.Parse(address)
	if err != nil {
		return false
	}

	return kp.Address() == address
}

// MakeSignature makes signature from given hash string
func MakeSignature(kp KP, networkID []byte, hash string) ([]byte, error) {
	return kp.Sign(append(append([]byte{}, networkID...), []byte(hash)...))
}

// VerifySignature checks the base58 encoded `signature` was made by
// `address` over `hash` within `networkID`.
func VerifySignature(address string, networkID []byte, hash, signature string) error {
	if !IsAddress(address) {
		return errors.InvalidAccount.Clone().SetData("address", address)
	}

	kp, err := stellar.Parse(address)
	if err != nil {
		return errors.InvalidAccount.Clone().SetData("address", address)
	}

	decoded := base58.Decode(signature)
	if len(decoded) < 1 {
		return errors.SignatureVerificationFailed
	}

	if err := kp.Verify(append(append([]byte{}, networkID...), []byte(hash)...), decoded); err != nil {
		return errors.SignatureVerificationFailed
	}

	return nil
}

//
// Create a new keypair, mostly used by test code
//
func Random() *Full {
	if kp, err := stellar.Random(); err != nil {
		panic(err)
	} else {
		return kp
	}
}
