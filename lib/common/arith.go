package common

import (
	"math"

	"boscoin.io/feedback/lib/errors"
)

//
// Add `b` to `a`
//
// If the result would not fit in an `uint64`, `errors.OverflowError` is
// returned along with `a` untouched.
//
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return a, errors.OverflowError
	}

	return a + b, nil
}
