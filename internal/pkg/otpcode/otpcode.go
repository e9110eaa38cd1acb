package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Min = 100000
	Max = 999999
)

var span = big.NewInt(Max - Min + 1)

// New returns a uniformly distributed six-digit code in [Min, Max].
func New() (int, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	return Min + int(n.Int64()), nil
}
