package server

import (
	"context"
	"errors"
	"math/big"
)

var errEmptyInterval = errors.New("x must be less than or equal to y")

// IntervalLCM returns the least common multiple of every integer in [x, y].
// Both bounds must be positive. The context is checked between steps so that
// a disconnected client stops the loop.
func IntervalLCM(ctx context.Context, x, y *big.Int) (*big.Int, error) {
	if x.Sign() <= 0 || y.Sign() <= 0 {
		return nil, errors.New("both bounds must be positive")
	}
	if x.Cmp(y) > 0 {
		return nil, errEmptyInterval
	}

	result := new(big.Int).Set(x)
	gcd := new(big.Int)
	one := big.NewInt(1)
	for i := new(big.Int).Add(x, one); i.Cmp(y) <= 0; i.Add(i, one) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// lcm(a, b) = a / gcd(a, b) * b
		gcd.GCD(nil, nil, result, i)
		result.Quo(result, gcd)
		result.Mul(result, i)
	}
	return result, nil
}
