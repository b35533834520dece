// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package split

import (
	"math/big"

	"github.com/oraclenet/rewardcalc/claim"
)

// DecliningBalance splits amount proportionally to weights without rounding loss.
// Each share is weight * remainingAmount / remainingWeight, after which both remaining
// values are decreased, so the last positive weight receives whatever is left and the
// shares always add up to amount. Division truncates toward zero, negative amounts split
// symmetrically to positive ones.
//
// Weights must be non-negative. A zero total weight is only accepted for a zero amount.
func DecliningBalance(amount *big.Int, weights []*big.Int) ([]*big.Int, error) {
	total := new(big.Int)
	for i, w := range weights {
		if w == nil || w.Sign() < 0 {
			return nil, claim.Invariantf("declining balance: invalid weight at %d", i)
		}
		total.Add(total, w)
	}

	shares := make([]*big.Int, len(weights))
	if total.Sign() == 0 {
		if amount.Sign() != 0 {
			return nil, claim.Invariantf("declining balance: %v over zero total weight", amount)
		}
		for i := range shares {
			shares[i] = new(big.Int)
		}
		return shares, nil
	}

	remaining := new(big.Int).Set(amount)
	remainingWeight := total
	for i, w := range weights {
		share := new(big.Int)
		if w.Sign() > 0 {
			share.Mul(w, remaining)
			share.Quo(share, remainingWeight)
		}
		remaining.Sub(remaining, share)
		remainingWeight.Sub(remainingWeight, w)
		shares[i] = share
	}
	if remaining.Sign() != 0 {
		return nil, claim.Invariantf("declining balance: %v left undistributed", remaining)
	}
	return shares, nil
}

// EqualShares splits amount into n parts that differ by at most one unit.
func EqualShares(amount *big.Int, n int) ([]*big.Int, error) {
	weights := make([]*big.Int, n)
	for i := range weights {
		weights[i] = big.NewInt(1)
	}
	return DecliningBalance(amount, weights)
}
