// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package offer

import (
	"math/big"

	"github.com/oraclenet/rewardcalc/oracle"
)

// TypedOffers is a feed offer split by reward type.
type TypedOffers struct {
	Median       *PartialRewardOffer
	Signing      *PartialRewardOffer
	Finalization *PartialRewardOffer
}

// SplitByRewardType splits an offer into signing and finalization shares by the configured
// basis points, the median offer receives the remainder.
func SplitByRewardType(o *PartialRewardOffer, cfg *oracle.Config) TypedOffers {
	signing := bipsOf(o.Amount, cfg.SigningBIPS)
	finalization := bipsOf(o.Amount, cfg.FinalizationBIPS)
	median := new(big.Int).Sub(o.Amount, signing)
	median.Sub(median, finalization)
	return TypedOffers{
		Median:       o.withAmount(median),
		Signing:      o.withAmount(signing),
		Finalization: o.withAmount(finalization),
	}
}

// SplitFDCByRewardType splits an attestation offer into signing and finalization shares.
// The signing offer receives the remainder.
func SplitFDCByRewardType(o *PartialRewardOffer, cfg *oracle.Config) (signing, finalization *PartialRewardOffer) {
	fin := bipsOf(o.Amount, cfg.FinalizationBIPS)
	return o.withAmount(new(big.Int).Sub(o.Amount, fin)), o.withAmount(fin)
}

func bipsOf(amount *big.Int, b uint32) *big.Int {
	v := new(big.Int).Mul(amount, big.NewInt(int64(b)))
	return v.Quo(v, big.NewInt(oracle.TotalBIPS))
}

// ShareOf returns the index-th of n equal parts of amount. The remainder of the division
// is handed out one unit at a time to the first parts, so the parts add up to amount.
func ShareOf(amount *big.Int, index, n int) *big.Int {
	if n <= 0 || index < 0 || index >= n {
		panic("share index out of range")
	}
	count := big.NewInt(int64(n))
	share, rem := new(big.Int).QuoRem(amount, count, new(big.Int))
	if big.NewInt(int64(index)).Cmp(rem) < 0 {
		share.Add(share, big.NewInt(1))
	}
	return share
}
