// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claim

import (
	"cmp"
	"math/big"
	"slices"

	"github.com/oraclenet/rewardcalc/oracle"
)

type partialKey struct {
	beneficiary oracle.Address
	claimType   Type
	hasFeed     bool
	feed        oracle.FeedID
	hasOffer    bool
	offer       int
	protocol    string
	rewardType  string
}

func keyOf(c *PartialClaim) partialKey {
	k := partialKey{
		beneficiary: c.Beneficiary,
		claimType:   c.ClaimType,
		protocol:    c.ProtocolTag,
		rewardType:  c.RewardTypeTag,
	}
	if c.FeedID != nil {
		k.hasFeed = true
		k.feed = *c.FeedID
	}
	if c.OfferIndex != nil {
		k.hasOffer = true
		k.offer = *c.OfferIndex
	}
	return k
}

// ComparePartial is the canonical ordering of partial claims.
func ComparePartial(a, b *PartialClaim) int {
	if c := a.Beneficiary.Compare(b.Beneficiary); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ClaimType, b.ClaimType); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ProtocolTag, b.ProtocolTag); c != 0 {
		return c
	}
	if c := cmp.Compare(a.RewardTypeTag, b.RewardTypeTag); c != 0 {
		return c
	}
	switch {
	case a.FeedID == nil && b.FeedID != nil:
		return -1
	case a.FeedID != nil && b.FeedID == nil:
		return 1
	case a.FeedID != nil:
		if c := a.FeedID.Compare(*b.FeedID); c != 0 {
			return c
		}
	}
	switch {
	case a.OfferIndex == nil && b.OfferIndex != nil:
		return -1
	case a.OfferIndex != nil && b.OfferIndex == nil:
		return 1
	case a.OfferIndex != nil:
		if c := cmp.Compare(*a.OfferIndex, *b.OfferIndex); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.VotingRoundID, b.VotingRoundID); c != 0 {
		return c
	}
	return cmp.Compare(a.RewardDetailTag, b.RewardDetailTag)
}

// Merge sums the amounts of claims sharing beneficiary, type, feed, offer index,
// protocol and reward type. The detail tag survives only if all merged claims agree on it.
// The input is not modified and the output is in canonical order.
func Merge(claims []*PartialClaim) []*PartialClaim {
	merged := make(map[partialKey]*PartialClaim, len(claims))
	for _, c := range claims {
		k := keyOf(c)
		if m, ok := merged[k]; ok {
			m.Amount.Add(m.Amount, c.Amount)
			if m.RewardDetailTag != c.RewardDetailTag {
				m.RewardDetailTag = ""
			}
			if c.VotingRoundID > m.VotingRoundID {
				m.VotingRoundID = c.VotingRoundID
			}
			continue
		}
		merged[k] = c.Clone()
	}
	out := make([]*PartialClaim, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	slices.SortFunc(out, ComparePartial)
	return out
}

type claimKey struct {
	beneficiary oracle.Address
	claimType   Type
}

// CompareClaims is the canonical ordering of epoch claims: by beneficiary, then type.
func CompareClaims(a, b *Claim) int {
	if c := a.Beneficiary.Compare(b.Beneficiary); c != 0 {
		return c
	}
	return cmp.Compare(a.ClaimType, b.ClaimType)
}

// Aggregate folds partial claims of one round into the running aggregate of the epoch.
// prev is not modified. A duplicated (beneficiary, type) entry in prev is an invariant
// fault, since a valid aggregate is always merged.
func Aggregate(rewardEpochID uint32, prev []*Claim, partials []*PartialClaim) ([]*Claim, error) {
	merged := make(map[claimKey]*Claim, len(prev)+len(partials))
	for _, c := range prev {
		if c.RewardEpochID != rewardEpochID {
			return nil, Invariantf("aggregate of epoch %d carries a claim of epoch %d", rewardEpochID, c.RewardEpochID)
		}
		k := claimKey{c.Beneficiary, c.ClaimType}
		if _, ok := merged[k]; ok {
			return nil, Invariantf("duplicate aggregate claim for %v %v", c.Beneficiary, c.ClaimType)
		}
		merged[k] = c.Clone()
	}
	for _, c := range partials {
		k := claimKey{c.Beneficiary, c.ClaimType}
		if m, ok := merged[k]; ok {
			m.Amount.Add(m.Amount, c.Amount)
			continue
		}
		merged[k] = &Claim{
			RewardEpochID: rewardEpochID,
			Beneficiary:   c.Beneficiary,
			Amount:        new(big.Int).Set(c.Amount),
			ClaimType:     c.ClaimType,
		}
	}
	out := make([]*Claim, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	slices.SortFunc(out, CompareClaims)
	return out, nil
}

// Positive returns the claims with a strictly positive amount, and the total of the
// negative balances that are written off.
func Positive(claims []*Claim) ([]*Claim, *big.Int) {
	writtenOff := new(big.Int)
	out := make([]*Claim, 0, len(claims))
	for _, c := range claims {
		switch c.Amount.Sign() {
		case 1:
			out = append(out, c)
		case -1:
			writtenOff.Sub(writtenOff, c.Amount)
		}
	}
	return out, writtenOff
}
