// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

// CalculateFastUpdatesClaims rewards fast update providers of a feed when the fast
// updated value ended the round within the offer's band around the median. The offer is
// split by the number of updates each provider submitted.
func (c *Calculator) CalculateFastUpdatesClaims(
	o *offer.PartialRewardOffer,
	median *MedianResult,
	fu *FastUpdatesData,
	voters *split.VoterSet,
) ([]*claim.PartialClaim, error) {
	origin := o.Origin(claim.ProtocolFastUpdates, claim.RewardFastUpdatesAccuracy)
	claimBack := func(detail string) []*claim.PartialClaim {
		logger().Debug("fast updates offer returned", "round", o.VotingRoundID, "feed", o.FeedID, "reason", detail)
		return []*claim.PartialClaim{origin.ClaimBack(o.ClaimBackAddress, o.Amount, detail)}
	}
	if o.ShouldBeBurned {
		return claimBack(claim.DetailFullOfferClaimBack), nil
	}
	if fu == nil || len(fu.Submitters) == 0 {
		return claimBack(claim.DetailNoFastUpdates), nil
	}
	if median == nil || median.Median.IsEmpty {
		return claimBack(claim.DetailNoMedian), nil
	}
	var (
		value int64
		found bool
	)
	for _, fv := range fu.FeedValues {
		if o.FeedID != nil && fv.FeedID == *o.FeedID {
			value, found = fv.Value, true
		}
	}
	if !found {
		return claimBack(claim.DetailNoFastUpdates), nil
	}
	if !withinBand(value, median.Median.Value, bandWidth(median.Median.Value, o.SecondaryBandWidthPPM)) {
		return claimBack(claim.DetailFastUpdatesInaccurate), nil
	}

	counts := make(map[oracle.Address]int64)
	var providers []oracle.Address
	for _, s := range fu.Submitters {
		if _, ok := voters.BySigning(s); !ok {
			continue
		}
		if counts[s] == 0 {
			providers = append(providers, s)
		}
		counts[s]++
	}
	if len(providers) == 0 {
		return claimBack(claim.DetailNoFastUpdates), nil
	}
	oracle.SortAddresses(providers)
	weights := make([]*big.Int, len(providers))
	for i, p := range providers {
		weights[i] = big.NewInt(counts[p])
	}
	shares, err := split.DecliningBalance(o.Amount, weights)
	if err != nil {
		return nil, err
	}
	var claims []*claim.PartialClaim
	for i, p := range providers {
		if shares[i].Sign() == 0 {
			continue
		}
		v, _ := voters.BySigning(p)
		cs, err := c.distributor.SplitByWeight(shares[i], origin, o.ClaimBackAddress, v)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	if err := claim.CheckConservation(claims, o.Amount, "fast updates reward"); err != nil {
		return nil, err
	}
	return claims, nil
}
