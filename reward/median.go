// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"encoding/binary"
	"math/big"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

var bigPPM = big.NewInt(oracle.TotalPPM)

// IncludeOnBoundary decides whether a submission equal to a quartile boundary belongs to
// the primary band. The decision is the low bit of
// keccak256(feedId ‖ uint256(votingRoundId) ‖ submitAddress).
func IncludeOnBoundary(feed oracle.FeedID, votingRoundID uint32, voter oracle.Address) bool {
	var round [32]byte
	binary.BigEndian.PutUint32(round[28:], votingRoundID)
	h := oracle.Keccak256(feed[:], round[:], voter.Bytes())
	return h[31]&1 == 1
}

// bandWidth returns |median| * ppm / 1e6.
func bandWidth(median int64, ppm uint32) *big.Int {
	w := new(big.Int).Abs(big.NewInt(median))
	w.Mul(w, big.NewInt(int64(ppm)))
	return w.Quo(w, bigPPM)
}

func withinBand(value, median int64, band *big.Int) bool {
	d := new(big.Int).Sub(big.NewInt(value), big.NewInt(median))
	return d.CmpAbs(band) <= 0
}

type medianRecord struct {
	voter oracle.Address
	iqr   bool
	pct   bool
	w     *big.Int
}

// CalculateMedianRewardClaims distributes a median offer among the voters whose
// submissions fell into the primary (inter-quartile) or secondary (percentage) band of
// the feed's median. Benched voters are not rewarded. Rewards are split into the voter's
// fee and its delegators' participation reward.
func (c *Calculator) CalculateMedianRewardClaims(
	o *offer.PartialRewardOffer,
	result *MedianResult,
	voters *split.VoterSet,
	benched map[oracle.Address]bool,
) ([]*claim.PartialClaim, error) {
	origin := o.Origin(claim.ProtocolFTSO, claim.RewardMedian)
	claimBack := func(detail string) []*claim.PartialClaim {
		logger().Debug("median offer returned", "round", o.VotingRoundID, "feed", o.FeedID, "offer", o.OfferIndex, "reason", detail)
		return []*claim.PartialClaim{origin.ClaimBack(o.ClaimBackAddress, o.Amount, detail)}
	}

	if o.ShouldBeBurned {
		return claimBack(claim.DetailFullOfferClaimBack), nil
	}
	if result == nil {
		return claimBack(claim.DetailNoMedian), nil
	}
	turnout := new(big.Int).Mul(result.ParticipatingWeight, big.NewInt(oracle.TotalBIPS))
	required := new(big.Int).Mul(result.TotalVotingWeight, big.NewInt(int64(o.MinRewardedTurnoutBIPS)))
	if result.Median.IsEmpty || turnout.Cmp(required) < 0 {
		return claimBack(claim.DetailLowTurnoutClaimBack), nil
	}

	var (
		median  = result.Median.Value
		low     = result.Quartile1.Value
		high    = result.Quartile3.Value
		band    = bandWidth(median, o.SecondaryBandWidthPPM)
		records []medianRecord
		iqrSum  = new(big.Int)
		pctSum  = new(big.Int)
	)
	for i, voter := range result.Voters {
		value := result.FeedValues[i]
		if value.IsEmpty || benched[voter] {
			continue
		}
		v := value.Value
		r := medianRecord{
			voter: voter,
			iqr:   (v > low && v < high) || ((v == low || v == high) && IncludeOnBoundary(result.FeedID, result.VotingRoundID, voter)),
			pct:   withinBand(v, median, band),
			w:     result.Weights[i],
		}
		if r.iqr {
			iqrSum.Add(iqrSum, r.w)
		}
		if r.pct {
			pctSum.Add(pctSum, r.w)
		}
		records = append(records, r)
	}

	var (
		primary   = big.NewInt(int64(o.PrimaryBandRewardSharePPM))
		secondary = new(big.Int).Sub(bigPPM, primary)
		weights   = make([]*big.Int, len(records))
		total     = new(big.Int)
	)
	for i, r := range records {
		nw := new(big.Int)
		if pctSum.Sign() == 0 {
			if r.iqr {
				nw.Set(r.w)
			}
		} else {
			if r.iqr {
				t := new(big.Int).Mul(primary, r.w)
				nw.Add(nw, t.Mul(t, pctSum))
			}
			if r.pct {
				t := new(big.Int).Mul(secondary, r.w)
				nw.Add(nw, t.Mul(t, iqrSum))
			}
		}
		weights[i] = nw
		total.Add(total, nw)
	}
	if total.Sign() == 0 {
		return claimBack(claim.DetailNoNormalizedWeight), nil
	}

	shares, err := split.DecliningBalance(o.Amount, weights)
	if err != nil {
		return nil, err
	}
	var claims []*claim.PartialClaim
	for i, r := range records {
		if shares[i].Sign() == 0 {
			continue
		}
		voter, ok := voters.BySubmit(r.voter)
		if !ok {
			return nil, claim.Invariantf("median reward for unregistered voter %v", r.voter)
		}
		cs, err := c.distributor.SplitMedianReward(shares[i], origin, voter)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	if err := claim.CheckConservation(claims, o.Amount, "median reward"); err != nil {
		return nil, err
	}
	return claims, nil
}
