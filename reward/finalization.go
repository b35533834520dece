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

// resolveFinalizer maps a finalization sender to its voter. Finalizations are sent from
// the signature submission address, or from the signing address.
func resolveFinalizer(voters *split.VoterSet, sender oracle.Address) (*split.VoterWeights, bool) {
	if v, ok := voters.BySubmitSignatures(sender); ok {
		return v, true
	}
	return voters.BySigning(sender)
}

// CalculateFinalizationRewards distributes a finalization offer.
//
// Without a successful finalization the offer is returned. A finalization after the grace
// period pays the whole offer to its sender. Otherwise the offer is split in equal shares
// over the selected quorum (signing addresses, ascending); a member collects its share if
// it finalized the successful message inside the grace period and is in the eligible set
// (identity addresses). Uncollected shares are returned.
func (c *Calculator) CalculateFinalizationRewards(
	o *offer.PartialRewardOffer,
	origin claim.Origin,
	data *RoundData,
	protocolID uint8,
	selected []oracle.Address,
	eligible map[oracle.Address]bool,
	voters *split.VoterSet,
) ([]*claim.PartialClaim, error) {
	claimBack := func(amount *big.Int, detail string) *claim.PartialClaim {
		logger().Debug("finalization reward returned", "round", o.VotingRoundID, "protocol", origin.Protocol, "offer", o.OfferIndex, "amount", amount, "reason", detail)
		return origin.ClaimBack(o.ClaimBackAddress, amount, detail)
	}

	first := data.FirstSuccessfulFinalization(protocolID)
	if first == nil {
		return []*claim.PartialClaim{claimBack(o.Amount, claim.DetailNoFinalization)}, nil
	}
	grace := int64(c.cfg.FinalizationGraceDeadline())
	if first.RelativeTimestamp >= grace {
		return []*claim.PartialClaim{
			origin.New(first.SubmitAddress, o.Amount, claim.DIRECT, claim.DetailOutsideOfGracePeriod),
		}, nil
	}
	if len(selected) == 0 {
		return []*claim.PartialClaim{claimBack(o.Amount, claim.DetailNoEligibleFinalizers)}, nil
	}

	finalized := make(map[oracle.Address]bool)
	for _, f := range data.FinalizationsOf(protocolID) {
		if f.MessageHash != first.MessageHash || f.RelativeTimestamp >= grace {
			continue
		}
		if v, ok := resolveFinalizer(voters, f.SubmitAddress); ok {
			finalized[v.SigningAddress] = true
		}
	}

	shares, err := split.EqualShares(o.Amount, len(selected))
	if err != nil {
		return nil, err
	}
	var (
		claims    []*claim.PartialClaim
		unclaimed = new(big.Int)
	)
	for i, addr := range selected {
		v, ok := voters.BySigning(addr)
		if !ok {
			return nil, claim.Invariantf("selected finalizer %v is not a registered voter", addr)
		}
		if !finalized[addr] || !eligible[v.IdentityAddress] {
			unclaimed.Add(unclaimed, shares[i])
			continue
		}
		if shares[i].Sign() == 0 {
			continue
		}
		cs, err := c.distributor.SplitByWeight(shares[i], origin, o.ClaimBackAddress, v)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	if unclaimed.Sign() != 0 {
		claims = append(claims, claimBack(unclaimed, claim.DetailNotFinalizedInGracePeriod))
	}
	if err := claim.CheckConservation(claims, o.Amount, "finalization reward"); err != nil {
		return nil, err
	}
	return claims, nil
}
