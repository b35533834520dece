// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package split

import (
	"math/big"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
)

var totalBIPS = big.NewInt(oracle.TotalBIPS)

// Distributor splits a voter's reward into fee, delegation and node mirror claims.
type Distributor struct {
	cappedStakingFeeBIPS uint16
}

// NewDistributor creates a distributor capping the fee taken from staking rewards.
func NewDistributor(cappedStakingFeeBIPS uint32) *Distributor {
	return &Distributor{cappedStakingFeeBIPS: uint16(min(cappedStakingFeeBIPS, oracle.TotalBIPS))}
}

// SplitByWeight splits amount of one voter between its delegation and staking weight.
//
// The staking part (proportional to the sum of node weights) pays a fee capped at the
// distributor's staking fee ceiling and mirrors the rest to the nodes. The delegation part
// pays the voter's full fee and the rest goes to the delegation address as WNAT. A voter
// without any weight returns the whole amount to claimBack. Negative amounts produce
// negative claims of the same shape.
func (d *Distributor) SplitByWeight(
	amount *big.Int,
	origin claim.Origin,
	claimBack oracle.Address,
	voter *VoterWeights,
) ([]*claim.PartialClaim, error) {
	stakingWeight := voter.StakingWeight()
	totalWeight := new(big.Int).Add(voter.CappedDelegationWeight, stakingWeight)
	if totalWeight.Sign() == 0 {
		return []*claim.PartialClaim{origin.ClaimBack(claimBack, amount, claim.DetailNoVoterWeight)}, nil
	}

	stakingAmount := new(big.Int).Mul(amount, stakingWeight)
	stakingAmount.Quo(stakingAmount, totalWeight)
	delegationAmount := new(big.Int).Sub(amount, stakingAmount)

	delegationFee := bips(delegationAmount, voter.FeeBIPS)
	stakingFee := bips(stakingAmount, min(voter.FeeBIPS, d.cappedStakingFeeBIPS))

	claims := make([]*claim.PartialClaim, 0, 2+len(voter.NodeIDs))
	claims = append(claims,
		origin.New(voter.IdentityAddress, new(big.Int).Add(stakingFee, delegationFee), claim.FEE, claim.DetailFee),
		origin.New(voter.DelegationAddress, new(big.Int).Sub(delegationAmount, delegationFee), claim.WNAT, claim.DetailParticipation),
	)

	if len(voter.NodeIDs) > 0 {
		nodeShares, err := DecliningBalance(new(big.Int).Sub(stakingAmount, stakingFee), voter.NodeWeights)
		if err != nil {
			return nil, err
		}
		for i, nodeID := range voter.NodeIDs {
			claims = append(claims, origin.New(nodeID, nodeShares[i], claim.MIRROR, claim.DetailNode))
		}
	} else if stakingAmount.Sign() != 0 {
		return nil, claim.Invariantf("voter %v: staking amount %v without nodes", voter.IdentityAddress, stakingAmount)
	}

	if err := claim.CheckConservation(claims, amount, "weight split"); err != nil {
		return nil, err
	}
	return claims, nil
}

// SplitMedianReward splits a median reward into the voter's fee and the participation
// reward of its delegators. Median rewards are paid on delegation weight only.
func (d *Distributor) SplitMedianReward(
	amount *big.Int,
	origin claim.Origin,
	voter *VoterWeights,
) ([]*claim.PartialClaim, error) {
	fee := bips(amount, voter.FeeBIPS)
	claims := []*claim.PartialClaim{
		origin.New(voter.IdentityAddress, fee, claim.FEE, claim.DetailFee),
		origin.New(voter.DelegationAddress, new(big.Int).Sub(amount, fee), claim.WNAT, claim.DetailParticipation),
	}
	if err := claim.CheckConservation(claims, amount, "median split"); err != nil {
		return nil, err
	}
	return claims, nil
}

func bips(amount *big.Int, b uint16) *big.Int {
	v := new(big.Int).Mul(amount, big.NewInt(int64(b)))
	return v.Quo(v, totalBIPS)
}
