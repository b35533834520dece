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

// Penalty returns -(signingWeight * amount * penaltyFactor) / totalSigningWeight.
func Penalty(signingWeight, amount, totalSigningWeight *big.Int, penaltyFactor uint64) *big.Int {
	p := new(big.Int).Mul(signingWeight, amount)
	p.Mul(p, new(big.Int).SetUint64(penaltyFactor))
	p.Neg(p)
	return p.Quo(p, totalSigningWeight)
}

// CalculatePenalties charges every offender, given by its lookup address, a penalty on
// the full offer amount. Penalties are split like rewards and produce negative claims.
func (c *Calculator) CalculatePenalties(
	o *offer.PartialRewardOffer,
	origin claim.Origin,
	offenders []*split.VoterWeights,
	voters *split.VoterSet,
) ([]*claim.PartialClaim, error) {
	total := voters.TotalSigningWeight()
	if total.Sign() == 0 || o.Amount.Sign() == 0 {
		return nil, nil
	}
	var claims []*claim.PartialClaim
	for _, v := range offenders {
		penalty := Penalty(v.SigningWeight, o.Amount, total, c.cfg.PenaltyFactor)
		if penalty.Sign() == 0 {
			continue
		}
		cs, err := c.distributor.SplitByWeight(penalty, origin, o.ClaimBackAddress, v)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	return claims, nil
}

// offenderWeights resolves offender addresses with lookup. A missing voter is an
// invariant violation.
func offenderWeights(
	addrs []oracle.Address,
	lookup func(oracle.Address) (*split.VoterWeights, bool),
	what string,
) ([]*split.VoterWeights, error) {
	out := make([]*split.VoterWeights, 0, len(addrs))
	for _, a := range addrs {
		v, ok := lookup(a)
		if !ok {
			return nil, claim.Invariantf("%s %v has no voter weights", what, a)
		}
		out = append(out, v)
	}
	return out, nil
}
