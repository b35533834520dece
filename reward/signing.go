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

// SigningEligibility is the outcome of signature evaluation for one protocol in one round.
type SigningEligibility struct {
	// Signers are the reward eligible voters in signing policy order.
	Signers []*split.VoterWeights
	// Detail tags the burn when Signers is empty.
	Detail string
	// MessageHash is the finalized message hash, zero without a successful finalization.
	MessageHash oracle.Bytes32
}

// EligibleSigners evaluates the signatures of a protocol.
//
// With a successful finalization a voter is eligible if it signed the finalized hash at or
// after the reveal deadline and either inside the signature grace period or not later than
// the finalization (capped at the end of the voting epoch). Without one, every voter that
// signed a hash backed by at least MinRewardedNonConsensusSignaturesBIPS of the signing
// weight until the end of the voting epoch is eligible.
func (c *Calculator) EligibleSigners(data *RoundData, protocolID uint8, voters *split.VoterSet) *SigningEligibility {
	var (
		sigs           = data.SignaturesOf(protocolID)
		revealDeadline = int64(c.cfg.RevealDeadlineSeconds)
		epochEnd       = int64(c.cfg.VotingEpochEnd())
		eligible       = make(map[oracle.Address]bool)
		out            = &SigningEligibility{}
	)

	if fin := data.FirstSuccessfulFinalization(protocolID); fin != nil {
		out.MessageHash = fin.MessageHash
		deadline := min(fin.RelativeTimestamp, epochEnd)
		grace := int64(c.cfg.SignatureGraceDeadline())
		for _, s := range sigs {
			if s.MessageHash != fin.MessageHash || s.RelativeTimestamp < revealDeadline {
				continue
			}
			if s.RelativeTimestamp >= grace && s.RelativeTimestamp > deadline {
				continue
			}
			if v, ok := voters.BySigning(s.Signer); ok {
				eligible[v.SigningAddress] = true
			}
		}
		out.Signers = inPolicyOrder(voters, eligible)
		if len(out.Signers) == 0 {
			out.Detail = claim.DetailNoSignatures
		}
		return out
	}

	// no finalization, reward the signers of well supported hashes
	var (
		hashWeight = make(map[oracle.Bytes32]*big.Int)
		hashVoters = make(map[oracle.Bytes32]map[oracle.Address]bool)
	)
	for _, s := range sigs {
		if s.RelativeTimestamp < revealDeadline || s.RelativeTimestamp > epochEnd {
			continue
		}
		v, ok := voters.BySigning(s.Signer)
		if !ok {
			continue
		}
		signers := hashVoters[s.MessageHash]
		if signers == nil {
			signers = make(map[oracle.Address]bool)
			hashVoters[s.MessageHash] = signers
			hashWeight[s.MessageHash] = new(big.Int)
		}
		if signers[v.SigningAddress] {
			continue
		}
		signers[v.SigningAddress] = true
		hashWeight[s.MessageHash].Add(hashWeight[s.MessageHash], v.SigningWeight)
	}
	threshold := voters.TotalSigningWeight()
	threshold.Mul(threshold, big.NewInt(int64(c.cfg.MinRewardedNonConsensusSignaturesBIPS)))
	for hash, w := range hashWeight {
		if new(big.Int).Mul(w, big.NewInt(oracle.TotalBIPS)).Cmp(threshold) < 0 {
			continue
		}
		for addr := range hashVoters[hash] {
			eligible[addr] = true
		}
	}
	out.Signers = inPolicyOrder(voters, eligible)
	if len(out.Signers) == 0 {
		out.Detail = claim.DetailNoMostFrequentSignatures
	}
	return out
}

func inPolicyOrder(voters *split.VoterSet, signers map[oracle.Address]bool) []*split.VoterWeights {
	var out []*split.VoterWeights
	for _, v := range voters.Voters() {
		if signers[v.SigningAddress] {
			out = append(out, v)
		}
	}
	return out
}

// signingShares splits amount by signing weight over the whole signing policy. The
// returned shares are indexed like eligible.Signers, the last element is the share of
// the voters that were not eligible.
func signingShares(amount *big.Int, eligible *SigningEligibility, voters *split.VoterSet) ([]*big.Int, error) {
	weights := make([]*big.Int, 0, len(eligible.Signers)+1)
	rest := voters.TotalSigningWeight()
	for _, v := range eligible.Signers {
		weights = append(weights, v.SigningWeight)
		rest.Sub(rest, v.SigningWeight)
	}
	weights = append(weights, rest)
	return split.DecliningBalance(amount, weights)
}

// CalculateSigningRewards distributes a signing offer among the eligible signers by
// signing weight. The share of non eligible voters returns to the claim-back address.
func (c *Calculator) CalculateSigningRewards(
	o *offer.PartialRewardOffer,
	origin claim.Origin,
	eligible *SigningEligibility,
	voters *split.VoterSet,
) ([]*claim.PartialClaim, error) {
	if len(eligible.Signers) == 0 || voters.TotalSigningWeight().Sign() == 0 {
		detail := eligible.Detail
		if detail == "" {
			detail = claim.DetailNoSignatures
		}
		logger().Debug("signing offer returned", "round", o.VotingRoundID, "protocol", origin.Protocol, "offer", o.OfferIndex, "reason", detail)
		return []*claim.PartialClaim{origin.ClaimBack(o.ClaimBackAddress, o.Amount, detail)}, nil
	}
	shares, err := signingShares(o.Amount, eligible, voters)
	if err != nil {
		return nil, err
	}
	var claims []*claim.PartialClaim
	for i, v := range eligible.Signers {
		if shares[i].Sign() == 0 {
			continue
		}
		cs, err := c.distributor.SplitByWeight(shares[i], origin, o.ClaimBackAddress, v)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	if rest := shares[len(shares)-1]; rest.Sign() != 0 {
		claims = append(claims, origin.ClaimBack(o.ClaimBackAddress, rest, claim.DetailNonSigners))
	}
	if err := claim.CheckConservation(claims, o.Amount, "signing reward"); err != nil {
		return nil, err
	}
	return claims, nil
}

// CalculateFDCSigningRewards is CalculateSigningRewards for the attestation protocol. A
// signer whose bitvote does not dominate the consensus bitvote forfeits
// NonDominatingBitvoteBurnBIPS of its share. Without a consensus bitvote nothing is cut.
func (c *Calculator) CalculateFDCSigningRewards(
	o *offer.PartialRewardOffer,
	eligible *SigningEligibility,
	voters *split.VoterSet,
	fdc *FDCData,
) ([]*claim.PartialClaim, error) {
	origin := o.Origin(claim.ProtocolFDC, claim.RewardFDCSigning)
	if len(eligible.Signers) == 0 || voters.TotalSigningWeight().Sign() == 0 {
		return c.CalculateSigningRewards(o, origin, eligible, voters)
	}
	consensus, hasConsensus, err := fdc.consensus()
	if err != nil {
		return nil, claim.Invariantf("round %d: %v", o.VotingRoundID, err)
	}
	shares, err := signingShares(o.Amount, eligible, voters)
	if err != nil {
		return nil, err
	}
	var (
		claims []*claim.PartialClaim
		burned = new(big.Int)
		burn   = big.NewInt(int64(c.cfg.NonDominatingBitvoteBurnBIPS))
	)
	for i, v := range eligible.Signers {
		share := shares[i]
		if share.Sign() == 0 {
			continue
		}
		if bv, ok := fdc.bitVoteOf(v.SubmitAddress); hasConsensus && (!ok || !bv.Dominates(consensus)) {
			cut := new(big.Int).Mul(share, burn)
			cut.Quo(cut, big.NewInt(oracle.TotalBIPS))
			burned.Add(burned, cut)
			share = new(big.Int).Sub(share, cut)
		}
		cs, err := c.distributor.SplitByWeight(share, origin, o.ClaimBackAddress, v)
		if err != nil {
			return nil, err
		}
		claims = append(claims, cs...)
	}
	if burned.Sign() != 0 {
		claims = append(claims, origin.ClaimBack(o.ClaimBackAddress, burned, claim.DetailNonDominatingBitvote))
	}
	if rest := shares[len(shares)-1]; rest.Sign() != 0 {
		claims = append(claims, origin.ClaimBack(o.ClaimBackAddress, rest, claim.DetailNonSigners))
	}
	if err := claim.CheckConservation(claims, o.Amount, "fdc signing reward"); err != nil {
		return nil, err
	}
	return claims, nil
}
