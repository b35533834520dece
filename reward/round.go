// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

// roundContext holds what is shared by all offers of a round.
type roundContext struct {
	data            *RoundData
	voters          *split.VoterSet
	benched         map[oracle.Address]bool
	medianEligible  map[oracle.Address]bool // identity addresses
	ftsoSigning     *SigningEligibility
	ftsoFinalizers  []oracle.Address
	doubleSigners   []*split.VoterWeights
	revealOffenders []*split.VoterWeights
}

func (c *Calculator) newRoundContext(epoch *Epoch, data *RoundData) (*roundContext, error) {
	var (
		voters = epoch.Voters
		round  = data.VotingRoundID
		rc     = &roundContext{
			data:           data,
			voters:         voters,
			benched:        make(map[oracle.Address]bool, len(data.BenchedVoters)),
			medianEligible: make(map[oracle.Address]bool, len(data.Reveals)),
		}
		err error
	)
	for _, b := range data.BenchedVoters {
		rc.benched[b] = true
	}
	for _, r := range data.Reveals {
		if v, ok := voters.BySubmit(r); ok && !rc.benched[r] {
			rc.medianEligible[v.IdentityAddress] = true
		}
	}
	rc.ftsoSigning = c.EligibleSigners(data, oracle.FTSOProtocolID, voters)
	if rc.ftsoFinalizers, err = epoch.FinalizerSelection(c.cfg, oracle.FTSOProtocolID, round); err != nil {
		return nil, err
	}
	epochEnd := int64(c.cfg.VotingEpochEnd())
	if rc.doubleSigners, err = offenderWeights(
		DoubleSigners(round, oracle.FTSOProtocolID, data.Signatures, epochEnd), voters.BySigning, "double signer",
	); err != nil {
		return nil, err
	}
	if rc.revealOffenders, err = offenderWeights(
		RevealOffenders(data.Commits, data.Reveals), voters.BySubmit, "reveal offender",
	); err != nil {
		return nil, err
	}
	return rc, nil
}

// CalculateRoundClaims applies every calculator to every offer of a round and returns
// the partial claims in calculation order.
func (c *Calculator) CalculateRoundClaims(epoch *Epoch, offers *offer.RoundOffers, data *RoundData) ([]*claim.PartialClaim, error) {
	if !data.Status.Usable() {
		return nil, errors.Errorf("round %d: data status %v", data.VotingRoundID, data.Status)
	}
	if offers.VotingRoundID != data.VotingRoundID {
		return nil, errors.Errorf("offers of round %d applied to data of round %d", offers.VotingRoundID, data.VotingRoundID)
	}
	if err := data.Validate(); err != nil {
		return nil, errors.Wrapf(err, "round %d", data.VotingRoundID)
	}
	rc, err := c.newRoundContext(epoch, data)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d", data.VotingRoundID)
	}

	var claims []*claim.PartialClaim
	for _, feed := range offers.Feeds {
		result := data.MedianResult(feed.FeedID)
		for _, o := range feed.Offers {
			cs, err := c.feedOfferClaims(rc, o, result)
			if err != nil {
				return nil, errors.Wrapf(err, "round %d feed %v offer %d", data.VotingRoundID, feed.FeedID, o.OfferIndex)
			}
			claims = append(claims, cs...)
		}
	}

	if len(offers.FDC) > 0 {
		cs, err := c.fdcClaims(epoch, rc, offers.FDC)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d fdc", data.VotingRoundID)
		}
		claims = append(claims, cs...)
	}

	for _, feed := range offers.FastUpdates {
		result := data.MedianResult(feed.FeedID)
		for _, o := range feed.Offers {
			cs, err := c.CalculateFastUpdatesClaims(o, result, data.FastUpdates, rc.voters)
			if err != nil {
				return nil, errors.Wrapf(err, "round %d fast updates %v offer %d", data.VotingRoundID, feed.FeedID, o.OfferIndex)
			}
			claims = append(claims, cs...)
		}
	}

	logger().Debug("round calculated", "round", data.VotingRoundID, "claims", len(claims),
		"doubleSigners", len(rc.doubleSigners), "revealOffenders", len(rc.revealOffenders))
	return claims, nil
}

func (c *Calculator) feedOfferClaims(rc *roundContext, o *offer.PartialRewardOffer, result *MedianResult) ([]*claim.PartialClaim, error) {
	if o.ShouldBeBurned {
		return c.CalculateMedianRewardClaims(o, result, rc.voters, rc.benched)
	}
	typed := offer.SplitByRewardType(o, c.cfg)

	median, err := c.CalculateMedianRewardClaims(typed.Median, result, rc.voters, rc.benched)
	if err != nil {
		return nil, err
	}
	signing, err := c.CalculateSigningRewards(typed.Signing,
		typed.Signing.Origin(claim.ProtocolFTSO, claim.RewardSigning), rc.ftsoSigning, rc.voters)
	if err != nil {
		return nil, err
	}
	finalization, err := c.CalculateFinalizationRewards(typed.Finalization,
		typed.Finalization.Origin(claim.ProtocolFTSO, claim.RewardFinalization),
		rc.data, oracle.FTSOProtocolID, rc.ftsoFinalizers, rc.medianEligible, rc.voters)
	if err != nil {
		return nil, err
	}
	doubleSigning, err := c.CalculatePenalties(o, o.Origin(claim.ProtocolFTSO, claim.RewardDoubleSigners), rc.doubleSigners, rc.voters)
	if err != nil {
		return nil, err
	}
	reveal, err := c.CalculatePenalties(o, o.Origin(claim.ProtocolFTSO, claim.RewardRevealOffenders), rc.revealOffenders, rc.voters)
	if err != nil {
		return nil, err
	}

	claims := make([]*claim.PartialClaim, 0, len(median)+len(signing)+len(finalization)+len(doubleSigning)+len(reveal))
	claims = append(claims, median...)
	claims = append(claims, signing...)
	claims = append(claims, finalization...)
	claims = append(claims, doubleSigning...)
	return append(claims, reveal...), nil
}

func (c *Calculator) fdcClaims(epoch *Epoch, rc *roundContext, offers []*offer.PartialRewardOffer) ([]*claim.PartialClaim, error) {
	var (
		data     = rc.data
		voters   = rc.voters
		epochEnd = int64(c.cfg.VotingEpochEnd())
		eligible = c.EligibleSigners(data, oracle.FDCProtocolID, voters)
		bitVoted = make(map[oracle.Address]bool)
	)
	for addr := range data.FDC.bitVoters() {
		if v, ok := voters.BySubmit(addr); ok {
			bitVoted[v.IdentityAddress] = true
		}
	}
	finalizers, err := epoch.FinalizerSelection(c.cfg, oracle.FDCProtocolID, data.VotingRoundID)
	if err != nil {
		return nil, err
	}
	toSubmit := func(signer oracle.Address) (oracle.Address, bool) {
		v, ok := voters.BySigning(signer)
		if !ok {
			return oracle.Address{}, false
		}
		return v.SubmitAddress, true
	}
	fdcOffenders, err := FDCOffenders(data, epochEnd, toSubmit)
	if err != nil {
		return nil, err
	}
	var offenderAddrs []oracle.Address
	for _, o := range fdcOffenders {
		logger().Debug("fdc offender", "round", data.VotingRoundID, "voter", o.SubmitAddress, "offenses", o.Offenses)
		offenderAddrs = append(offenderAddrs, o.SubmitAddress)
	}
	offenders, err := offenderWeights(offenderAddrs, voters.BySubmit, "fdc offender")
	if err != nil {
		return nil, err
	}
	doubleSigners, err := offenderWeights(
		DoubleSigners(data.VotingRoundID, oracle.FDCProtocolID, data.Signatures, epochEnd), voters.BySigning, "double signer",
	)
	if err != nil {
		return nil, err
	}

	var claims []*claim.PartialClaim
	for _, o := range offers {
		signingOffer, finalizationOffer := offer.SplitFDCByRewardType(o, c.cfg)
		signing, err := c.CalculateFDCSigningRewards(signingOffer, eligible, voters, data.FDC)
		if err != nil {
			return nil, err
		}
		finalization, err := c.CalculateFinalizationRewards(finalizationOffer,
			finalizationOffer.Origin(claim.ProtocolFDC, claim.RewardFDCFinalization),
			data, oracle.FDCProtocolID, finalizers, bitVoted, voters)
		if err != nil {
			return nil, err
		}
		offense, err := c.CalculatePenalties(o, o.Origin(claim.ProtocolFDC, claim.RewardFDCOffenders), offenders, voters)
		if err != nil {
			return nil, err
		}
		doubleSigning, err := c.CalculatePenalties(o, o.Origin(claim.ProtocolFDC, claim.RewardDoubleSigners), doubleSigners, voters)
		if err != nil {
			return nil, err
		}
		claims = append(claims, signing...)
		claims = append(claims, finalization...)
		claims = append(claims, offense...)
		claims = append(claims, doubleSigning...)
	}
	return claims, nil
}
