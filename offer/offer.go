// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package offer

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
)

// RewardOffer is a community offer for one feed, valid for a whole reward epoch.
type RewardOffer struct {
	FeedID                    oracle.FeedID  `json:"feedId"`
	Amount                    *big.Int       `json:"amount"`
	MinRewardedTurnoutBIPS    uint32         `json:"minRewardedTurnoutBIPS"`
	PrimaryBandRewardSharePPM uint32         `json:"primaryBandRewardSharePPM"`
	SecondaryBandWidthPPM     uint32         `json:"secondaryBandWidthPPM"`
	ClaimBackAddress          oracle.Address `json:"claimBackAddress"`
}

// InflationOffer is the inflation funded offer shared by a list of feeds. Per feed band
// parameters are given in the order of FeedIDs.
type InflationOffer struct {
	FeedIDs                    []oracle.FeedID `json:"feedIds"`
	Amount                     *big.Int        `json:"amount"`
	MinRewardedTurnoutBIPS     uint32          `json:"minRewardedTurnoutBIPS"`
	PrimaryBandRewardSharePPMs []uint32        `json:"primaryBandRewardSharePPMs"`
	SecondaryBandWidthPPMs     []uint32        `json:"secondaryBandWidthPPMs"`
}

// FDCOffer funds the attestation protocol for a reward epoch.
type FDCOffer struct {
	Amount *big.Int `json:"amount"`
}

// FastUpdatesOffer funds the fast updates accuracy rewards of the listed feeds. A feed is
// accurate in a round if its fast updated value lies within BandWidthPPMs of the median.
type FastUpdatesOffer struct {
	FeedIDs       []oracle.FeedID `json:"feedIds"`
	Amount        *big.Int        `json:"amount"`
	BandWidthPPMs []uint32        `json:"bandWidthPPMs"`
}

// Offers are all the offers of one reward epoch.
type Offers struct {
	RewardOffers      []*RewardOffer      `json:"rewardOffers"`
	InflationOffers   []*InflationOffer   `json:"inflationOffers"`
	FDCOffers         []*FDCOffer         `json:"fdcOffers"`
	FastUpdatesOffers []*FastUpdatesOffer `json:"fastUpdatesOffers"`
}

// Validate checks the offers are well formed.
func (o *Offers) Validate() error {
	for i, ro := range o.RewardOffers {
		if err := checkAmount(ro.Amount); err != nil {
			return errors.Wrapf(err, "reward offer %d", i)
		}
		if ro.PrimaryBandRewardSharePPM > oracle.TotalPPM {
			return errors.Errorf("reward offer %d: primary band share out of range", i)
		}
		if ro.MinRewardedTurnoutBIPS > oracle.TotalBIPS {
			return errors.Errorf("reward offer %d: min turnout out of range", i)
		}
	}
	for i, io := range o.InflationOffers {
		if err := checkAmount(io.Amount); err != nil {
			return errors.Wrapf(err, "inflation offer %d", i)
		}
		if len(io.FeedIDs) == 0 {
			return errors.Errorf("inflation offer %d: no feeds", i)
		}
		if len(io.PrimaryBandRewardSharePPMs) != len(io.FeedIDs) || len(io.SecondaryBandWidthPPMs) != len(io.FeedIDs) {
			return errors.Errorf("inflation offer %d: band parameters do not match feeds", i)
		}
		for _, ppm := range io.PrimaryBandRewardSharePPMs {
			if ppm > oracle.TotalPPM {
				return errors.Errorf("inflation offer %d: primary band share out of range", i)
			}
		}
	}
	for i, fo := range o.FDCOffers {
		if err := checkAmount(fo.Amount); err != nil {
			return errors.Wrapf(err, "fdc offer %d", i)
		}
	}
	for i, fu := range o.FastUpdatesOffers {
		if err := checkAmount(fu.Amount); err != nil {
			return errors.Wrapf(err, "fast updates offer %d", i)
		}
		if len(fu.FeedIDs) == 0 || len(fu.BandWidthPPMs) != len(fu.FeedIDs) {
			return errors.Errorf("fast updates offer %d: band parameters do not match feeds", i)
		}
	}
	return nil
}

func checkAmount(a *big.Int) error {
	if a == nil || a.Sign() < 0 {
		return errors.New("invalid amount")
	}
	return nil
}

// PartialRewardOffer is the part of an epoch offer assigned to one voting round and,
// for feed offers, to one feed. For fast updates offers SecondaryBandWidthPPM is the
// accuracy band.
type PartialRewardOffer struct {
	VotingRoundID             uint32
	FeedID                    *oracle.FeedID
	OfferIndex                int
	Amount                    *big.Int
	MinRewardedTurnoutBIPS    uint32
	PrimaryBandRewardSharePPM uint32
	SecondaryBandWidthPPM     uint32
	ClaimBackAddress          oracle.Address
	ShouldBeBurned            bool
	IsInflation               bool
}

// withAmount returns a copy carrying amount.
func (o *PartialRewardOffer) withAmount(amount *big.Int) *PartialRewardOffer {
	cpy := *o
	cpy.Amount = amount
	return &cpy
}

// Origin returns the claim origin of the offer.
func (o *PartialRewardOffer) Origin(protocol, rewardType string) claim.Origin {
	idx := o.OfferIndex
	origin := claim.Origin{
		VotingRoundID: o.VotingRoundID,
		OfferIndex:    &idx,
		Protocol:      protocol,
		RewardType:    rewardType,
	}
	if o.FeedID != nil {
		f := *o.FeedID
		origin.FeedID = &f
	}
	return origin
}
