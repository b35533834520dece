// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/random"
	"github.com/oraclenet/rewardcalc/split"
)

// SigningPolicy is the signing policy of a reward epoch. Voters are signing addresses,
// Weights are indexed like Voters.
type SigningPolicy struct {
	RewardEpochID      uint32           `json:"rewardEpochId"`
	StartVotingRoundID uint32           `json:"startVotingRoundId"`
	Threshold          uint64           `json:"threshold"`
	Seed               oracle.Bytes32   `json:"seed"`
	Voters             []oracle.Address `json:"voters"`
	Weights            []uint16         `json:"weights"`
}

// EpochInfo is everything known about a reward epoch before its rounds are processed.
type EpochInfo struct {
	RewardEpochID      uint32                `json:"rewardEpochId"`
	SigningPolicy      SigningPolicy         `json:"signingPolicy"`
	EndVotingRoundID   uint32                `json:"endVotingRoundId"`
	Voters             []*split.VoterWeights `json:"voters"` // signing policy order
	CanonicalFeedOrder []oracle.FeedID       `json:"canonicalFeedOrder"`
	Offers             offer.Offers          `json:"offers"`
}

// Epoch is a validated EpochInfo with its indexes built.
type Epoch struct {
	Info     *EpochInfo
	Voters   *split.VoterSet
	Selector *random.WeightedSelector
}

// PrepareEpoch validates the epoch info and indexes it.
func PrepareEpoch(info *EpochInfo) (*Epoch, error) {
	policy := &info.SigningPolicy
	if policy.RewardEpochID != info.RewardEpochID {
		return nil, errors.Errorf("signing policy of epoch %d attached to epoch %d", policy.RewardEpochID, info.RewardEpochID)
	}
	if info.EndVotingRoundID < policy.StartVotingRoundID {
		return nil, errors.Errorf("epoch %d: end round %d before start round %d",
			info.RewardEpochID, info.EndVotingRoundID, policy.StartVotingRoundID)
	}
	if len(policy.Voters) != len(policy.Weights) {
		return nil, errors.Errorf("epoch %d: %d policy voters but %d weights", info.RewardEpochID, len(policy.Voters), len(policy.Weights))
	}
	if len(info.Voters) != len(policy.Voters) {
		return nil, errors.Errorf("epoch %d: %d registered voters but %d policy voters", info.RewardEpochID, len(info.Voters), len(policy.Voters))
	}
	if err := info.Offers.Validate(); err != nil {
		return nil, errors.Wrapf(err, "epoch %d offers", info.RewardEpochID)
	}

	voters, err := split.NewVoterSet(info.Voters)
	if err != nil {
		return nil, errors.Wrapf(err, "epoch %d voters", info.RewardEpochID)
	}
	weights := make([]*big.Int, len(policy.Weights))
	for i, w := range policy.Weights {
		weights[i] = big.NewInt(int64(w))
		v := info.Voters[i]
		if v.SigningAddress != policy.Voters[i] {
			return nil, errors.Errorf("epoch %d: voter %d signs with %v, policy lists %v", info.RewardEpochID, i, v.SigningAddress, policy.Voters[i])
		}
		if v.SigningWeight.Cmp(weights[i]) != 0 {
			return nil, errors.Errorf("epoch %d: voter %v signing weight %v, policy weight %d", info.RewardEpochID, v.SigningAddress, v.SigningWeight, w)
		}
	}
	selector, err := random.NewWeightedSelector(policy.Voters, weights)
	if err != nil {
		return nil, err
	}
	return &Epoch{Info: info, Voters: voters, Selector: selector}, nil
}

// ID returns the reward epoch id.
func (e *Epoch) ID() uint32 { return e.Info.RewardEpochID }

// StartVotingRoundID returns the first round of the epoch.
func (e *Epoch) StartVotingRoundID() uint32 { return e.Info.SigningPolicy.StartVotingRoundID }

// EndVotingRoundID returns the last round of the epoch.
func (e *Epoch) EndVotingRoundID() uint32 { return e.Info.EndVotingRoundID }

// Granulator returns the offer granulator of the epoch.
func (e *Epoch) Granulator(cfg *oracle.Config) (*offer.Granulator, error) {
	return offer.NewGranulator(cfg,
		e.StartVotingRoundID(), e.EndVotingRoundID(),
		e.Info.SigningPolicy.Seed,
		e.Info.CanonicalFeedOrder,
		&e.Info.Offers,
	)
}

// FinalizerSelection returns the voters selected to finalize a round of a protocol,
// as signing addresses in ascending order.
func (e *Epoch) FinalizerSelection(cfg *oracle.Config, protocolID uint8, votingRoundID uint32) ([]oracle.Address, error) {
	seed := random.InitialHashSeed(e.Info.SigningPolicy.Seed, protocolID, votingRoundID)
	selected, err := e.Selector.RandomSelectThresholdWeightVoters(seed, cfg.FinalizationVoterSelectionBIPS)
	if err != nil {
		return nil, err
	}
	oracle.SortAddresses(selected)
	return selected, nil
}
