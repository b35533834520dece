// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

var (
	btc       = mustFeed("BTC/USD")
	eth       = mustFeed("ETH/USD")
	claimBack = oracle.BytesToAddress([]byte{0xcb})
)

const (
	testEpoch = uint32(3)
	testStart = uint32(300)
	testEnd   = uint32(309)
	testRound = uint32(305)
)

func mustFeed(name string) oracle.FeedID {
	f, err := oracle.NewFeedID(1, name)
	if err != nil {
		panic(err)
	}
	return f
}

func addr(b ...byte) oracle.Address { return oracle.BytesToAddress(b) }

type fixture struct {
	cfg    oracle.Config
	calc   *Calculator
	epoch  *Epoch
	voters []*split.VoterWeights
}

// newFixture builds an epoch whose voter i has signing and delegation weight weights[i],
// no fee and no nodes, so every reward lands on its delegation address.
func newFixture(t *testing.T, weights ...uint16) *fixture {
	info := &EpochInfo{
		RewardEpochID:      testEpoch,
		EndVotingRoundID:   testEnd,
		CanonicalFeedOrder: []oracle.FeedID{btc, eth},
		SigningPolicy: SigningPolicy{
			RewardEpochID:      testEpoch,
			StartVotingRoundID: testStart,
			Seed:               oracle.Keccak256([]byte("policy seed")),
		},
	}
	for i, w := range weights {
		id := byte(i + 1)
		v := &split.VoterWeights{
			IdentityAddress:         addr(id, 1),
			SubmitAddress:           addr(id, 2),
			SubmitSignaturesAddress: addr(id, 3),
			SigningAddress:          addr(id, 4),
			DelegationAddress:       addr(id, 5),
			DelegationWeight:        big.NewInt(int64(w)),
			CappedDelegationWeight:  big.NewInt(int64(w)),
			SigningWeight:           big.NewInt(int64(w)),
		}
		info.Voters = append(info.Voters, v)
		info.SigningPolicy.Voters = append(info.SigningPolicy.Voters, v.SigningAddress)
		info.SigningPolicy.Weights = append(info.SigningPolicy.Weights, w)
	}
	epoch, err := PrepareEpoch(info)
	require.NoError(t, err)
	cfg := oracle.DefaultConfig()
	return &fixture{cfg: cfg, calc: NewCalculator(&cfg), epoch: epoch, voters: info.Voters}
}

func (f *fixture) offer(amount int64) *offer.PartialRewardOffer {
	feed := btc
	return &offer.PartialRewardOffer{
		VotingRoundID:             testRound,
		FeedID:                    &feed,
		Amount:                    big.NewInt(amount),
		MinRewardedTurnoutBIPS:    5000,
		PrimaryBandRewardSharePPM: 500000,
		SecondaryBandWidthPPM:     10000,
		ClaimBackAddress:          claimBack,
	}
}

// paid sums what a voter receives over all of its addresses.
func paid(claims []*claim.PartialClaim, v *split.VoterWeights) int64 {
	own := map[oracle.Address]bool{v.IdentityAddress: true, v.DelegationAddress: true}
	for _, n := range v.NodeIDs {
		own[n] = true
	}
	var sum int64
	for _, c := range claims {
		if own[c.Beneficiary] {
			sum += c.Amount.Int64()
		}
	}
	return sum
}

// burned sums the claim-back claims carrying detail.
func burned(claims []*claim.PartialClaim, detail string) int64 {
	var sum int64
	for _, c := range claims {
		if c.RewardDetailTag == detail && c.Beneficiary == claimBack {
			sum += c.Amount.Int64()
		}
	}
	return sum
}

func sig(protocol uint8, hash oracle.Bytes32, signer oracle.Address, ts int64) *Signature {
	return &Signature{ProtocolID: protocol, VotingRoundID: testRound, MessageHash: hash, Signer: signer, RelativeTimestamp: ts}
}

func fin(protocol uint8, hash oracle.Bytes32, sender oracle.Address, ts int64, ok bool) *Finalization {
	return &Finalization{ProtocolID: protocol, VotingRoundID: testRound, MessageHash: hash, SubmitAddress: sender, RelativeTimestamp: ts, Successful: ok}
}
