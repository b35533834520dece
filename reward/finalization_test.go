// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/random"
)

func (f *fixture) finalize(finalizations ...*Finalization) ([]*claim.PartialClaim, error) {
	selected := []oracle.Address{f.voters[0].SigningAddress, f.voters[1].SigningAddress, f.voters[2].SigningAddress}
	eligible := map[oracle.Address]bool{
		f.voters[0].IdentityAddress: true,
		f.voters[1].IdentityAddress: true,
		f.voters[2].IdentityAddress: true,
	}
	return f.finalizeWith(selected, eligible, finalizations...)
}

func (f *fixture) finalizeWith(selected []oracle.Address, eligible map[oracle.Address]bool, finalizations ...*Finalization) ([]*claim.PartialClaim, error) {
	o := f.offer(900)
	data := &RoundData{VotingRoundID: testRound, Finalizations: finalizations}
	return f.calc.CalculateFinalizationRewards(o, o.Origin(claim.ProtocolFTSO, claim.RewardFinalization),
		data, oracle.FTSOProtocolID, selected, eligible, f.epoch.Voters)
}

func TestFinalizationRewards_Quorum(t *testing.T) {
	f := newFixture(t, 100, 200, 300, 400)
	claims, err := f.finalize(
		fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 50, true),
		fin(oracle.FTSOProtocolID, hashA, f.voters[1].SigningAddress, 60, false),
		fin(oracle.FTSOProtocolID, hashA, f.voters[2].SubmitSignaturesAddress, 65, false), // after grace
		fin(oracle.FTSOProtocolID, hashA, f.voters[3].SubmitSignaturesAddress, 51, false), // not selected
	)
	require.NoError(t, err)
	assert.Equal(t, int64(900), claim.Sum(claims).Int64())
	assert.Equal(t, int64(300), paid(claims, f.voters[0]))
	assert.Equal(t, int64(300), paid(claims, f.voters[1]))
	assert.Equal(t, int64(0), paid(claims, f.voters[2]))
	assert.Equal(t, int64(0), paid(claims, f.voters[3]))
	assert.Equal(t, int64(300), burned(claims, claim.DetailNotFinalizedInGracePeriod))
}

func TestFinalizationRewards_NotEligible(t *testing.T) {
	f := newFixture(t, 100, 200, 300)
	selected := []oracle.Address{f.voters[0].SigningAddress, f.voters[1].SigningAddress}
	eligible := map[oracle.Address]bool{f.voters[0].IdentityAddress: true}
	claims, err := f.finalizeWith(selected, eligible,
		fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 50, true),
		fin(oracle.FTSOProtocolID, hashA, f.voters[1].SubmitSignaturesAddress, 50, false),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(450), paid(claims, f.voters[0]))
	assert.Equal(t, int64(450), burned(claims, claim.DetailNotFinalizedInGracePeriod))
}

func TestFinalizationRewards_ClaimBack(t *testing.T) {
	f := newFixture(t, 100, 200, 300)

	claims, err := f.finalize(fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 50, false))
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, int64(900), burned(claims, claim.DetailNoFinalization))

	claims, err = f.finalizeWith(nil, nil, fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 50, true))
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, int64(900), burned(claims, claim.DetailNoEligibleFinalizers))
}

func TestFinalizationRewards_OutsideGrace(t *testing.T) {
	f := newFixture(t, 100, 200, 300)
	outsider := addr(0x77)

	claims, err := f.finalize(fin(oracle.FTSOProtocolID, hashA, outsider, 65, true))
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, outsider, claims[0].Beneficiary)
	assert.Equal(t, claim.DIRECT, claims[0].ClaimType)
	assert.Equal(t, claim.DetailOutsideOfGracePeriod, claims[0].RewardDetailTag)
	assert.False(t, claims[0].IsBurn())

	// one second earlier the quorum is rewarded instead
	claims, err = f.finalize(fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 64, true))
	require.NoError(t, err)
	assert.Equal(t, int64(300), paid(claims, f.voters[0]))
}

func TestFinalizationRewards_UnknownSelected(t *testing.T) {
	f := newFixture(t, 100)
	_, err := f.finalizeWith([]oracle.Address{addr(0xee)}, nil,
		fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 50, true))
	assert.True(t, errors.Is(err, claim.ErrInvariant))
}

func TestEpoch_FinalizerSelection(t *testing.T) {
	f := newFixture(t, 100, 200, 300, 400, 500, 600, 700, 800)
	selected, err := f.epoch.FinalizerSelection(&f.cfg, oracle.FTSOProtocolID, testRound)
	require.NoError(t, err)
	require.NotEmpty(t, selected)
	for i := 1; i < len(selected); i++ {
		assert.Equal(t, -1, selected[i-1].Compare(selected[i]))
	}
	again, err := f.epoch.FinalizerSelection(&f.cfg, oracle.FTSOProtocolID, testRound)
	require.NoError(t, err)
	assert.Equal(t, selected, again)
	for _, a := range selected {
		_, ok := f.epoch.Voters.BySigning(a)
		assert.True(t, ok)
	}

	// same set as drawn by the selector, only reordered
	drawn, err := f.epoch.Selector.RandomSelectThresholdWeightVoters(
		random.InitialHashSeed(f.epoch.Info.SigningPolicy.Seed, oracle.FTSOProtocolID, testRound),
		f.cfg.FinalizationVoterSelectionBIPS,
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, drawn, selected)
}
