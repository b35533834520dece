// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

func TestPenalty(t *testing.T) {
	assert.Equal(t, int64(-3000), Penalty(big.NewInt(100), big.NewInt(1000), big.NewInt(1000), 30).Int64())
	assert.Equal(t, int64(0), Penalty(big.NewInt(1), big.NewInt(1), big.NewInt(3), 1).Int64(), "truncates toward zero")
	assert.Equal(t, int64(-1), Penalty(big.NewInt(2), big.NewInt(2), big.NewInt(3), 1).Int64())
}

func TestCalculatePenalties(t *testing.T) {
	f := newFixture(t, 100, 200, 700)
	o := f.offer(1000)
	origin := o.Origin(claim.ProtocolFTSO, claim.RewardDoubleSigners)

	claims, err := f.calc.CalculatePenalties(o, origin, []*split.VoterWeights{f.voters[1]}, f.epoch.Voters)
	require.NoError(t, err)
	assert.Equal(t, int64(-6000), paid(claims, f.voters[1]))
	assert.Equal(t, int64(-6000), claim.Sum(claims).Int64())
	for _, c := range claims {
		assert.Equal(t, claim.RewardDoubleSigners, c.RewardTypeTag)
		assert.LessOrEqual(t, c.Amount.Sign(), 0)
	}

	claims, err = f.calc.CalculatePenalties(f.offer(0), origin, []*split.VoterWeights{f.voters[1]}, f.epoch.Voters)
	require.NoError(t, err)
	assert.Empty(t, claims)

	claims, err = f.calc.CalculatePenalties(o, origin, nil, f.epoch.Voters)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestOffenderWeights(t *testing.T) {
	f := newFixture(t, 100, 200)
	got, err := offenderWeights([]oracle.Address{f.voters[1].SigningAddress}, f.epoch.Voters.BySigning, "double signer")
	require.NoError(t, err)
	assert.Equal(t, []*split.VoterWeights{f.voters[1]}, got)

	_, err = offenderWeights([]oracle.Address{addr(0xee)}, f.epoch.Voters.BySigning, "double signer")
	assert.True(t, errors.Is(err, claim.ErrInvariant))
}
