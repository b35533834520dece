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
)

func (f *fixture) medianResult(median, q1, q3 int64, values ...int64) *MedianResult {
	m := &MedianResult{
		FeedID:              btc,
		VotingRoundID:       testRound,
		Median:              FeedValue{Value: median},
		Quartile1:           FeedValue{Value: q1},
		Quartile3:           FeedValue{Value: q3},
		ParticipatingWeight: big.NewInt(0),
		TotalVotingWeight:   big.NewInt(0),
	}
	for i, v := range values {
		voter := f.voters[i]
		m.Voters = append(m.Voters, voter.SubmitAddress)
		m.FeedValues = append(m.FeedValues, FeedValue{Value: v})
		m.Weights = append(m.Weights, voter.SigningWeight)
		m.ParticipatingWeight.Add(m.ParticipatingWeight, voter.SigningWeight)
		m.TotalVotingWeight.Add(m.TotalVotingWeight, voter.SigningWeight)
	}
	return m
}

func TestMedianRewards_Bands(t *testing.T) {
	f := newFixture(t, 10, 10, 10, 10)
	// voter 0 and 3 are within 1% of the median, 0, 1 and 3 strictly inside the quartiles
	result := f.medianResult(100, 90, 110, 100, 95, 200, 101)

	claims, err := f.calc.CalculateMedianRewardClaims(f.offer(6000), result, f.epoch.Voters, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), claim.Sum(claims).Int64())
	assert.Equal(t, int64(2500), paid(claims, f.voters[0]))
	assert.Equal(t, int64(1000), paid(claims, f.voters[1]))
	assert.Equal(t, int64(0), paid(claims, f.voters[2]))
	assert.Equal(t, int64(2500), paid(claims, f.voters[3]))
	for _, c := range claims {
		assert.Equal(t, claim.ProtocolFTSO, c.ProtocolTag)
		assert.Equal(t, claim.RewardMedian, c.RewardTypeTag)
		assert.Contains(t, []claim.Type{claim.FEE, claim.WNAT}, c.ClaimType)
	}
}

func TestMedianRewards_Benched(t *testing.T) {
	f := newFixture(t, 10, 10, 10, 10)
	result := f.medianResult(100, 90, 110, 100, 95, 200, 101)
	benched := map[oracle.Address]bool{f.voters[0].SubmitAddress: true}

	claims, err := f.calc.CalculateMedianRewardClaims(f.offer(6000), result, f.epoch.Voters, benched)
	require.NoError(t, err)
	assert.Equal(t, int64(0), paid(claims, f.voters[0]))
	assert.Equal(t, int64(1500), paid(claims, f.voters[1]))
	assert.Equal(t, int64(4500), paid(claims, f.voters[3]))
}

func TestMedianRewards_NoSecondaryBand(t *testing.T) {
	f := newFixture(t, 10, 30, 10)
	o := f.offer(800)
	o.SecondaryBandWidthPPM = 0
	// nobody hit the median exactly, IQR members split by weight
	result := f.medianResult(100, 90, 110, 99, 101, 120)

	claims, err := f.calc.CalculateMedianRewardClaims(o, result, f.epoch.Voters, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(200), paid(claims, f.voters[0]))
	assert.Equal(t, int64(600), paid(claims, f.voters[1]))
	assert.Equal(t, int64(0), paid(claims, f.voters[2]))
}

func TestMedianRewards_Boundary(t *testing.T) {
	f := newFixture(t, 10)
	o := f.offer(1000)
	o.SecondaryBandWidthPPM = 0
	result := f.medianResult(100, 95, 110, 95)

	claims, err := f.calc.CalculateMedianRewardClaims(o, result, f.epoch.Voters, nil)
	require.NoError(t, err)
	if IncludeOnBoundary(btc, testRound, f.voters[0].SubmitAddress) {
		assert.Equal(t, int64(1000), paid(claims, f.voters[0]))
	} else {
		assert.Equal(t, int64(1000), burned(claims, claim.DetailNoNormalizedWeight))
	}
}

func TestIncludeOnBoundary(t *testing.T) {
	var in, out int
	for i := range 64 {
		if IncludeOnBoundary(btc, uint32(i), addr(1)) {
			in++
		} else {
			out++
		}
	}
	assert.Positive(t, in)
	assert.Positive(t, out)
	assert.Equal(t, IncludeOnBoundary(btc, 5, addr(1)), IncludeOnBoundary(btc, 5, addr(1)))
}

func TestMedianRewards_ClaimBack(t *testing.T) {
	f := newFixture(t, 10, 10)

	lowTurnout := f.medianResult(100, 90, 110, 100, 100)
	lowTurnout.TotalVotingWeight = big.NewInt(100)
	empty := f.medianResult(100, 90, 110, 100, 100)
	empty.Median.IsEmpty = true

	tests := []struct {
		name   string
		offer  int64
		burn   bool
		result *MedianResult
		detail string
	}{
		{"burned offer", 100, true, f.medianResult(100, 90, 110, 100), claim.DetailFullOfferClaimBack},
		{"no median", 100, false, nil, claim.DetailNoMedian},
		{"low turnout", 100, false, lowTurnout, claim.DetailLowTurnoutClaimBack},
		{"empty median", 100, false, empty, claim.DetailLowTurnoutClaimBack},
		{"nobody in bands", 100, false, f.medianResult(100, 90, 110, 300, 300), claim.DetailNoNormalizedWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := f.offer(tt.offer)
			o.ShouldBeBurned = tt.burn
			claims, err := f.calc.CalculateMedianRewardClaims(o, tt.result, f.epoch.Voters, nil)
			require.NoError(t, err)
			require.Len(t, claims, 1)
			assert.Equal(t, claimBack, claims[0].Beneficiary)
			assert.Equal(t, claim.DIRECT, claims[0].ClaimType)
			assert.Equal(t, tt.detail, claims[0].RewardDetailTag)
			assert.Equal(t, tt.offer, claims[0].Amount.Int64())
		})
	}
}

func TestMedianRewards_UnknownVoter(t *testing.T) {
	f := newFixture(t, 10)
	result := f.medianResult(100, 90, 110, 100)
	result.Voters[0] = addr(0xee)
	_, err := f.calc.CalculateMedianRewardClaims(f.offer(10), result, f.epoch.Voters, nil)
	assert.True(t, errors.Is(err, claim.ErrInvariant))
}
