// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
)

func TestFastUpdatesClaims(t *testing.T) {
	f := newFixture(t, 100, 200, 300)
	s := func(i int) oracle.Address { return f.voters[i].SigningAddress }
	median := f.medianResult(1000, 990, 1010, 1000)
	fu := &FastUpdatesData{
		FeedValues: []FastUpdateValue{{FeedID: eth, Value: 5}, {FeedID: btc, Value: 1010}},
		Submitters: []oracle.Address{s(2), s(0), s(2), addr(0xee), s(2)},
	}
	o := f.offer(800)
	// 1% band around 1000
	claims, err := f.calc.CalculateFastUpdatesClaims(o, median, fu, f.epoch.Voters)
	require.NoError(t, err)
	assert.Equal(t, int64(800), claim.Sum(claims).Int64())
	assert.Equal(t, int64(200), paid(claims, f.voters[0]))
	assert.Equal(t, int64(0), paid(claims, f.voters[1]))
	assert.Equal(t, int64(600), paid(claims, f.voters[2]))
	for _, c := range claims {
		assert.Equal(t, claim.ProtocolFastUpdates, c.ProtocolTag)
		assert.Equal(t, claim.RewardFastUpdatesAccuracy, c.RewardTypeTag)
	}
}

func TestFastUpdatesClaims_ClaimBack(t *testing.T) {
	f := newFixture(t, 100)
	s := f.voters[0].SigningAddress
	median := f.medianResult(1000, 990, 1010, 1000)
	emptyMedian := f.medianResult(1000, 990, 1010, 1000)
	emptyMedian.Median.IsEmpty = true
	accurate := &FastUpdatesData{FeedValues: []FastUpdateValue{{FeedID: btc, Value: 1000}}, Submitters: []oracle.Address{s}}

	tests := []struct {
		name   string
		burn   bool
		median *MedianResult
		fu     *FastUpdatesData
		detail string
	}{
		{"burned offer", true, median, accurate, claim.DetailFullOfferClaimBack},
		{"no data", false, median, nil, claim.DetailNoFastUpdates},
		{"no submitters", false, median, &FastUpdatesData{FeedValues: accurate.FeedValues}, claim.DetailNoFastUpdates},
		{"feed not updated", false, median, &FastUpdatesData{Submitters: []oracle.Address{s}}, claim.DetailNoFastUpdates},
		{"unknown submitters", false, median, &FastUpdatesData{FeedValues: accurate.FeedValues, Submitters: []oracle.Address{addr(0xee)}}, claim.DetailNoFastUpdates},
		{"no median", false, nil, accurate, claim.DetailNoMedian},
		{"empty median", false, emptyMedian, accurate, claim.DetailNoMedian},
		{"inaccurate", false, median, &FastUpdatesData{FeedValues: []FastUpdateValue{{FeedID: btc, Value: 1011}}, Submitters: []oracle.Address{s}}, claim.DetailFastUpdatesInaccurate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := f.offer(500)
			o.ShouldBeBurned = tt.burn
			claims, err := f.calc.CalculateFastUpdatesClaims(o, tt.median, tt.fu, f.epoch.Voters)
			require.NoError(t, err)
			require.Len(t, claims, 1)
			assert.Equal(t, int64(500), burned(claims, tt.detail))
		})
	}
}
