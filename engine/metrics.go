// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/metrics"
)

var (
	metricRoundsProcessed = metrics.LazyLoadCounter("rounds_processed_count")
	metricRoundDuration   = metrics.LazyLoadHistogram("round_duration_ms", metrics.BucketRoundMillis)
	metricClaimsEmitted   = metrics.LazyLoadCounterVec("claims_emitted_count", []string{"protocol", "reward_type"})
	metricBurns           = metrics.LazyLoadCounterVec("burns_count", []string{"detail"})
	metricLastRound       = metrics.LazyLoadGaugeVec("last_round", []string{"epoch"})
	metricUnavailable     = metrics.LazyLoadCounter("data_unavailable_count")
	metricAggregateSize   = metrics.LazyLoadGauge("aggregate_claims")
)

func observeClaims(claims []*claim.PartialClaim) {
	for _, c := range claims {
		metricClaimsEmitted().AddWithLabel(1, map[string]string{"protocol": c.ProtocolTag, "reward_type": c.RewardTypeTag})
		if c.IsBurn() {
			metricBurns().AddWithLabel(1, map[string]string{"detail": c.RewardDetailTag})
		}
	}
}
