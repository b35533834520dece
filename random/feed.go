// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package random

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/oraclenet/rewardcalc/oracle"
)

// FeedSelectionSeed is keccak256(abi.encode(rewardEpochSeed, votingRoundID)).
func FeedSelectionSeed(rewardEpochSeed oracle.Bytes32, votingRoundID uint32) oracle.Bytes32 {
	data, err := feedSeedArgs.Pack([32]byte(rewardEpochSeed), new(big.Int).SetUint64(uint64(votingRoundID)))
	if err != nil {
		panic(err)
	}
	return oracle.Keccak256(data)
}

// SelectFeedIndex picks the feed that receives the whole reward of a voting round when
// random feed selection is enabled. feedCount must be positive.
func SelectFeedIndex(rewardEpochSeed oracle.Bytes32, votingRoundID uint32, feedCount int) int {
	if feedCount <= 0 {
		panic("feed count must > 0")
	}
	seed := FeedSelectionSeed(rewardEpochSeed, votingRoundID)
	x := new(uint256.Int).SetBytes32(seed[:])
	x.Mod(x, uint256.NewInt(uint64(feedCount)))
	return int(x.Uint64())
}
