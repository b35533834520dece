// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package random

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/oraclenet/rewardcalc/oracle"
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	seedArgs = abi.Arguments{
		{Type: mustType("bytes32")},
		{Type: mustType("uint256")},
		{Type: mustType("uint256")},
	}
	feedSeedArgs = abi.Arguments{
		{Type: mustType("bytes32")},
		{Type: mustType("uint256")},
	}
)

// InitialHashSeed derives the per round seed of a protocol from the reward epoch seed,
// as keccak256(abi.encode(seed, protocolID, votingRoundID)).
func InitialHashSeed(seed oracle.Bytes32, protocolID uint8, votingRoundID uint32) oracle.Bytes32 {
	data, err := seedArgs.Pack(
		[32]byte(seed),
		new(big.Int).SetUint64(uint64(protocolID)),
		new(big.Int).SetUint64(uint64(votingRoundID)),
	)
	if err != nil {
		// static types, never happens
		panic(err)
	}
	return oracle.Keccak256(data)
}

// NextSeed advances the hash chain.
func NextSeed(seed oracle.Bytes32) oracle.Bytes32 {
	return oracle.Keccak256(seed[:])
}

// RandomNumberSequence returns k values of the hash chain starting at seed itself.
func RandomNumberSequence(seed oracle.Bytes32, k int) []oracle.Bytes32 {
	seq := make([]oracle.Bytes32, 0, k)
	current := seed
	for range k {
		seq = append(seq, current)
		current = NextSeed(current)
	}
	return seq
}
