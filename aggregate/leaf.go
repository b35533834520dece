// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
)

// MaxAmountBits is the width of the on-chain amount field.
const MaxAmountBits = 120

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var leafArgs = abi.Arguments{
	{Type: mustType("uint24")},
	{Type: mustType("bytes20")},
	{Type: mustType("uint120")},
	{Type: mustType("uint8")},
}

// checkAmount verifies the amount is non-negative and fits the on-chain field.
func checkAmount(amount *big.Int) error {
	v, overflow := uint256.FromBig(amount)
	if amount.Sign() < 0 || overflow || v.BitLen() > MaxAmountBits {
		return errors.Errorf("amount %v does not fit uint%d", amount, MaxAmountBits)
	}
	return nil
}

// HashClaim returns the merkle leaf of a claim:
// keccak256(abi.encode(uint24 rewardEpochId, bytes20 beneficiary, uint120 amount, uint8 claimType)).
func HashClaim(c *claim.Claim) (oracle.Bytes32, error) {
	if c.RewardEpochID >= 1<<24 {
		return oracle.Bytes32{}, errors.Errorf("reward epoch %d does not fit uint24", c.RewardEpochID)
	}
	if err := checkAmount(c.Amount); err != nil {
		return oracle.Bytes32{}, errors.Wrapf(err, "claim of %v", c.Beneficiary)
	}
	packed, err := leafArgs.Pack(
		big.NewInt(int64(c.RewardEpochID)),
		[20]byte(c.Beneficiary),
		c.Amount,
		uint8(c.ClaimType),
	)
	if err != nil {
		return oracle.Bytes32{}, errors.Wrap(err, "encode claim")
	}
	return oracle.Keccak256(packed), nil
}
