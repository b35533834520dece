// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claim

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// Amounts are serialized as decimal strings so that no consumer truncates them to floats.

type partialClaimJSON struct {
	VotingRoundID   uint32         `json:"votingRoundId"`
	Beneficiary     oracle.Address `json:"beneficiary"`
	Amount          string         `json:"amount"`
	ClaimType       Type           `json:"claimType"`
	OfferIndex      *int           `json:"offerIndex,omitempty"`
	FeedID          *oracle.FeedID `json:"feedId,omitempty"`
	ProtocolTag     string         `json:"protocolTag,omitempty"`
	RewardTypeTag   string         `json:"rewardTypeTag,omitempty"`
	RewardDetailTag string         `json:"rewardDetailTag,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c *PartialClaim) MarshalJSON() ([]byte, error) {
	return json.Marshal(&partialClaimJSON{
		VotingRoundID:   c.VotingRoundID,
		Beneficiary:     c.Beneficiary,
		Amount:          c.Amount.String(),
		ClaimType:       c.ClaimType,
		OfferIndex:      c.OfferIndex,
		FeedID:          c.FeedID,
		ProtocolTag:     c.ProtocolTag,
		RewardTypeTag:   c.RewardTypeTag,
		RewardDetailTag: c.RewardDetailTag,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *PartialClaim) UnmarshalJSON(data []byte) error {
	var v partialClaimJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := parseAmount(v.Amount)
	if err != nil {
		return err
	}
	*c = PartialClaim{
		VotingRoundID:   v.VotingRoundID,
		Beneficiary:     v.Beneficiary,
		Amount:          amount,
		ClaimType:       v.ClaimType,
		OfferIndex:      v.OfferIndex,
		FeedID:          v.FeedID,
		ProtocolTag:     v.ProtocolTag,
		RewardTypeTag:   v.RewardTypeTag,
		RewardDetailTag: v.RewardDetailTag,
	}
	return nil
}

type claimJSON struct {
	RewardEpochID uint32         `json:"rewardEpochId"`
	Beneficiary   oracle.Address `json:"beneficiary"`
	Amount        string         `json:"amount"`
	ClaimType     Type           `json:"claimType"`
}

// MarshalJSON implements json.Marshaler.
func (c *Claim) MarshalJSON() ([]byte, error) {
	return json.Marshal(&claimJSON{
		RewardEpochID: c.RewardEpochID,
		Beneficiary:   c.Beneficiary,
		Amount:        c.Amount.String(),
		ClaimType:     c.ClaimType,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Claim) UnmarshalJSON(data []byte) error {
	var v claimJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := parseAmount(v.Amount)
	if err != nil {
		return err
	}
	*c = Claim{
		RewardEpochID: v.RewardEpochID,
		Beneficiary:   v.Beneficiary,
		Amount:        amount,
		ClaimType:     v.ClaimType,
	}
	return nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
