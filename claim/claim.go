// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claim

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// ErrInvariant marks an internal-consistency fault: conservation violated, duplicate
// aggregate entries, unknown voter for an offender. It is never retried.
var ErrInvariant = errors.New("reward invariant violated")

// Invariantf wraps ErrInvariant with a formatted context.
func Invariantf(format string, args ...any) error {
	return errors.Wrapf(ErrInvariant, format, args...)
}

// Type is the kind of a reward claim as understood by the claiming contract.
type Type uint8

const (
	DIRECT Type = iota
	FEE
	WNAT
	MIRROR
	CCHAIN
)

var typeNames = [...]string{"DIRECT", "FEE", "WNAT", "MIRROR", "CCHAIN"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// IsWeightBased reports whether the claim is paid out to delegators by weight.
func (t Type) IsWeightBased() bool {
	return t == WNAT || t == MIRROR || t == CCHAIN
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, errors.Errorf("invalid claim type %d", uint8(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	for i, name := range typeNames {
		if name == string(text) {
			*t = Type(i)
			return nil
		}
	}
	return errors.Errorf("invalid claim type %q", text)
}

// Protocol tags.
const (
	ProtocolFTSO        = "FTSO"
	ProtocolFDC         = "FDC"
	ProtocolFastUpdates = "FAST_UPDATES"
)

// Reward type tags.
const (
	RewardMedian              = "MEDIAN"
	RewardSigning             = "SIGNING"
	RewardFinalization        = "FINALIZATION"
	RewardDoubleSigners       = "DOUBLE_SIGNERS"
	RewardRevealOffenders     = "REVEAL_OFFENDERS"
	RewardFDCSigning          = "FDC_SIGNING"
	RewardFDCFinalization     = "FDC_FINALIZATION"
	RewardFDCOffenders        = "FDC_OFFENDERS"
	RewardFastUpdatesAccuracy = "FAST_UPDATES_ACCURACY"
)

// Detail tags. The claim-back ones mark intentional burns.
const (
	DetailFee                       = "FEE"
	DetailParticipation             = "PARTICIPATION"
	DetailNode                      = "NODE"
	DetailFinalizer                 = "FINALIZER"
	DetailNoVoterWeight             = "NO_VOTER_WEIGHT"
	DetailFullOfferClaimBack        = "FULL_OFFER_CLAIM_BACK"
	DetailLowTurnoutClaimBack       = "LOW_TURNOUT_CLAIM_BACK"
	DetailNoNormalizedWeight        = "NO_NORMALIZED_WEIGHT"
	DetailNoSignatures              = "NO_SIGNATURES"
	DetailNoMostFrequentSignatures  = "NO_MOST_FREQUENT_SIGNATURES"
	DetailNonSigners                = "NON_SIGNERS"
	DetailNonDominatingBitvote      = "NON_DOMINATING_BITVOTE"
	DetailNoFinalization            = "NO_FINALIZATION"
	DetailOutsideOfGracePeriod      = "OUTSIDE_OF_GRACE_PERIOD"
	DetailNoEligibleFinalizers      = "NO_ELIGIBLE_FINALIZERS"
	DetailNotFinalizedInGracePeriod = "NOT_FINALIZED_IN_GRACE_PERIOD"
	DetailNoFastUpdates             = "NO_FAST_UPDATES"
	DetailFastUpdatesInaccurate     = "FAST_UPDATES_INACCURATE"
	DetailNoMedian                  = "NO_MEDIAN"
)

// PartialClaim is a claim produced for one round by one calculator. Amounts can be
// negative for penalties.
type PartialClaim struct {
	VotingRoundID   uint32
	Beneficiary     oracle.Address
	Amount          *big.Int
	ClaimType       Type
	OfferIndex      *int
	FeedID          *oracle.FeedID
	ProtocolTag     string
	RewardTypeTag   string
	RewardDetailTag string
}

// Clone returns a deep copy.
func (c *PartialClaim) Clone() *PartialClaim {
	cpy := *c
	cpy.Amount = new(big.Int).Set(c.Amount)
	if c.OfferIndex != nil {
		idx := *c.OfferIndex
		cpy.OfferIndex = &idx
	}
	if c.FeedID != nil {
		f := *c.FeedID
		cpy.FeedID = &f
	}
	return &cpy
}

// Claim is an epoch level claim. Tags are dropped, only beneficiary and type identify it.
type Claim struct {
	RewardEpochID uint32
	Beneficiary   oracle.Address
	Amount        *big.Int
	ClaimType     Type
}

// Clone returns a deep copy.
func (c *Claim) Clone() *Claim {
	cpy := *c
	cpy.Amount = new(big.Int).Set(c.Amount)
	return &cpy
}

// Origin carries the fields every claim derived from one offer shares.
type Origin struct {
	VotingRoundID uint32
	OfferIndex    *int
	FeedID        *oracle.FeedID
	Protocol      string
	RewardType    string
}

// WithRewardType returns a copy of the origin tagged with another reward type.
func (o Origin) WithRewardType(rewardType string) Origin {
	o.RewardType = rewardType
	return o
}

// New creates a claim tagged with the origin. The amount is copied.
func (o Origin) New(beneficiary oracle.Address, amount *big.Int, typ Type, detail string) *PartialClaim {
	c := &PartialClaim{
		VotingRoundID:   o.VotingRoundID,
		Beneficiary:     beneficiary,
		Amount:          new(big.Int).Set(amount),
		ClaimType:       typ,
		ProtocolTag:     o.Protocol,
		RewardTypeTag:   o.RewardType,
		RewardDetailTag: detail,
	}
	if o.OfferIndex != nil {
		idx := *o.OfferIndex
		c.OfferIndex = &idx
	}
	if o.FeedID != nil {
		f := *o.FeedID
		c.FeedID = &f
	}
	return c
}

// ClaimBack creates a DIRECT claim returning amount to the claim-back address.
func (o Origin) ClaimBack(claimBack oracle.Address, amount *big.Int, detail string) *PartialClaim {
	return o.New(claimBack, amount, DIRECT, detail)
}

// Sum returns the total amount of the partial claims.
func Sum(claims []*PartialClaim) *big.Int {
	total := new(big.Int)
	for _, c := range claims {
		total.Add(total, c.Amount)
	}
	return total
}

// SumClaims returns the total amount of the epoch claims.
func SumClaims(claims []*Claim) *big.Int {
	total := new(big.Int)
	for _, c := range claims {
		total.Add(total, c.Amount)
	}
	return total
}

// CheckConservation returns ErrInvariant if the claims do not add up to amount.
func CheckConservation(claims []*PartialClaim, amount *big.Int, what string) error {
	if sum := Sum(claims); sum.Cmp(amount) != 0 {
		return Invariantf("%s: distributed %v, expected %v", what, sum, amount)
	}
	return nil
}

var burnDetails = map[string]bool{
	DetailNoVoterWeight:             true,
	DetailFullOfferClaimBack:        true,
	DetailLowTurnoutClaimBack:       true,
	DetailNoNormalizedWeight:        true,
	DetailNoSignatures:              true,
	DetailNoMostFrequentSignatures:  true,
	DetailNonSigners:                true,
	DetailNonDominatingBitvote:      true,
	DetailNoFinalization:            true,
	DetailNoEligibleFinalizers:      true,
	DetailNotFinalizedInGracePeriod: true,
	DetailNoFastUpdates:             true,
	DetailFastUpdatesInaccurate:     true,
	DetailNoMedian:                  true,
}

// IsBurn reports whether the claim returns funds to a claim-back address.
func (c *PartialClaim) IsBurn() bool {
	return burnDetails[c.RewardDetailTag]
}
