// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package random

import (
	"math/big"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

var (
	ErrOutOfRange       = errors.New("value out of range")
	ErrInvalidThreshold = errors.New("threshold out of range")
)

// MaxThresholdBIPS bounds the weight share a threshold selection may ask for, which keeps
// the number of draws small.
const MaxThresholdBIPS = oracle.TotalBIPS / 2

// WeightedSelector draws voters with probability proportional to their weight, using
// values of a hash chain as the source of randomness. Equal inputs always give equal
// selections, so independent nodes agree on the outcome.
type WeightedSelector struct {
	voters     []oracle.Address
	weights    []*big.Int
	thresholds []*big.Int // thresholds[i] = sum(weights[0..i))
	total      *big.Int
	total256   *uint256.Int
}

// NewWeightedSelector builds the prefix sum table over the weights.
func NewWeightedSelector(voters []oracle.Address, weights []*big.Int) (*WeightedSelector, error) {
	if len(voters) != len(weights) {
		return nil, errors.Errorf("%d voters but %d weights", len(voters), len(weights))
	}
	s := &WeightedSelector{
		voters:     voters,
		weights:    weights,
		thresholds: make([]*big.Int, len(weights)),
		total:      new(big.Int),
	}
	for i, w := range weights {
		if w == nil || w.Sign() < 0 {
			return nil, errors.Errorf("invalid weight of voter %v", voters[i])
		}
		s.thresholds[i] = new(big.Int).Set(s.total)
		s.total.Add(s.total, w)
	}
	total256, overflow := uint256.FromBig(s.total)
	if overflow {
		return nil, errors.New("total weight exceeds 256 bits")
	}
	s.total256 = total256
	return s, nil
}

// Voters returns the voters in table order.
func (s *WeightedSelector) Voters() []oracle.Address { return s.voters }

// Thresholds returns a copy of the prefix sum table.
func (s *WeightedSelector) Thresholds() []*big.Int {
	out := make([]*big.Int, len(s.thresholds))
	for i, t := range s.thresholds {
		out[i] = new(big.Int).Set(t)
	}
	return out
}

// TotalWeight returns the sum of all weights.
func (s *WeightedSelector) TotalWeight() *big.Int { return new(big.Int).Set(s.total) }

func (s *WeightedSelector) upper(i int) *big.Int {
	if i+1 < len(s.thresholds) {
		return s.thresholds[i+1]
	}
	return s.total
}

// BinarySearch returns the unique index i with thresholds[i] <= x < thresholds[i+1],
// where the threshold past the last voter is the total weight. Zero weight voters are
// never returned.
func (s *WeightedSelector) BinarySearch(x *big.Int) (int, error) {
	if x.Sign() < 0 || x.Cmp(s.total) >= 0 {
		return 0, errors.Wrapf(ErrOutOfRange, "%v not in [0, %v)", x, s.total)
	}
	i := sort.Search(len(s.thresholds), func(i int) bool {
		return s.upper(i).Cmp(x) > 0
	})
	return i, nil
}

// SelectVoterIndex maps a 32 byte random value to a voter index.
func (s *WeightedSelector) SelectVoterIndex(seed oracle.Bytes32) (int, error) {
	if s.total256.IsZero() {
		return 0, errors.Wrap(ErrOutOfRange, "zero total weight")
	}
	x := new(uint256.Int).SetBytes32(seed[:])
	x.Mod(x, s.total256)
	return s.BinarySearch(x.ToBig())
}

// RandomSelectThresholdWeightVoters draws voters along the hash chain starting at seed,
// ignoring repeats, until the weight of the drawn voters reaches thresholdBIPS of the
// total weight. Voters are returned in the order they were first drawn.
func (s *WeightedSelector) RandomSelectThresholdWeightVoters(seed oracle.Bytes32, thresholdBIPS uint32) ([]oracle.Address, error) {
	if thresholdBIPS == 0 || thresholdBIPS > MaxThresholdBIPS {
		return nil, errors.Wrapf(ErrInvalidThreshold, "%d bips", thresholdBIPS)
	}
	if s.total.Sign() == 0 {
		return nil, nil
	}
	thresholdWeight := new(big.Int).Mul(s.total, big.NewInt(int64(thresholdBIPS)))
	thresholdWeight.Quo(thresholdWeight, big.NewInt(oracle.TotalBIPS))

	var (
		selected       []oracle.Address
		seen           = make(map[int]bool)
		selectedWeight = new(big.Int)
		current        = seed
	)
	for selectedWeight.Cmp(thresholdWeight) < 0 {
		index, err := s.SelectVoterIndex(current)
		if err != nil {
			return nil, err
		}
		if !seen[index] {
			seen[index] = true
			selected = append(selected, s.voters[index])
			selectedWeight.Add(selectedWeight, s.weights[index])
		}
		current = NextSeed(current)
	}
	return selected, nil
}
