// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package split

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// VoterWeights is the per reward epoch weight breakdown of one registered voter.
type VoterWeights struct {
	IdentityAddress         oracle.Address   `json:"identityAddress"`
	SubmitAddress           oracle.Address   `json:"submitAddress"`
	SubmitSignaturesAddress oracle.Address   `json:"submitSignaturesAddress"`
	SigningAddress          oracle.Address   `json:"signingAddress"`
	DelegationAddress       oracle.Address   `json:"delegationAddress"`
	FeeBIPS                 uint16           `json:"feeBIPS"`
	DelegationWeight        *big.Int         `json:"delegationWeight"`
	CappedDelegationWeight  *big.Int         `json:"cappedDelegationWeight"`
	SigningWeight           *big.Int         `json:"signingWeight"`
	NodeIDs                 []oracle.Address `json:"nodeIds"`
	NodeWeights             []*big.Int       `json:"nodeWeights"`
}

// StakingWeight is the sum of the node weights.
func (v *VoterWeights) StakingWeight() *big.Int {
	sum := new(big.Int)
	for _, w := range v.NodeWeights {
		sum.Add(sum, w)
	}
	return sum
}

// Validate checks the record is well formed.
func (v *VoterWeights) Validate() error {
	if v.CappedDelegationWeight == nil || v.CappedDelegationWeight.Sign() < 0 {
		return errors.Errorf("voter %v: invalid capped delegation weight", v.IdentityAddress)
	}
	if v.SigningWeight == nil || v.SigningWeight.Sign() < 0 {
		return errors.Errorf("voter %v: invalid signing weight", v.IdentityAddress)
	}
	if v.DelegationWeight != nil && v.DelegationWeight.Sign() < 0 {
		return errors.Errorf("voter %v: invalid delegation weight", v.IdentityAddress)
	}
	if len(v.NodeIDs) != len(v.NodeWeights) {
		return errors.Errorf("voter %v: %d node ids but %d node weights", v.IdentityAddress, len(v.NodeIDs), len(v.NodeWeights))
	}
	for i, w := range v.NodeWeights {
		if w == nil || w.Sign() < 0 {
			return errors.Errorf("voter %v: invalid weight of node %v", v.IdentityAddress, v.NodeIDs[i])
		}
	}
	if v.FeeBIPS > oracle.TotalBIPS {
		return errors.Errorf("voter %v: fee %d bips out of range", v.IdentityAddress, v.FeeBIPS)
	}
	return nil
}

// VoterSet indexes the voters of a reward epoch by each of their addresses.
// The order of Voters() is the signing policy order.
type VoterSet struct {
	voters             []*VoterWeights
	byIdentity         map[oracle.Address]*VoterWeights
	bySubmit           map[oracle.Address]*VoterWeights
	bySubmitSignatures map[oracle.Address]*VoterWeights
	bySigning          map[oracle.Address]*VoterWeights
	totalSigningWeight *big.Int
}

// NewVoterSet builds the index. Every address role must be unique across voters.
func NewVoterSet(voters []*VoterWeights) (*VoterSet, error) {
	s := &VoterSet{
		voters:             voters,
		byIdentity:         make(map[oracle.Address]*VoterWeights, len(voters)),
		bySubmit:           make(map[oracle.Address]*VoterWeights, len(voters)),
		bySubmitSignatures: make(map[oracle.Address]*VoterWeights, len(voters)),
		bySigning:          make(map[oracle.Address]*VoterWeights, len(voters)),
		totalSigningWeight: new(big.Int),
	}
	for _, v := range voters {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		for _, idx := range []struct {
			name string
			m    map[oracle.Address]*VoterWeights
			addr oracle.Address
		}{
			{"identity", s.byIdentity, v.IdentityAddress},
			{"submit", s.bySubmit, v.SubmitAddress},
			{"submit signatures", s.bySubmitSignatures, v.SubmitSignaturesAddress},
			{"signing", s.bySigning, v.SigningAddress},
		} {
			if _, ok := idx.m[idx.addr]; ok {
				return nil, errors.Errorf("duplicate %s address %v", idx.name, idx.addr)
			}
			idx.m[idx.addr] = v
		}
		s.totalSigningWeight.Add(s.totalSigningWeight, v.SigningWeight)
	}
	return s, nil
}

// Voters returns the voters in signing policy order.
func (s *VoterSet) Voters() []*VoterWeights { return s.voters }

// Len returns the number of voters.
func (s *VoterSet) Len() int { return len(s.voters) }

// TotalSigningWeight returns the sum of signing weights.
func (s *VoterSet) TotalSigningWeight() *big.Int { return new(big.Int).Set(s.totalSigningWeight) }

func (s *VoterSet) ByIdentity(addr oracle.Address) (*VoterWeights, bool) {
	v, ok := s.byIdentity[addr]
	return v, ok
}

func (s *VoterSet) BySubmit(addr oracle.Address) (*VoterWeights, bool) {
	v, ok := s.bySubmit[addr]
	return v, ok
}

func (s *VoterSet) BySubmitSignatures(addr oracle.Address) (*VoterWeights, bool) {
	v, ok := s.bySubmitSignatures[addr]
	return v, ok
}

func (s *VoterSet) BySigning(addr oracle.Address) (*VoterWeights, bool) {
	v, ok := s.bySigning[addr]
	return v, ok
}
