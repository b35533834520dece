// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package aggregate folds round claims into the epoch aggregate, persists the progress
// and produces the final reward distribution.
package aggregate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/merkle"
	"github.com/oraclenet/rewardcalc/oracle"
)

// logger follows log.SetDefault, it is resolved on every use.
func logger() log.Logger { return log.Root().With("pkg", "aggregate") }

// ClaimWithProof is a claim with its merkle proof.
type ClaimWithProof struct {
	Body        *claim.Claim     `json:"body"`
	MerkleProof []oracle.Bytes32 `json:"merkleProof"`
}

// RewardDistribution is the epoch final payload verified by the claim contracts.
type RewardDistribution struct {
	RewardEpochID         uint32            `json:"rewardEpochId"`
	Network               string            `json:"network"`
	RewardClaims          []*ClaimWithProof `json:"rewardClaims"`
	NoOfWeightBasedClaims int               `json:"noOfWeightBasedClaims"`
	MerkleRoot            oracle.Bytes32    `json:"merkleRoot"`
}

// Fold merges the partial claims of one round into the running epoch aggregate.
func Fold(rewardEpochID uint32, prev []*claim.Claim, partials []*claim.PartialClaim) ([]*claim.Claim, error) {
	return claim.Aggregate(rewardEpochID, prev, claim.Merge(partials))
}

// BuildDistribution builds the distribution of an epoch aggregate. Non-positive claims
// are written off, the rest are hashed into the merkle tree in aggregate order.
func BuildDistribution(network string, rewardEpochID uint32, aggregate []*claim.Claim) (*RewardDistribution, error) {
	claims, writtenOff := claim.Positive(aggregate)
	if writtenOff.Sign() != 0 {
		logger().Info("negative claims written off", "epoch", rewardEpochID, "amount", writtenOff)
	}

	var (
		leaves = make([]oracle.Bytes32, len(claims))
		dist   = &RewardDistribution{
			RewardEpochID: rewardEpochID,
			Network:       network,
			RewardClaims:  make([]*ClaimWithProof, 0, len(claims)),
		}
	)
	for i, c := range claims {
		if c.RewardEpochID != rewardEpochID {
			return nil, claim.Invariantf("claim of epoch %d in distribution of epoch %d", c.RewardEpochID, rewardEpochID)
		}
		h, err := HashClaim(c)
		if err != nil {
			return nil, err
		}
		leaves[i] = h
		if c.ClaimType.IsWeightBased() {
			dist.NoOfWeightBasedClaims++
		}
	}

	tree := merkle.Build(leaves)
	if tree.Len() != len(leaves) {
		return nil, claim.Invariantf("epoch %d: %d claims hash to %d distinct leaves", rewardEpochID, len(leaves), tree.Len())
	}
	for i, c := range claims {
		proof, err := tree.Proof(leaves[i])
		if err != nil {
			return nil, err
		}
		dist.RewardClaims = append(dist.RewardClaims, &ClaimWithProof{Body: c, MerkleProof: proof})
	}
	dist.MerkleRoot = tree.Root()
	return dist, nil
}

// Verify checks every proof of the distribution against its root.
func (d *RewardDistribution) Verify() error {
	for _, c := range d.RewardClaims {
		h, err := HashClaim(c.Body)
		if err != nil {
			return err
		}
		if !merkle.Verify(h, c.MerkleProof, d.MerkleRoot) {
			return errors.Errorf("invalid proof for %v %v", c.Body.Beneficiary, c.Body.ClaimType)
		}
	}
	return nil
}

// Total returns the sum of the distributed amounts.
func (d *RewardDistribution) Total() *big.Int {
	total := new(big.Int)
	for _, c := range d.RewardClaims {
		total.Add(total, c.Body.Amount)
	}
	return total
}
