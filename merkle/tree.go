// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package merkle implements the sorted-pair keccak256 merkle tree verified by the on-chain
// claim contracts.
package merkle

import (
	"bytes"
	"slices"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// ErrUnknownLeaf is returned when a proof is requested for a leaf not in the tree.
var ErrUnknownLeaf = errors.New("leaf not in tree")

// HashPair hashes two nodes in ascending byte order.
func HashPair(a, b oracle.Bytes32) oracle.Bytes32 {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return oracle.Keccak256(a[:], b[:])
}

// Tree is a complete binary tree stored as an array: node i has children 2i+1 and 2i+2,
// the sorted distinct leaves occupy the last n slots.
type Tree struct {
	nodes []oracle.Bytes32
	n     int
}

// Build builds the tree of the given leaves. Duplicates are dropped and leaves sorted.
func Build(leaves []oracle.Bytes32) *Tree {
	sorted := slices.Clone(leaves)
	slices.SortFunc(sorted, func(a, b oracle.Bytes32) int { return bytes.Compare(a[:], b[:]) })
	sorted = slices.Compact(sorted)

	n := len(sorted)
	if n == 0 {
		return &Tree{}
	}
	nodes := make([]oracle.Bytes32, 2*n-1)
	copy(nodes[n-1:], sorted)
	for i := n - 2; i >= 0; i-- {
		nodes[i] = HashPair(nodes[2*i+1], nodes[2*i+2])
	}
	return &Tree{nodes: nodes, n: n}
}

// Root returns the root, zero for an empty tree.
func (t *Tree) Root() oracle.Bytes32 {
	if t.n == 0 {
		return oracle.Bytes32{}
	}
	return t.nodes[0]
}

// Leaves returns the sorted distinct leaves.
func (t *Tree) Leaves() []oracle.Bytes32 {
	if t.n == 0 {
		return nil
	}
	return slices.Clone(t.nodes[t.n-1:])
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.n }

// Proof returns the sibling path from leaf to the root.
func (t *Tree) Proof(leaf oracle.Bytes32) ([]oracle.Bytes32, error) {
	if t.n == 0 {
		return nil, errors.Wrapf(ErrUnknownLeaf, "%v", leaf)
	}
	pos, found := slices.BinarySearchFunc(t.nodes[t.n-1:], leaf, func(a, b oracle.Bytes32) int { return bytes.Compare(a[:], b[:]) })
	if !found {
		return nil, errors.Wrapf(ErrUnknownLeaf, "%v", leaf)
	}
	start := t.n - 1 + pos
	depth := 0
	for i := start; i > 0; i = (i - 1) / 2 {
		depth++
	}
	proof := make([]oracle.Bytes32, 0, depth)
	for i := start; i > 0; i = (i - 1) / 2 {
		sibling := i + 1
		if i%2 == 0 {
			sibling = i - 1
		}
		proof = append(proof, t.nodes[sibling])
	}
	return proof, nil
}

// Verify checks that proof links leaf to root.
func Verify(leaf oracle.Bytes32, proof []oracle.Bytes32, root oracle.Bytes32) bool {
	h := leaf
	for _, p := range proof {
		h = HashPair(h, p)
	}
	return h == root
}
