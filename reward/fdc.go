// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// BitVote is an attestation bitvote: a declared number of requests and the bit set of
// the requests the voter confirms. Bit i stands for request i.
type BitVote struct {
	Length uint16
	Bits   *big.Int
}

// ParseBitVote decodes a bitvote encoded as a 2 byte big-endian length followed by the
// big-endian bit set.
func ParseBitVote(data []byte) (BitVote, error) {
	if len(data) < 2 {
		return BitVote{}, errors.Errorf("bitvote too short: %d bytes", len(data))
	}
	bv := BitVote{
		Length: binary.BigEndian.Uint16(data),
		Bits:   new(big.Int).SetBytes(data[2:]),
	}
	if bv.Bits.BitLen() > int(bv.Length) {
		return BitVote{}, errors.Errorf("bitvote sets bit %d beyond length %d", bv.Bits.BitLen()-1, bv.Length)
	}
	return bv, nil
}

// Bit reports whether request i is confirmed.
func (v BitVote) Bit(i int) bool {
	return v.Bits.Bit(i) == 1
}

// Dominates reports whether v confirms every request confirmed by consensus. Bitvotes of
// different declared lengths never dominate each other.
func (v BitVote) Dominates(consensus BitVote) bool {
	if v.Length != consensus.Length {
		return false
	}
	for i := 0; i < int(consensus.Length); i++ {
		if consensus.Bit(i) && !v.Bit(i) {
			return false
		}
	}
	return true
}

// consensus returns the consensus bitvote. ok is false without attestation data.
func (d *FDCData) consensus() (bv BitVote, ok bool, err error) {
	if d == nil || len(d.ConsensusBitVote) == 0 {
		return BitVote{}, false, nil
	}
	bv, err = ParseBitVote(d.ConsensusBitVote)
	if err != nil {
		return BitVote{}, false, errors.Wrap(err, "consensus bitvote")
	}
	return bv, true, nil
}

// bitVoteOf returns the last well formed bitvote of a submitter.
func (d *FDCData) bitVoteOf(submitter oracle.Address) (BitVote, bool) {
	if d == nil {
		return BitVote{}, false
	}
	var (
		found BitVote
		ok    bool
	)
	for _, v := range d.BitVotes {
		if v.SubmitAddress != submitter {
			continue
		}
		if bv, err := ParseBitVote(v.BitVote); err == nil {
			found, ok = bv, true
		}
	}
	return found, ok
}

// bitVoters returns the submitters of well formed bitvotes.
func (d *FDCData) bitVoters() map[oracle.Address]bool {
	out := make(map[oracle.Address]bool)
	if d == nil {
		return out
	}
	for _, v := range d.BitVotes {
		if _, err := ParseBitVote(v.BitVote); err == nil {
			out[v.SubmitAddress] = true
		}
	}
	return out
}
