// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"slices"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
)

// DoubleSigners returns the signing addresses that signed at least two distinct messages
// of a protocol for a round, counting signatures up to cutoff (relative timestamp), sorted.
func DoubleSigners(votingRoundID uint32, protocolID uint8, sigs []*Signature, cutoff int64) []oracle.Address {
	hashes := make(map[oracle.Address]map[oracle.Bytes32]bool)
	for _, s := range sigs {
		if s.VotingRoundID != votingRoundID || s.ProtocolID != protocolID || s.RelativeTimestamp > cutoff {
			continue
		}
		m := hashes[s.Signer]
		if m == nil {
			m = make(map[oracle.Bytes32]bool)
			hashes[s.Signer] = m
		}
		m[s.MessageHash] = true
	}
	var out []oracle.Address
	for signer, m := range hashes {
		if len(m) > 1 {
			out = append(out, signer)
		}
	}
	oracle.SortAddresses(out)
	return out
}

// RevealOffenders returns the submit addresses that committed without a valid reveal,
// sorted.
func RevealOffenders(commits, reveals []oracle.Address) []oracle.Address {
	revealed := make(map[oracle.Address]bool, len(reveals))
	for _, r := range reveals {
		revealed[r] = true
	}
	var out []oracle.Address
	for _, c := range commits {
		if !revealed[c] && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	oracle.SortAddresses(out)
	return out
}

// BenchedVoters returns the voters benched in the round following history: those that
// were reveal offenders in any of the last window rounds. history holds the reveal
// offenders of preceding rounds, oldest first.
func BenchedVoters(history [][]oracle.Address, window int) []oracle.Address {
	if window <= 0 {
		return nil
	}
	start := max(0, len(history)-window)
	seen := make(map[oracle.Address]bool)
	var out []oracle.Address
	for _, offenders := range history[start:] {
		for _, a := range offenders {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	oracle.SortAddresses(out)
	return out
}

// FDCOffense is a misbehaviour in the attestation protocol.
type FDCOffense string

const (
	OffenseNoRevealOnBitVote   FDCOffense = "NO_REVEAL_ON_BITVOTE"
	OffenseWrongSignature      FDCOffense = "WRONG_SIGNATURE"
	OffenseNonConsensusBitVote FDCOffense = "NON_CONSENSUS_BITVOTE"
)

// FDCOffender is a voter, by submit address, with its offenses in ascending order.
type FDCOffender struct {
	SubmitAddress oracle.Address `json:"submitAddress"`
	Offenses      []FDCOffense   `json:"offenses"`
}

// FDCOffenders detects attestation offenders among the voters that signed within the
// voting epoch: signing a hash other than the consensus one, signing the consensus hash
// without a bitvote, and signing it with a bitvote that does not dominate the consensus
// bitvote. Without a successful finalization there is no consensus and no offender.
// A malformed consensus bitvote is an ErrInvariant.
func FDCOffenders(data *RoundData, epochEnd int64, lookup func(signer oracle.Address) (oracle.Address, bool)) ([]*FDCOffender, error) {
	fin := data.FirstSuccessfulFinalization(oracle.FDCProtocolID)
	if fin == nil {
		return nil, nil
	}
	consensus, hasConsensus, err := data.FDC.consensus()
	if err != nil {
		return nil, claim.Invariantf("round %d: %v", data.VotingRoundID, err)
	}

	offenses := make(map[oracle.Address]map[FDCOffense]bool)
	add := func(a oracle.Address, o FDCOffense) {
		m := offenses[a]
		if m == nil {
			m = make(map[FDCOffense]bool)
			offenses[a] = m
		}
		m[o] = true
	}
	for _, s := range data.SignaturesOf(oracle.FDCProtocolID) {
		if s.RelativeTimestamp > epochEnd {
			continue
		}
		submitter, ok := lookup(s.Signer)
		if !ok {
			continue
		}
		if s.MessageHash != fin.MessageHash {
			add(submitter, OffenseWrongSignature)
			continue
		}
		bv, ok := data.FDC.bitVoteOf(submitter)
		switch {
		case !ok:
			add(submitter, OffenseNoRevealOnBitVote)
		case hasConsensus && !bv.Dominates(consensus):
			add(submitter, OffenseNonConsensusBitVote)
		}
	}

	out := make([]*FDCOffender, 0, len(offenses))
	for addr, m := range offenses {
		o := &FDCOffender{SubmitAddress: addr}
		for off := range m {
			o.Offenses = append(o.Offenses, off)
		}
		slices.Sort(o.Offenses)
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *FDCOffender) int { return a.SubmitAddress.Compare(b.SubmitAddress) })
	return out, nil
}
