// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"testing"

	"github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

var (
	hashA = oracle.Keccak256([]byte("a"))
	hashB = oracle.Keccak256([]byte("b"))
	hashC = oracle.Keccak256([]byte("c"))
)

func signers(e *SigningEligibility) []oracle.Address {
	var out []oracle.Address
	for _, v := range e.Signers {
		out = append(out, v.SigningAddress)
	}
	return out
}

func TestEligibleSigners_Finalized(t *testing.T) {
	f := newFixture(t, 100, 200, 300, 400)
	s := func(i int) oracle.Address { return f.voters[i].SigningAddress }
	data := &RoundData{
		VotingRoundID: testRound,
		Signatures: []*Signature{
			sig(oracle.FTSOProtocolID, hashA, s(3), 40), // before the reveal deadline
			sig(oracle.FTSOProtocolID, hashA, s(2), 80), // after grace and after the finalization
			sig(oracle.FTSOProtocolID, hashA, s(1), 60), // after grace, before the finalization
			sig(oracle.FTSOProtocolID, hashA, s(0), 50), // inside grace
			sig(oracle.FTSOProtocolID, hashB, s(3), 50), // wrong hash
			sig(oracle.FDCProtocolID, hashA, s(3), 50),  // other protocol
		},
		Finalizations: []*Finalization{
			fin(oracle.FTSOProtocolID, hashB, f.voters[3].SubmitSignaturesAddress, 48, false),
			fin(oracle.FTSOProtocolID, hashA, f.voters[0].SubmitSignaturesAddress, 70, true),
		},
	}
	e := f.calc.EligibleSigners(data, oracle.FTSOProtocolID, f.epoch.Voters)
	assert.Equal(t, hashA, e.MessageHash)
	assert.Equal(t, []oracle.Address{s(0), s(1)}, signers(e))
	assert.Empty(t, e.Detail)

	o := f.offer(1000)
	claims, err := f.calc.CalculateSigningRewards(o, o.Origin(claim.ProtocolFTSO, claim.RewardSigning), e, f.epoch.Voters)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), claim.Sum(claims).Int64())
	assert.Equal(t, int64(100), paid(claims, f.voters[0]))
	assert.Equal(t, int64(200), paid(claims, f.voters[1]))
	assert.Equal(t, int64(700), burned(claims, claim.DetailNonSigners))
}

func TestEligibleSigners_Deadlines(t *testing.T) {
	f := newFixture(t, 100)
	signer := f.voters[0].SigningAddress
	sender := f.voters[0].SubmitSignaturesAddress
	tests := []struct {
		name  string
		sigTs int64
		finTs int64
		want  bool
	}{
		{"at reveal deadline", 45, 50, true},
		{"before reveal deadline", 44, 50, false},
		{"last second of grace", 54, 50, true},
		{"grace over, finalized earlier", 55, 54, false},
		{"grace over, finalized at signature", 60, 60, true},
		{"finalized after epoch end", 90, 100, true},
		{"after epoch end", 91, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &RoundData{
				VotingRoundID: testRound,
				Signatures:    []*Signature{sig(oracle.FTSOProtocolID, hashA, signer, tt.sigTs)},
				Finalizations: []*Finalization{fin(oracle.FTSOProtocolID, hashA, sender, tt.finTs, true)},
			}
			e := f.calc.EligibleSigners(data, oracle.FTSOProtocolID, f.epoch.Voters)
			assert.Equal(t, tt.want, len(e.Signers) == 1)
			if !tt.want {
				assert.Equal(t, claim.DetailNoSignatures, e.Detail)
			}
		})
	}
}

func TestEligibleSigners_NotFinalized(t *testing.T) {
	f := newFixture(t, 100, 200, 300, 400)
	s := func(i int) oracle.Address { return f.voters[i].SigningAddress }
	data := &RoundData{
		VotingRoundID: testRound,
		Signatures: []*Signature{
			sig(oracle.FTSOProtocolID, hashA, s(0), 50),
			sig(oracle.FTSOProtocolID, hashA, s(0), 51), // counted once
			sig(oracle.FTSOProtocolID, hashA, s(1), 60),
			sig(oracle.FTSOProtocolID, hashB, s(2), 70),
			sig(oracle.FTSOProtocolID, hashC, s(3), 95), // after the voting epoch
			sig(oracle.FTSOProtocolID, hashC, addr(0xee), 50),
		},
	}
	e := f.calc.EligibleSigners(data, oracle.FTSOProtocolID, f.epoch.Voters)
	assert.True(t, e.MessageHash.IsZero())
	// 30% of 1000 is needed: hashA has 300, hashB 300, hashC nothing countable
	assert.Equal(t, []oracle.Address{s(0), s(1), s(2)}, signers(e))

	data.Signatures = data.Signatures[:2]
	e = f.calc.EligibleSigners(data, oracle.FTSOProtocolID, f.epoch.Voters)
	assert.Empty(t, e.Signers)
	assert.Equal(t, claim.DetailNoMostFrequentSignatures, e.Detail)

	o := f.offer(1000)
	claims, err := f.calc.CalculateSigningRewards(o, o.Origin(claim.ProtocolFTSO, claim.RewardSigning), e, f.epoch.Voters)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, int64(1000), burned(claims, claim.DetailNoMostFrequentSignatures))
}

func bitVote(length uint16, bits ...byte) []byte {
	return append([]byte{byte(length >> 8), byte(length)}, bits...)
}

func TestParseBitVote(t *testing.T) {
	bv, err := ParseBitVote(bitVote(8, 0x05))
	require.NoError(t, err)
	assert.Equal(t, uint16(8), bv.Length)
	assert.True(t, bv.Bit(0))
	assert.False(t, bv.Bit(1))
	assert.True(t, bv.Bit(2))

	_, err = ParseBitVote([]byte{0})
	assert.Error(t, err)
	_, err = ParseBitVote(bitVote(2, 0x04))
	assert.Error(t, err)

	empty, err := ParseBitVote(bitVote(0))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), empty.Length)
}

func TestBitVote_Dominates(t *testing.T) {
	consensus, _ := ParseBitVote(bitVote(8, 0x05))
	tests := []struct {
		name string
		vote []byte
		want bool
	}{
		{"equal", bitVote(8, 0x05), true},
		{"superset", bitVote(8, 0x07), true},
		{"missing bit", bitVote(8, 0x01), false},
		{"other length", bitVote(9, 0x05), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bv, err := ParseBitVote(tt.vote)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bv.Dominates(consensus))
		})
	}
}

// bitSet reads bit i of big endian bitvote bytes.
func bitSet(bits []byte, i int) bool {
	return bits[len(bits)-1-i/8]&(1<<(i%8)) != 0
}

func TestBitVote_DominatesPerBit(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 8)
	dominating := 0
	for range 1000 {
		var (
			consensus, vote []byte
			superset        bool
		)
		f.Fuzz(&consensus)
		f.Fuzz(&vote)
		f.Fuzz(&superset)
		vote = append(make([]byte, 0, len(consensus)), vote...)
		vote = vote[:min(len(vote), len(consensus))]
		for len(vote) < len(consensus) {
			vote = append([]byte{0}, vote...)
		}
		if superset {
			for i := range vote {
				vote[i] |= consensus[i]
			}
		}

		length := uint16(len(consensus) * 8)
		want := true
		for i := range int(length) {
			if bitSet(consensus, i) && !bitSet(vote, i) {
				want = false
				break
			}
		}
		if want {
			dominating++
		}

		c, err := ParseBitVote(bitVote(length, consensus...))
		require.NoError(t, err)
		v, err := ParseBitVote(bitVote(length, vote...))
		require.NoError(t, err)
		for i := range int(length) {
			require.Equal(t, bitSet(vote, i), v.Bit(i))
		}
		require.Equal(t, want, v.Dominates(c), "consensus %x vote %x", consensus, vote)
	}
	assert.Positive(t, dominating)
	assert.Less(t, dominating, 1000)
}

func TestFDCSigningRewards(t *testing.T) {
	f := newFixture(t, 100, 200, 300, 400)
	eligible := &SigningEligibility{Signers: []*split.VoterWeights{f.voters[0], f.voters[1], f.voters[2]}}
	fdc := &FDCData{
		ConsensusBitVote: bitVote(8, 0x05),
		BitVotes: []FDCBitVote{
			{SubmitAddress: f.voters[0].SubmitAddress, BitVote: bitVote(8, 0x07)},
			{SubmitAddress: f.voters[1].SubmitAddress, BitVote: bitVote(8, 0x05)},
			{SubmitAddress: f.voters[1].SubmitAddress, BitVote: bitVote(8, 0x01)}, // last one counts
		},
	}
	o := f.offer(1000)
	o.FeedID = nil
	claims, err := f.calc.CalculateFDCSigningRewards(o, eligible, f.epoch.Voters, fdc)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), claim.Sum(claims).Int64())
	assert.Equal(t, int64(100), paid(claims, f.voters[0]))
	assert.Equal(t, int64(160), paid(claims, f.voters[1]))
	assert.Equal(t, int64(240), paid(claims, f.voters[2]), "no bitvote at all")
	assert.Equal(t, int64(40+60), burned(claims, claim.DetailNonDominatingBitvote))
	assert.Equal(t, int64(400), burned(claims, claim.DetailNonSigners))
	for _, c := range claims {
		assert.Equal(t, claim.ProtocolFDC, c.ProtocolTag)
		assert.Equal(t, claim.RewardFDCSigning, c.RewardTypeTag)
	}

	// without attestation data nothing is cut
	claims, err = f.calc.CalculateFDCSigningRewards(o, eligible, f.epoch.Voters, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(200), paid(claims, f.voters[1]))
	assert.Zero(t, burned(claims, claim.DetailNonDominatingBitvote))
}
