// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
)

// DataStatus tells whether the data of a round is confirmed available.
type DataStatus uint8

const (
	StatusOK        DataStatus = iota // all data indexed
	StatusTimeoutOK                   // indexer caught up after a timeout, data is complete
	StatusNotOK                       // data not available yet, the round must be retried
)

var statusNames = [...]string{"OK", "TIMEOUT_OK", "NOT_OK"}

func (s DataStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler.
func (s DataStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DataStatus) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = DataStatus(i)
			return nil
		}
	}
	return errors.Errorf("invalid data status %q", text)
}

// Usable reports whether calculations may run on the data.
func (s DataStatus) Usable() bool {
	return s == StatusOK || s == StatusTimeoutOK
}

// FeedValue is a submitted or computed feed value, possibly empty.
type FeedValue struct {
	Value   int64 `json:"value"`
	IsEmpty bool  `json:"isEmpty"`
}

// MedianResult is the outcome of the weighted median computation of one feed in one round.
// Voters are submit addresses; FeedValues and Weights are indexed like Voters.
type MedianResult struct {
	FeedID              oracle.FeedID    `json:"feedId"`
	VotingRoundID       uint32           `json:"votingRoundId"`
	Median              FeedValue        `json:"median"`
	Quartile1           FeedValue        `json:"quartile1"`
	Quartile3           FeedValue        `json:"quartile3"`
	Voters              []oracle.Address `json:"voters"`
	FeedValues          []FeedValue      `json:"feedValues"`
	Weights             []*big.Int       `json:"weights"`
	ParticipatingWeight *big.Int         `json:"participatingWeight"`
	TotalVotingWeight   *big.Int         `json:"totalVotingWeight"`
}

// Validate checks the result is well formed.
func (m *MedianResult) Validate() error {
	if len(m.FeedValues) != len(m.Voters) || len(m.Weights) != len(m.Voters) {
		return errors.Errorf("median result of %v: %d voters, %d values, %d weights",
			m.FeedID, len(m.Voters), len(m.FeedValues), len(m.Weights))
	}
	for i, w := range m.Weights {
		if w == nil || w.Sign() < 0 {
			return errors.Errorf("median result of %v: invalid weight of %v", m.FeedID, m.Voters[i])
		}
	}
	if m.ParticipatingWeight == nil || m.TotalVotingWeight == nil {
		return errors.Errorf("median result of %v: missing weight totals", m.FeedID)
	}
	return nil
}

// Signature is a deposited signature of a protocol message. Signer is the recovered
// signing address. RelativeTimestamp is in seconds from the start of the voting epoch
// following the signed round.
type Signature struct {
	ProtocolID        uint8          `json:"protocolId"`
	VotingRoundID     uint32         `json:"votingRoundId"`
	MessageHash       oracle.Bytes32 `json:"messageHash"`
	Signer            oracle.Address `json:"signer"`
	RelativeTimestamp int64          `json:"relativeTimestamp"`
}

// Finalization is a finalization transaction of a protocol message, relative timestamp
// as for signatures. Only the first successful one changed the chain state.
type Finalization struct {
	ProtocolID        uint8          `json:"protocolId"`
	VotingRoundID     uint32         `json:"votingRoundId"`
	MessageHash       oracle.Bytes32 `json:"messageHash"`
	SubmitAddress     oracle.Address `json:"submitAddress"`
	RelativeTimestamp int64          `json:"relativeTimestamp"`
	Successful        bool           `json:"successful"`
}

// FastUpdateValue is the fast updated value of a feed at the end of a round, in the
// same scale as the median.
type FastUpdateValue struct {
	FeedID oracle.FeedID `json:"feedId"`
	Value  int64         `json:"value"`
}

// FastUpdatesData lists fast update activity of a round. Submitters has one signing
// address per accepted update.
type FastUpdatesData struct {
	FeedValues []FastUpdateValue `json:"feedValues"`
	Submitters []oracle.Address  `json:"submitters"`
}

// FDCBitVote is a bitvote submitted by a voter in the choose phase.
type FDCBitVote struct {
	SubmitAddress     oracle.Address `json:"submitAddress"`
	BitVote           hexutil.Bytes  `json:"bitVote"`
	RelativeTimestamp int64          `json:"relativeTimestamp"`
}

// FDCData is the attestation protocol data of a round.
type FDCData struct {
	ConsensusBitVote hexutil.Bytes `json:"consensusBitVote"`
	BitVotes         []FDCBitVote  `json:"bitVotes"`
}

// RoundData is the immutable snapshot of everything the calculation of one voting round
// consumes. Signatures and finalizations of all protocols are listed in deposit order.
type RoundData struct {
	VotingRoundID uint32             `json:"votingRoundId"`
	Status        DataStatus         `json:"status"`
	MedianResults []*MedianResult    `json:"medianResults"`
	Signatures    []*Signature       `json:"signatures"`
	Finalizations []*Finalization    `json:"finalizations"`
	Commits       []oracle.Address   `json:"commits"`       // submit addresses that committed
	Reveals       []oracle.Address   `json:"reveals"`       // submit addresses with a reveal matching the commit
	BenchedVoters []oracle.Address   `json:"benchedVoters"` // submit addresses excluded from median rewards
	FastUpdates   *FastUpdatesData   `json:"fastUpdates,omitempty"`
	FDC           *FDCData           `json:"fdc,omitempty"`
}

// Validate checks the snapshot is consistent.
func (d *RoundData) Validate() error {
	seen := make(map[oracle.FeedID]bool, len(d.MedianResults))
	for _, m := range d.MedianResults {
		if m.VotingRoundID != d.VotingRoundID {
			return errors.Errorf("median result of %v belongs to round %d", m.FeedID, m.VotingRoundID)
		}
		if seen[m.FeedID] {
			return errors.Errorf("duplicate median result of %v", m.FeedID)
		}
		seen[m.FeedID] = true
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MedianResult returns the median result of a feed.
func (d *RoundData) MedianResult(feed oracle.FeedID) *MedianResult {
	for _, m := range d.MedianResults {
		if m.FeedID == feed {
			return m
		}
	}
	return nil
}

// SignaturesOf returns the signatures of a protocol for this round, in deposit order.
func (d *RoundData) SignaturesOf(protocolID uint8) []*Signature {
	var out []*Signature
	for _, s := range d.Signatures {
		if s.ProtocolID == protocolID && s.VotingRoundID == d.VotingRoundID {
			out = append(out, s)
		}
	}
	return out
}

// FinalizationsOf returns the finalizations of a protocol for this round, in deposit order.
func (d *RoundData) FinalizationsOf(protocolID uint8) []*Finalization {
	var out []*Finalization
	for _, f := range d.Finalizations {
		if f.ProtocolID == protocolID && f.VotingRoundID == d.VotingRoundID {
			out = append(out, f)
		}
	}
	return out
}

// FirstSuccessfulFinalization returns the finalization that made the protocol message
// final, or nil.
func (d *RoundData) FirstSuccessfulFinalization(protocolID uint8) *Finalization {
	for _, f := range d.FinalizationsOf(protocolID) {
		if f.Successful {
			return f
		}
	}
	return nil
}
