// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregate

import (
	"encoding/binary"
	"encoding/json"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/lvldb"
)

// Key spaces of the store. Every key continues with the big-endian reward epoch id.
var (
	partialsPrefix  = []byte("p") // + round id
	aggregatePrefix = []byte("a") // + round id
	lastRoundPrefix = []byte("l")
	distPrefix      = []byte("d")
)

// ErrNotFound is returned when the requested record was never stored.
var ErrNotFound = errors.New("not found")

// Store persists per round partial claims and running aggregates, so an epoch
// calculation can resume after the last completed round.
type Store struct {
	db *lvldb.LevelDB
}

// NewStore wraps an opened level db.
func NewStore(db *lvldb.LevelDB) *Store {
	return &Store{db: db}
}

func epochKey(prefix []byte, rewardEpochID uint32) []byte {
	return binary.BigEndian.AppendUint32(append([]byte(nil), prefix...), rewardEpochID)
}

func roundKey(prefix []byte, rewardEpochID, votingRoundID uint32) []byte {
	return binary.BigEndian.AppendUint32(epochKey(prefix, rewardEpochID), votingRoundID)
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

func (s *Store) get(key []byte, v any) error {
	enc, err := s.db.Get(key)
	if err != nil {
		if lvldb.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	data, err := snappy.Decode(nil, enc)
	if err != nil {
		return errors.Wrap(err, "decompress")
	}
	return errors.Wrap(json.Unmarshal(data, v), "decode")
}

// SaveRound stores the merged partial claims and the aggregate after a round and marks the
// round as the last completed one, atomically.
func (s *Store) SaveRound(rewardEpochID, votingRoundID uint32, partials []*claim.PartialClaim, agg []*claim.Claim) error {
	p, err := encode(partials)
	if err != nil {
		return errors.Wrap(err, "encode partial claims")
	}
	a, err := encode(agg)
	if err != nil {
		return errors.Wrap(err, "encode aggregate")
	}
	batch := s.db.NewBatch()
	batch.Put(roundKey(partialsPrefix, rewardEpochID, votingRoundID), p)
	batch.Put(roundKey(aggregatePrefix, rewardEpochID, votingRoundID), a)
	batch.Put(epochKey(lastRoundPrefix, rewardEpochID), binary.BigEndian.AppendUint32(nil, votingRoundID))
	return errors.Wrapf(batch.Write(), "save round %d", votingRoundID)
}

// LastRound returns the last completed round of an epoch.
func (s *Store) LastRound(rewardEpochID uint32) (uint32, error) {
	v, err := s.db.Get(epochKey(lastRoundPrefix, rewardEpochID))
	if err != nil {
		if lvldb.IsNotFound(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if len(v) != 4 {
		return 0, errors.Errorf("corrupted last round of epoch %d", rewardEpochID)
	}
	return binary.BigEndian.Uint32(v), nil
}

// PartialClaims returns the merged partial claims of a round.
func (s *Store) PartialClaims(rewardEpochID, votingRoundID uint32) ([]*claim.PartialClaim, error) {
	var out []*claim.PartialClaim
	if err := s.get(roundKey(partialsPrefix, rewardEpochID, votingRoundID), &out); err != nil {
		return nil, errors.Wrapf(err, "partial claims of round %d", votingRoundID)
	}
	return out, nil
}

// Aggregate returns the aggregate of the epoch after a round.
func (s *Store) Aggregate(rewardEpochID, votingRoundID uint32) ([]*claim.Claim, error) {
	var out []*claim.Claim
	if err := s.get(roundKey(aggregatePrefix, rewardEpochID, votingRoundID), &out); err != nil {
		return nil, errors.Wrapf(err, "aggregate of round %d", votingRoundID)
	}
	return out, nil
}

// SaveDistribution stores the final distribution of an epoch.
func (s *Store) SaveDistribution(d *RewardDistribution) error {
	v, err := encode(d)
	if err != nil {
		return errors.Wrap(err, "encode distribution")
	}
	return s.db.Put(epochKey(distPrefix, d.RewardEpochID), v)
}

// Distribution returns the final distribution of an epoch.
func (s *Store) Distribution(rewardEpochID uint32) (*RewardDistribution, error) {
	var d RewardDistribution
	if err := s.get(epochKey(distPrefix, rewardEpochID), &d); err != nil {
		return nil, errors.Wrapf(err, "distribution of epoch %d", rewardEpochID)
	}
	return &d, nil
}

// Rounds returns the ids of the rounds stored for an epoch, ascending.
func (s *Store) Rounds(rewardEpochID uint32) ([]uint32, error) {
	prefix := epochKey(aggregatePrefix, rewardEpochID)
	it := s.db.NewPrefixIterator(prefix)
	defer it.Release()
	var out []uint32
	for it.Next() {
		k := it.Key()
		if len(k) != len(prefix)+4 {
			continue
		}
		out = append(out, binary.BigEndian.Uint32(k[len(prefix):]))
	}
	return out, it.Error()
}

// ResetEpoch deletes everything stored for an epoch and returns the number of deleted
// records. A following calculation starts again from the first round.
func (s *Store) ResetEpoch(rewardEpochID uint32) (int, error) {
	batch := s.db.NewBatch()
	for _, prefix := range [][]byte{partialsPrefix, aggregatePrefix} {
		it := s.db.NewPrefixIterator(epochKey(prefix, rewardEpochID))
		for it.Next() {
			batch.Delete(append([]byte(nil), it.Key()...))
		}
		it.Release()
		if err := it.Error(); err != nil {
			return 0, errors.Wrapf(err, "reset epoch %d", rewardEpochID)
		}
	}
	rounds := batch.Len()
	batch.Delete(epochKey(lastRoundPrefix, rewardEpochID))
	batch.Delete(epochKey(distPrefix, rewardEpochID))
	if err := batch.Write(); err != nil {
		return 0, errors.Wrapf(err, "reset epoch %d", rewardEpochID)
	}
	return rounds, nil
}
