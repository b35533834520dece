// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datasource supplies reward epoch and voting round snapshots to the engine.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/cache"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/reward"
)

// logger follows log.SetDefault, it is resolved on every use.
func logger() log.Logger { return log.Root().With("pkg", "datasource") }

// ErrDataUnavailable is returned when the data of a round is not confirmed available yet.
// The round must be retried later.
var ErrDataUnavailable = errors.New("data unavailable")

// Provider supplies snapshots. Implementations must be safe for concurrent use.
type Provider interface {
	// RewardEpochInfo returns the info of a reward epoch.
	RewardEpochInfo(ctx context.Context, rewardEpochID uint32) (*reward.EpochInfo, error)
	// RoundData returns the snapshot of a voting round, with the voters benched by reveal
	// offenses in the preceding benchingWindow rounds.
	RoundData(ctx context.Context, votingRoundID uint32, benchingWindow uint32) (*reward.RoundData, error)
}

// Options configures a FileProvider.
type Options struct {
	CacheSize int // epoch infos kept in memory
	// FirstRound is the first voting round snapshots are kept from. Benching history
	// before it counts as empty, history from it on must be available.
	FirstRound uint32
}

// FileProvider reads snapshots written as epoch-<id>.json and round-<id>.json files in a
// directory. Epoch infos are cached.
type FileProvider struct {
	dir        string
	firstRound uint32
	epochs     *cache.LRU
}

// NewFileProvider creates a provider reading dir.
func NewFileProvider(dir string, opts Options) (*FileProvider, error) {
	epochs, err := cache.NewLRU(max(opts.CacheSize, 1))
	if err != nil {
		return nil, errors.Wrap(err, "epoch cache")
	}
	return &FileProvider{dir: dir, firstRound: opts.FirstRound, epochs: epochs}, nil
}

// EpochFile returns the file name of a reward epoch snapshot.
func EpochFile(rewardEpochID uint32) string { return fmt.Sprintf("epoch-%d.json", rewardEpochID) }

// RoundFile returns the file name of a voting round snapshot.
func RoundFile(votingRoundID uint32) string { return fmt.Sprintf("round-%d.json", votingRoundID) }

func (p *FileProvider) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrDataUnavailable, "%s missing", name)
		}
		return errors.Wrapf(err, "read %s", name)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode %s", name)
}

// RewardEpochInfo implements Provider.
func (p *FileProvider) RewardEpochInfo(ctx context.Context, rewardEpochID uint32) (*reward.EpochInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := p.epochs.GetOrLoad(rewardEpochID, func(any) (any, error) {
		var info reward.EpochInfo
		if err := p.readJSON(EpochFile(rewardEpochID), &info); err != nil {
			return nil, err
		}
		if info.RewardEpochID != rewardEpochID {
			return nil, errors.Errorf("%s holds epoch %d", EpochFile(rewardEpochID), info.RewardEpochID)
		}
		logger().Debug("epoch info loaded", "epoch", rewardEpochID, "voters", len(info.Voters))
		return &info, nil
	})
	if err != nil {
		return nil, err
	}
	if stats, changed := p.epochs.Stats(); changed {
		logger().Debug("epoch cache", "hits", stats.Hits, "misses", stats.Misses, "rate", stats.HitRate)
	}
	return v.(*reward.EpochInfo), nil
}

func (p *FileProvider) readRound(votingRoundID uint32) (*reward.RoundData, error) {
	var data reward.RoundData
	if err := p.readJSON(RoundFile(votingRoundID), &data); err != nil {
		return nil, err
	}
	if data.VotingRoundID != votingRoundID {
		return nil, errors.Errorf("%s holds round %d", RoundFile(votingRoundID), data.VotingRoundID)
	}
	if !data.Status.Usable() {
		return nil, errors.Wrapf(ErrDataUnavailable, "round %d status %v", votingRoundID, data.Status)
	}
	return &data, nil
}

// RoundData implements Provider. When the snapshot does not list benched voters, they
// are derived from the reveal offenses of the preceding benchingWindow rounds. Every
// history round from the provider's first round on must be available, otherwise the
// round is reported unavailable.
func (p *FileProvider) RoundData(ctx context.Context, votingRoundID uint32, benchingWindow uint32) (*reward.RoundData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.readRound(votingRoundID)
	if err != nil {
		return nil, err
	}
	if data.BenchedVoters != nil || benchingWindow == 0 {
		return data, nil
	}

	from := max(votingRoundID-min(votingRoundID, benchingWindow), p.firstRound)
	var history [][]oracle.Address
	for r := from; r < votingRoundID; r++ {
		prev, err := p.readRound(r)
		if err != nil {
			return nil, errors.Wrapf(err, "benching history of round %d", votingRoundID)
		}
		history = append(history, reward.RevealOffenders(prev.Commits, prev.Reveals))
	}
	data.BenchedVoters = reward.BenchedVoters(history, int(benchingWindow))
	return data, nil
}
