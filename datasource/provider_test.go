// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datasource

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/reward"
)

func addr(b byte) oracle.Address { return oracle.BytesToAddress([]byte{b}) }

func writeJSON(t *testing.T, dir, name string, v any) {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func writeRound(t *testing.T, dir string, d *reward.RoundData) {
	writeJSON(t, dir, RoundFile(d.VotingRoundID), d)
}

func TestFileProvider_Epoch(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 1})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.RewardEpochInfo(ctx, 7)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	writeJSON(t, dir, EpochFile(7), &reward.EpochInfo{RewardEpochID: 7, EndVotingRoundID: 99})
	info, err := p.RewardEpochInfo(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), info.EndVotingRoundID)

	// served from the cache once loaded
	require.NoError(t, os.Remove(filepath.Join(dir, EpochFile(7))))
	again, err := p.RewardEpochInfo(ctx, 7)
	require.NoError(t, err)
	assert.Same(t, info, again)

	writeJSON(t, dir, EpochFile(8), &reward.EpochInfo{RewardEpochID: 9})
	_, err = p.RewardEpochInfo(ctx, 8)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDataUnavailable))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.RewardEpochInfo(cancelled, 7)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileProvider_RoundData(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 1})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.RoundData(ctx, 10, 0)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	writeRound(t, dir, &reward.RoundData{VotingRoundID: 10, Status: reward.StatusNotOK})
	_, err = p.RoundData(ctx, 10, 0)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	writeRound(t, dir, &reward.RoundData{VotingRoundID: 10, Status: reward.StatusTimeoutOK})
	data, err := p.RoundData(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, reward.StatusTimeoutOK, data.Status)

	writeRound(t, dir, &reward.RoundData{VotingRoundID: 12, Status: reward.StatusOK})
	require.NoError(t, os.Rename(filepath.Join(dir, RoundFile(12)), filepath.Join(dir, RoundFile(11))))
	_, err = p.RoundData(ctx, 11, 0)
	assert.Error(t, err)
}

func TestFileProvider_Benching(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 1})
	require.NoError(t, err)
	ctx := context.Background()

	writeRound(t, dir, &reward.RoundData{VotingRoundID: 1, Status: reward.StatusOK,
		Commits: []oracle.Address{addr(1), addr(2)}, Reveals: []oracle.Address{addr(2)}})
	writeRound(t, dir, &reward.RoundData{VotingRoundID: 2, Status: reward.StatusOK,
		Commits: []oracle.Address{addr(3)}})
	writeRound(t, dir, &reward.RoundData{VotingRoundID: 3, Status: reward.StatusOK})
	writeRound(t, dir, &reward.RoundData{VotingRoundID: 4, Status: reward.StatusOK,
		BenchedVoters: []oracle.Address{addr(9)}})

	data, err := p.RoundData(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Address{addr(1), addr(3)}, data.BenchedVoters)

	data, err = p.RoundData(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Address{addr(3)}, data.BenchedVoters)

	data, err = p.RoundData(ctx, 3, 0)
	require.NoError(t, err)
	assert.Nil(t, data.BenchedVoters)

	// listed benched voters are kept as they are
	data, err = p.RoundData(ctx, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Address{addr(9)}, data.BenchedVoters)
}

func TestFileProvider_BenchingHistory(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	offender := &reward.RoundData{VotingRoundID: 1, Status: reward.StatusOK, Commits: []oracle.Address{addr(1)}}
	writeRound(t, dir, offender)
	writeRound(t, dir, &reward.RoundData{VotingRoundID: 2, Status: reward.StatusOK})

	p, err := NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 1})
	require.NoError(t, err)
	data, err := p.RoundData(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Address{addr(1)}, data.BenchedVoters)

	// round 0 is inside the window but before the first kept round
	p, err = NewFileProvider(dir, Options{CacheSize: 4})
	require.NoError(t, err)
	_, err = p.RoundData(ctx, 2, 5)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	p, err = NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 2})
	require.NoError(t, err)
	data, err = p.RoundData(ctx, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, data.BenchedVoters)

	offender.Status = reward.StatusNotOK
	writeRound(t, dir, offender)
	p, err = NewFileProvider(dir, Options{CacheSize: 4, FirstRound: 1})
	require.NoError(t, err)
	_, err = p.RoundData(ctx, 2, 5)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}
