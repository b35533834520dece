// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(55), cfg.SignatureGraceDeadline())
	assert.Equal(t, uint64(65), cfg.FinalizationGraceDeadline())
	assert.Equal(t, uint64(90), cfg.VotingEpochEnd())
	assert.Equal(t, BurnAddress, cfg.BurnAddress)
}

func TestNetworkConfig(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "local"} {
		cfg, err := NetworkConfig(name)
		require.NoError(t, err)
		assert.Equal(t, name, cfg.Network)
		assert.NoError(t, cfg.Validate(), name)
	}
	testnet, _ := NetworkConfig("testnet")
	assert.True(t, testnet.RandomFeedSelection)

	_, err := NetworkConfig("moon")
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("penaltyFactor: 10\nsigningBIPS: 2000\n"), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cfg.PenaltyFactor)
	assert.Equal(t, uint32(2000), cfg.SigningBIPS)
	assert.Equal(t, uint64(90), cfg.VotingEpochDurationSeconds, "unset fields keep the base value")

	_, err = ParseConfig([]byte("revealDeadlineSeconds: 100\n"), DefaultConfig())
	assert.Error(t, err)

	_, err = ParseConfig([]byte("signingBIPS: 6000\nfinalizationBIPS: 5000\n"), DefaultConfig())
	assert.Error(t, err)

	_, err = ParseConfig([]byte("finalizationVoterSelectionBIPS: 0\n"), DefaultConfig())
	assert.Error(t, err)

	_, err = ParseConfig([]byte("burnAddress: nope\n"), DefaultConfig())
	assert.Error(t, err)

	cfg, err = ParseConfig([]byte("burnAddress: \"0x0000000000000000000000000000000000000001\"\n"), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, BytesToAddress([]byte{1}), cfg.BurnAddress)
}
