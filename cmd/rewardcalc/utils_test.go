// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

// runWith runs action under an app carrying the flags of the commands.
func runWith(t *testing.T, action func(*cli.Context) error, args ...string) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{networkFlag, configFlag, epochFlag, roundFlag}
	app.Action = action
	require.NoError(t, app.Run(append([]string{"rewardcalc"}, args...)))
}

func TestLoadConfig(t *testing.T) {
	runWith(t, func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "mainnet", cfg.Network)
		return nil
	})

	runWith(t, func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		require.NoError(t, err)
		assert.True(t, cfg.RandomFeedSelection)
		return nil
	}, "--network", "testnet")

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("penaltyFactor: 7\n"), 0o600))
	runWith(t, func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Network)
		assert.Equal(t, uint64(7), cfg.PenaltyFactor)
		return nil
	}, "--network", "local", "--config", path)

	runWith(t, func(ctx *cli.Context) error {
		_, err := loadConfig(ctx)
		assert.Error(t, err)
		return nil
	}, "--network", "nowhere")

	runWith(t, func(ctx *cli.Context) error {
		_, err := loadConfig(ctx)
		assert.Error(t, err)
		return nil
	}, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestRequireUint32(t *testing.T) {
	runWith(t, func(ctx *cli.Context) error {
		epoch, err := requireUint32(ctx, epochFlag.Name)
		require.NoError(t, err)
		assert.Equal(t, uint32(12), epoch)

		_, err = requireUint32(ctx, roundFlag.Name)
		assert.Error(t, err, "missing")
		return nil
	}, "--epoch", "12")

	runWith(t, func(ctx *cli.Context) error {
		_, err := requireUint32(ctx, roundFlag.Name)
		assert.Error(t, err, "out of range")
		return nil
	}, "--round", "4294967296")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"a": 1}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(data))
}

func TestFullVersion(t *testing.T) {
	assert.Contains(t, fullVersion(), "-dev")
}
