// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Value: "mainnet",
		Usage: "network parameter preset (mainnet|testnet|local)",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml file overriding the network parameters",
	}
	snapshotDirFlag = cli.StringFlag{
		Name:  "snapshot-dir",
		Value: "./snapshots",
		Usage: "directory holding epoch-<id>.json and round-<id>.json snapshots",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the claim database",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of ram allocated to the claim database",
	}
	firstRoundFlag = cli.Uint64Flag{
		Name:  "first-round",
		Usage: "first voting round with snapshots, earlier benching history counts as empty",
	}
	epochFlag = cli.Uint64Flag{
		Name:  "epoch",
		Usage: "reward epoch id",
	}
	upToFlag = cli.Uint64Flag{
		Name:  "up-to",
		Usage: "last voting round to calculate, the end of the epoch when omitted",
	}
	restartFlag = cli.BoolFlag{
		Name:  "restart",
		Usage: "drop the stored progress of the epoch and calculate it from the first round",
	}
	roundFlag = cli.Uint64Flag{
		Name:  "round",
		Usage: "voting round id",
	}
	protocolFlag = cli.UintFlag{
		Name:  "protocol",
		Value: 100,
		Usage: "protocol id (100 prices, 200 attestations)",
	}
	parallelismFlag = cli.IntFlag{
		Name:  "parallelism",
		Usage: "rounds calculated concurrently, the number of CPUs when omitted",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "write the result to this file instead of stdout",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)
