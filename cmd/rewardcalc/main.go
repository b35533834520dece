// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/oraclenet/rewardcalc/engine"
	"github.com/oraclenet/rewardcalc/oracle"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	common := []cli.Flag{
		networkFlag,
		configFlag,
		snapshotDirFlag,
		firstRoundFlag,
		dataDirFlag,
		cacheFlag,
		verbosityFlag,
	}
	app := cli.App{
		Version: fullVersion(),
		Name:    "rewardcalc",
		Usage:   "Reward distribution calculator of the price oracle network",
		Commands: []cli.Command{
			{
				Name:  "calc",
				Usage: "calculate the claims of a reward epoch, resuming after the last stored round",
				Flags: append([]cli.Flag{
					epochFlag,
					upToFlag,
					restartFlag,
					parallelismFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				}, common...),
				Action: calcAction,
			},
			{
				Name:   "distribution",
				Usage:  "build the reward distribution of a calculated epoch",
				Flags:  append([]cli.Flag{epochFlag, outFlag}, common...),
				Action: distributionAction,
			},
			{
				Name:   "selection",
				Usage:  "print the finalizer quorum of a voting round",
				Flags:  append([]cli.Flag{epochFlag, roundFlag, protocolFlag}, common...),
				Action: selectionAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func calcAction(ctx *cli.Context) error {
	initLogger(ctx)
	exitSignal := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer closeFunc()
		log.Info("metrics server started", "url", url)
	}

	app, err := newApp(ctx, engine.Options{Parallelism: ctx.Int(parallelismFlag.Name)})
	if err != nil {
		return err
	}
	defer app.Close()

	epochID, err := requireUint32(ctx, epochFlag.Name)
	if err != nil {
		return err
	}
	if ctx.Bool(restartFlag.Name) {
		if err := app.engine.ResetEpoch(epochID); err != nil {
			return err
		}
	}
	result, err := app.engine.CalculateEpoch(exitSignal, epochID, uint32(ctx.Uint64(upToFlag.Name)))
	if err != nil {
		return err
	}
	log.Info("done", "epoch", result.RewardEpochID, "folded", result.Folded, "lastRound", result.LastRound, "complete", result.Complete, "claims", len(result.Aggregate))
	return nil
}

func distributionAction(ctx *cli.Context) error {
	initLogger(ctx)
	app, err := newApp(ctx, engine.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	epochID, err := requireUint32(ctx, epochFlag.Name)
	if err != nil {
		return err
	}
	dist, err := app.engine.Distribution(handleExitSignal(), epochID)
	if err != nil {
		return err
	}
	return writeJSON(ctx.String(outFlag.Name), dist)
}

func selectionAction(ctx *cli.Context) error {
	initLogger(ctx)
	app, err := newApp(ctx, engine.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	epochID, err := requireUint32(ctx, epochFlag.Name)
	if err != nil {
		return err
	}
	round, err := requireUint32(ctx, roundFlag.Name)
	if err != nil {
		return err
	}
	protocol := ctx.Uint(protocolFlag.Name)
	if protocol > 255 {
		return errors.Errorf("invalid protocol id %d", protocol)
	}
	selected, err := app.engine.FinalizerSelection(handleExitSignal(), epochID, uint8(protocol), round)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		selected = []oracle.Address{}
	}
	return writeJSON("", selected)
}
