// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/oraclenet/rewardcalc/aggregate"
	"github.com/oraclenet/rewardcalc/datasource"
	"github.com/oraclenet/rewardcalc/engine"
	"github.com/oraclenet/rewardcalc/lvldb"
	"github.com/oraclenet/rewardcalc/oracle"
)

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)))
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".rewardcalc")
	}
	return "./data"
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func loadConfig(ctx *cli.Context) (*oracle.Config, error) {
	cfg, err := oracle.NetworkConfig(ctx.String(networkFlag.Name))
	if err != nil {
		return nil, err
	}
	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if cfg, err = oracle.ParseConfig(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "config %s", path)
		}
	}
	return &cfg, nil
}

func requireUint32(ctx *cli.Context, name string) (uint32, error) {
	if !ctx.IsSet(name) {
		return 0, errors.Errorf("missing --%s", name)
	}
	v := ctx.Uint64(name)
	if v > math.MaxUint32 {
		return 0, errors.Errorf("--%s out of range", name)
	}
	return uint32(v), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

type app struct {
	db     *lvldb.LevelDB
	engine *engine.Engine
}

func newApp(ctx *cli.Context, opts engine.Options) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := datasource.NewFileProvider(ctx.String(snapshotDirFlag.Name), datasource.Options{
		CacheSize:  8,
		FirstRound: uint32(ctx.Uint64(firstRoundFlag.Name)),
	})
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(ctx.String(dataDirFlag.Name), cfg.Network)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	db, err := lvldb.New(filepath.Join(dir, "claims.db"), lvldb.Options{
		CacheSize:              ctx.Int(cacheFlag.Name),
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, err
	}
	log.Info("claim database opened", "dir", dir, "network", cfg.Network)
	return &app{
		db:     db,
		engine: engine.New(cfg, provider, aggregate.NewStore(db), opts),
	}, nil
}

func (a *app) Close() {
	log.Info("closing claim database...")
	if err := a.db.Close(); err != nil {
		log.Warn("failed to close claim database", "err", err)
	}
}
