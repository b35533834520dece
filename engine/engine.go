// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine drives the reward calculation of an epoch: it computes rounds
// concurrently and folds them into the epoch aggregate strictly in round order.
package engine

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/oraclenet/rewardcalc/aggregate"
	"github.com/oraclenet/rewardcalc/claim"
	"github.com/oraclenet/rewardcalc/datasource"
	"github.com/oraclenet/rewardcalc/offer"
	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/reward"
)

// logger follows log.SetDefault, it is resolved on every use.
func logger() log.Logger { return log.Root().With("pkg", "engine") }

// Options tunes the engine.
type Options struct {
	Parallelism int // rounds computed concurrently, defaults to the number of CPUs
}

// Engine computes reward epochs.
type Engine struct {
	cfg         *oracle.Config
	provider    datasource.Provider
	store       *aggregate.Store
	calc        *reward.Calculator
	parallelism int
}

// New creates an engine.
func New(cfg *oracle.Config, provider datasource.Provider, store *aggregate.Store, opts Options) *Engine {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Engine{
		cfg:         cfg,
		provider:    provider,
		store:       store,
		calc:        reward.NewCalculator(cfg),
		parallelism: parallelism,
	}
}

// EpochResult is the state of an epoch calculation.
type EpochResult struct {
	RewardEpochID uint32
	Folded        bool   // at least one round of the epoch is folded
	LastRound     uint32 // last folded round, valid when Folded
	Complete      bool   // all rounds of the epoch are folded
	Aggregate     []*claim.Claim
}

// Epoch loads and prepares a reward epoch.
func (e *Engine) Epoch(ctx context.Context, rewardEpochID uint32) (*reward.Epoch, error) {
	info, err := e.provider.RewardEpochInfo(ctx, rewardEpochID)
	if err != nil {
		return nil, errors.Wrapf(err, "epoch %d info", rewardEpochID)
	}
	return reward.PrepareEpoch(info)
}

// RoundClaims computes the merged partial claims of one round.
func (e *Engine) RoundClaims(
	ctx context.Context,
	epoch *reward.Epoch,
	granulator *offer.Granulator,
	votingRoundID uint32,
) ([]*claim.PartialClaim, error) {
	start := time.Now()
	data, err := e.provider.RoundData(ctx, votingRoundID, e.cfg.BenchingWindow)
	if err != nil {
		if errors.Is(err, datasource.ErrDataUnavailable) {
			metricUnavailable().Add(1)
		}
		return nil, errors.Wrapf(err, "round %d data", votingRoundID)
	}
	offers, err := granulator.RoundOffers(votingRoundID)
	if err != nil {
		return nil, err
	}
	claims, err := e.calc.CalculateRoundClaims(epoch, offers, data)
	if err != nil {
		return nil, err
	}
	observeClaims(claims)
	metricRoundDuration().Observe(time.Since(start).Milliseconds())
	return claim.Merge(claims), nil
}

// resumePoint returns the first round to compute and the aggregate before it.
func (e *Engine) resumePoint(epoch *reward.Epoch) (uint32, []*claim.Claim, error) {
	last, err := e.store.LastRound(epoch.ID())
	if errors.Is(err, aggregate.ErrNotFound) {
		return epoch.StartVotingRoundID(), nil, nil
	}
	if err != nil {
		return 0, nil, err
	}
	if last < epoch.StartVotingRoundID() || last > epoch.EndVotingRoundID() {
		return 0, nil, errors.Errorf("epoch %d: stored last round %d outside of the epoch", epoch.ID(), last)
	}
	prev, err := e.store.Aggregate(epoch.ID(), last)
	if err != nil {
		return 0, nil, err
	}
	return last + 1, prev, nil
}

// CalculateEpoch computes the rounds of an epoch up to and including upTo (the epoch end
// when zero), resuming after the last stored round. Rounds are computed concurrently and
// folded in order; when a round fails, the rounds before it are still stored and the
// error is returned.
func (e *Engine) CalculateEpoch(ctx context.Context, rewardEpochID uint32, upTo uint32) (*EpochResult, error) {
	epoch, err := e.Epoch(ctx, rewardEpochID)
	if err != nil {
		return nil, err
	}
	granulator, err := epoch.Granulator(e.cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "epoch %d offers", rewardEpochID)
	}
	end := epoch.EndVotingRoundID()
	if upTo != 0 {
		end = min(end, upTo)
	}

	from, agg, err := e.resumePoint(epoch)
	if err != nil {
		return nil, err
	}
	result := &EpochResult{RewardEpochID: rewardEpochID, Aggregate: agg}
	if from > epoch.StartVotingRoundID() {
		result.Folded, result.LastRound = true, from-1
	}
	if from > end {
		result.Complete = result.Folded && result.LastRound == epoch.EndVotingRoundID()
		return result, nil
	}
	logger().Info("calculating epoch", "epoch", rewardEpochID, "from", from, "to", end)

	batch := uint32(e.parallelism * 4)
	for start := from; start <= end; start += batch {
		stop := min(end, start+batch-1)
		claims, calcErr := e.calculateBatch(ctx, epoch, granulator, start, stop)
		for i, partials := range claims {
			if partials == nil {
				break
			}
			round := start + uint32(i)
			if err := e.fold(result, round, partials); err != nil {
				return result, err
			}
		}
		if calcErr != nil {
			return result, calcErr
		}
	}
	result.Complete = result.Folded && result.LastRound == epoch.EndVotingRoundID()
	logger().Info("epoch calculated", "epoch", rewardEpochID, "folded", result.Folded, "lastRound", result.LastRound, "complete", result.Complete, "claims", len(result.Aggregate))
	return result, nil
}

// calculateBatch computes rounds [start, stop] concurrently. The returned slice is
// indexed by round offset; entries from the first failed round on are nil. Rounds do not
// cancel each other so the reported error is always the one of the earliest round.
func (e *Engine) calculateBatch(
	ctx context.Context,
	epoch *reward.Epoch,
	granulator *offer.Granulator,
	start, stop uint32,
) ([][]*claim.PartialClaim, error) {
	out := make([][]*claim.PartialClaim, stop-start+1)
	errs := make([]error, len(out))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i := range out {
		g.Go(func() error {
			claims, err := e.RoundClaims(ctx, epoch, granulator, start+uint32(i))
			if err != nil {
				errs[i] = err
				return nil
			}
			if claims == nil {
				claims = []*claim.PartialClaim{}
			}
			out[i] = claims
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			clear(out[i:])
			return out, err
		}
	}
	return out, nil
}

func (e *Engine) fold(result *EpochResult, votingRoundID uint32, partials []*claim.PartialClaim) error {
	agg, err := aggregate.Fold(result.RewardEpochID, result.Aggregate, partials)
	if err != nil {
		return errors.Wrapf(err, "fold round %d", votingRoundID)
	}
	if err := e.store.SaveRound(result.RewardEpochID, votingRoundID, partials, agg); err != nil {
		return err
	}
	result.Aggregate = agg
	result.Folded, result.LastRound = true, votingRoundID
	metricRoundsProcessed().Add(1)
	metricAggregateSize().Set(int64(len(agg)))
	metricLastRound().SetWithLabel(int64(votingRoundID), map[string]string{"epoch": strconv.FormatUint(uint64(result.RewardEpochID), 10)})
	logger().Debug("round folded", "epoch", result.RewardEpochID, "round", votingRoundID, "partials", len(partials), "aggregate", len(agg))
	return nil
}

// Distribution builds, stores and returns the reward distribution of a completely
// calculated epoch.
func (e *Engine) Distribution(ctx context.Context, rewardEpochID uint32) (*aggregate.RewardDistribution, error) {
	epoch, err := e.Epoch(ctx, rewardEpochID)
	if err != nil {
		return nil, err
	}
	last, err := e.store.LastRound(rewardEpochID)
	if err != nil {
		return nil, errors.Wrapf(err, "epoch %d not calculated", rewardEpochID)
	}
	if last != epoch.EndVotingRoundID() {
		return nil, errors.Errorf("epoch %d calculated up to round %d of %d", rewardEpochID, last, epoch.EndVotingRoundID())
	}
	agg, err := e.store.Aggregate(rewardEpochID, last)
	if err != nil {
		return nil, err
	}
	dist, err := aggregate.BuildDistribution(e.cfg.Network, rewardEpochID, agg)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveDistribution(dist); err != nil {
		return nil, err
	}
	logger().Info("distribution built", "epoch", rewardEpochID, "claims", len(dist.RewardClaims),
		"weightBased", dist.NoOfWeightBasedClaims, "root", dist.MerkleRoot)
	return dist, nil
}

// ResetEpoch drops the stored progress of an epoch.
func (e *Engine) ResetEpoch(rewardEpochID uint32) error {
	n, err := e.store.ResetEpoch(rewardEpochID)
	if err != nil {
		return err
	}
	metricLastRound().SetWithLabel(0, map[string]string{"epoch": strconv.FormatUint(uint64(rewardEpochID), 10)})
	logger().Info("epoch reset", "epoch", rewardEpochID, "records", n)
	return nil
}

// FinalizerSelection returns the finalizer quorum of a round.
func (e *Engine) FinalizerSelection(ctx context.Context, rewardEpochID uint32, protocolID uint8, votingRoundID uint32) ([]oracle.Address, error) {
	epoch, err := e.Epoch(ctx, rewardEpochID)
	if err != nil {
		return nil, err
	}
	if votingRoundID < epoch.StartVotingRoundID() || votingRoundID > epoch.EndVotingRoundID() {
		return nil, errors.Errorf("round %d outside of epoch %d", votingRoundID, rewardEpochID)
	}
	return epoch.FinalizerSelection(e.cfg, protocolID, votingRoundID)
}
