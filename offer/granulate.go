// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package offer

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/random"
)

// FeedOffers are the partial offers of one feed in one round, ordered by offer index.
type FeedOffers struct {
	FeedID oracle.FeedID
	Offers []*PartialRewardOffer
}

// RoundOffers are all partial offers of one voting round.
type RoundOffers struct {
	VotingRoundID uint32
	Feeds         []*FeedOffers // canonical feed order, offers for unknown feeds last
	FDC           []*PartialRewardOffer
	FastUpdates   []*FeedOffers
}

// Granulator splits the offers of a reward epoch into per round, per feed partial offers.
// Every epoch offer is divided into equal parts over the rounds of the epoch, the
// remainder going one unit at a time to the first rounds.
//
// With random feed selection each round rewards a single feed drawn by lottery, and an
// offer for a feed is divided over the rounds in which that feed was drawn only.
type Granulator struct {
	cfg            *oracle.Config
	start, end     uint32
	feeds          []oracle.FeedID
	feedIndex      map[oracle.FeedID]int
	offers         *Offers
	extraFeeds     []oracle.FeedID
	selected       []int      // per round offset: index of the drawn feed
	position       []int      // per round offset: position among the rounds of the drawn feed
	selectedRounds [][]uint32 // per canonical feed: rounds it was drawn in
}

// NewGranulator prepares the split of offers for rounds [start, end].
func NewGranulator(
	cfg *oracle.Config,
	start, end uint32,
	seed oracle.Bytes32,
	canonicalFeeds []oracle.FeedID,
	offers *Offers,
) (*Granulator, error) {
	if end < start {
		return nil, errors.Errorf("invalid round range [%d, %d]", start, end)
	}
	if err := offers.Validate(); err != nil {
		return nil, err
	}
	g := &Granulator{
		cfg:       cfg,
		start:     start,
		end:       end,
		feeds:     canonicalFeeds,
		feedIndex: make(map[oracle.FeedID]int, len(canonicalFeeds)),
		offers:    offers,
	}
	for i, f := range canonicalFeeds {
		if _, ok := g.feedIndex[f]; ok {
			return nil, errors.Errorf("duplicate feed %v in canonical order", f)
		}
		g.feedIndex[f] = i
	}

	extra := make(map[oracle.FeedID]bool)
	for _, ro := range offers.RewardOffers {
		if _, ok := g.feedIndex[ro.FeedID]; !ok {
			extra[ro.FeedID] = true
		}
	}
	for _, io := range offers.InflationOffers {
		for _, f := range io.FeedIDs {
			if _, ok := g.feedIndex[f]; !ok {
				extra[f] = true
			}
		}
	}
	for f := range extra {
		g.extraFeeds = append(g.extraFeeds, f)
	}
	slices.SortFunc(g.extraFeeds, oracle.FeedID.Compare)

	if cfg.RandomFeedSelection && len(canonicalFeeds) > 0 {
		n := int(end-start) + 1
		g.selected = make([]int, n)
		g.position = make([]int, n)
		g.selectedRounds = make([][]uint32, len(canonicalFeeds))
		for i := range n {
			round := start + uint32(i)
			idx := random.SelectFeedIndex(seed, round, len(canonicalFeeds))
			g.selected[i] = idx
			g.position[i] = len(g.selectedRounds[idx])
			g.selectedRounds[idx] = append(g.selectedRounds[idx], round)
		}
	}
	return g, nil
}

func (g *Granulator) randomMode() bool {
	return g.selected != nil
}

// SelectedFeed returns the feed drawn for the round in random feed selection mode.
func (g *Granulator) SelectedFeed(votingRoundID uint32) (oracle.FeedID, bool) {
	if !g.randomMode() || votingRoundID < g.start || votingRoundID > g.end {
		return oracle.FeedID{}, false
	}
	return g.feeds[g.selected[votingRoundID-g.start]], true
}

// RoundOffers returns the partial offers of a round.
func (g *Granulator) RoundOffers(votingRoundID uint32) (*RoundOffers, error) {
	if votingRoundID < g.start || votingRoundID > g.end {
		return nil, errors.Errorf("round %d outside of [%d, %d]", votingRoundID, g.start, g.end)
	}
	var (
		offset   = int(votingRoundID - g.start)
		rounds   = int(g.end-g.start) + 1
		byFeed   = make(map[oracle.FeedID][]*PartialRewardOffer)
		burnAddr = g.cfg.BurnAddress
	)

	// share returns the amount of an epoch offer for feed f falling on this round.
	share := func(amount *big.Int, f oracle.FeedID) (*big.Int, bool) {
		idx, supported := g.feedIndex[f]
		if !g.randomMode() {
			return ShareOf(amount, offset, rounds), supported
		}
		if !supported || len(g.selectedRounds[idx]) == 0 {
			// burned as a whole in the first round
			if offset == 0 {
				return new(big.Int).Set(amount), false
			}
			return nil, false
		}
		if g.selected[offset] != idx {
			return nil, true
		}
		return ShareOf(amount, g.position[offset], len(g.selectedRounds[idx])), true
	}

	for i, ro := range g.offers.RewardOffers {
		amount, supported := share(ro.Amount, ro.FeedID)
		if amount == nil {
			continue
		}
		feed := ro.FeedID
		byFeed[feed] = append(byFeed[feed], &PartialRewardOffer{
			VotingRoundID:             votingRoundID,
			FeedID:                    &feed,
			OfferIndex:                i,
			Amount:                    amount,
			MinRewardedTurnoutBIPS:    ro.MinRewardedTurnoutBIPS,
			PrimaryBandRewardSharePPM: ro.PrimaryBandRewardSharePPM,
			SecondaryBandWidthPPM:     ro.SecondaryBandWidthPPM,
			ClaimBackAddress:          ro.ClaimBackAddress,
			ShouldBeBurned:            !supported,
		})
	}

	base := len(g.offers.RewardOffers)
	for i, io := range g.offers.InflationOffers {
		var perRound *big.Int
		if !g.randomMode() {
			perRound = ShareOf(io.Amount, offset, rounds)
		}
		for j, f := range io.FeedIDs {
			var amount *big.Int
			supported := true
			if g.randomMode() {
				amount, supported = share(ShareOf(io.Amount, j, len(io.FeedIDs)), f)
				if amount == nil {
					continue
				}
			} else {
				amount = ShareOf(perRound, j, len(io.FeedIDs))
				_, supported = g.feedIndex[f]
			}
			feed := f
			byFeed[feed] = append(byFeed[feed], &PartialRewardOffer{
				VotingRoundID:             votingRoundID,
				FeedID:                    &feed,
				OfferIndex:                base + i,
				Amount:                    amount,
				MinRewardedTurnoutBIPS:    io.MinRewardedTurnoutBIPS,
				PrimaryBandRewardSharePPM: io.PrimaryBandRewardSharePPMs[j],
				SecondaryBandWidthPPM:     io.SecondaryBandWidthPPMs[j],
				ClaimBackAddress:          burnAddr,
				ShouldBeBurned:            !supported,
				IsInflation:               true,
			})
		}
	}

	out := &RoundOffers{VotingRoundID: votingRoundID}
	for _, f := range append(slices.Clone(g.feeds), g.extraFeeds...) {
		if offers, ok := byFeed[f]; ok {
			out.Feeds = append(out.Feeds, &FeedOffers{FeedID: f, Offers: offers})
		}
	}

	for i, fo := range g.offers.FDCOffers {
		out.FDC = append(out.FDC, &PartialRewardOffer{
			VotingRoundID:    votingRoundID,
			OfferIndex:       i,
			Amount:           ShareOf(fo.Amount, offset, rounds),
			ClaimBackAddress: burnAddr,
			IsInflation:      true,
		})
	}

	fastUpdates := make(map[oracle.FeedID][]*PartialRewardOffer)
	var fastUpdateFeeds []oracle.FeedID
	for i, fu := range g.offers.FastUpdatesOffers {
		perRound := ShareOf(fu.Amount, offset, rounds)
		for j, f := range fu.FeedIDs {
			feed := f
			if _, ok := fastUpdates[feed]; !ok {
				fastUpdateFeeds = append(fastUpdateFeeds, feed)
			}
			_, supported := g.feedIndex[feed]
			fastUpdates[feed] = append(fastUpdates[feed], &PartialRewardOffer{
				VotingRoundID:         votingRoundID,
				FeedID:                &feed,
				OfferIndex:            i,
				Amount:                ShareOf(perRound, j, len(fu.FeedIDs)),
				SecondaryBandWidthPPM: fu.BandWidthPPMs[j],
				ClaimBackAddress:      burnAddr,
				ShouldBeBurned:        !supported,
				IsInflation:           true,
			})
		}
	}
	slices.SortStableFunc(fastUpdateFeeds, g.compareFeeds)
	for _, f := range fastUpdateFeeds {
		out.FastUpdates = append(out.FastUpdates, &FeedOffers{FeedID: f, Offers: fastUpdates[f]})
	}
	return out, nil
}

// compareFeeds orders canonical feeds first, in canonical order, then the rest by bytes.
func (g *Granulator) compareFeeds(a, b oracle.FeedID) int {
	ia, oka := g.feedIndex[a]
	ib, okb := g.feedIndex[b]
	switch {
	case oka && okb:
		return ia - ib
	case oka:
		return -1
	case okb:
		return 1
	default:
		return a.Compare(b)
	}
}
