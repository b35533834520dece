// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Snapshot is a point in time view of the lookup counters.
type Snapshot struct {
	Hits    int64
	Misses  int64
	HitRate float64
}

// Stats counts lookups of a cache.
type Stats struct {
	hit, miss atomic.Int64
	permille  atomic.Int32 // hit rate at the last Snapshot call
}

// Hit records a hit.
func (s *Stats) Hit() int64 { return s.hit.Add(1) }

// Miss records a miss.
func (s *Stats) Miss() int64 { return s.miss.Add(1) }

// Snapshot returns the counters, and whether the hit rate moved by at least one permille
// since the previous call.
func (s *Stats) Snapshot() (Snapshot, bool) {
	snap := Snapshot{Hits: s.hit.Load(), Misses: s.miss.Load()}
	if lookups := snap.Hits + snap.Misses; lookups > 0 {
		snap.HitRate = float64(snap.Hits) / float64(lookups)
	}
	p := int32(snap.HitRate * 1000)
	return snap, s.permille.Swap(p) != p
}
