// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/oraclenet/rewardcalc/oracle"
	"github.com/oraclenet/rewardcalc/split"
)

// logger follows log.SetDefault, it is resolved on every use.
func logger() log.Logger { return log.Root().With("pkg", "reward") }

// Calculator computes the partial claims of voting rounds. It holds no mutable state and
// may be shared by concurrent round computations.
type Calculator struct {
	cfg         *oracle.Config
	distributor *split.Distributor
}

// NewCalculator creates a calculator for the given network parameters.
func NewCalculator(cfg *oracle.Config) *Calculator {
	return &Calculator{
		cfg:         cfg,
		distributor: split.NewDistributor(cfg.CappedStakingFeeBIPS),
	}
}

// Config returns the network parameters.
func (c *Calculator) Config() *oracle.Config { return c.cfg }
