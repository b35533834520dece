// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Basis-point and part-per-million denominators.
const (
	TotalBIPS = 10_000
	TotalPPM  = 1_000_000
)

// Protocol ids of the sub-protocols sharing the reward engine.
const (
	FTSOProtocolID        uint8 = 100
	FDCProtocolID         uint8 = 200
	FastUpdatesProtocolID uint8 = 255
)

// BurnAddress receives burned inflation rewards unless a network overrides it.
var BurnAddress = MustParseAddress("0x000000000000000000000000000000000000dEaD")

// Config is the immutable set of network parameters used by the reward calculation. It is
// constructed once at start up and passed to every calculator, nothing reads it from the
// environment afterwards.
type Config struct {
	Network string `yaml:"network"`

	VotingEpochDurationSeconds uint64 `yaml:"votingEpochDurationSeconds"` // length of one voting epoch
	RevealDeadlineSeconds      uint64 `yaml:"revealDeadlineSeconds"`      // offset of the reveal deadline inside a voting epoch

	GracePeriodForSignaturesSeconds   uint64 `yaml:"gracePeriodForSignaturesSeconds"`
	GracePeriodForFinalizationSeconds uint64 `yaml:"gracePeriodForFinalizationSeconds"`

	PenaltyFactor uint64 `yaml:"penaltyFactor"`

	SigningBIPS                           uint32 `yaml:"signingBIPS"`
	FinalizationBIPS                      uint32 `yaml:"finalizationBIPS"`
	CappedStakingFeeBIPS                  uint32 `yaml:"cappedStakingFeeBIPS"`
	FinalizationVoterSelectionBIPS        uint32 `yaml:"finalizationVoterSelectionBIPS"`
	MinRewardedNonConsensusSignaturesBIPS uint32 `yaml:"minRewardedNonConsensusSignaturesBIPS"`
	NonDominatingBitvoteBurnBIPS          uint32 `yaml:"nonDominatingBitvoteBurnBIPS"`

	BenchingWindow      uint32  `yaml:"benchingWindow"` // rounds a reveal offender is excluded from median rewards
	RandomFeedSelection bool    `yaml:"randomFeedSelection"`
	BurnAddress         Address `yaml:"burnAddress"`
}

// DefaultConfig returns the parameters of the production network.
func DefaultConfig() Config {
	return Config{
		Network:                               "mainnet",
		VotingEpochDurationSeconds:            90,
		RevealDeadlineSeconds:                 45,
		GracePeriodForSignaturesSeconds:       10,
		GracePeriodForFinalizationSeconds:     20,
		PenaltyFactor:                         30,
		SigningBIPS:                           1000,
		FinalizationBIPS:                      1000,
		CappedStakingFeeBIPS:                  2000,
		FinalizationVoterSelectionBIPS:        500,
		MinRewardedNonConsensusSignaturesBIPS: 3000,
		NonDominatingBitvoteBurnBIPS:          2000,
		BenchingWindow:                        20,
		RandomFeedSelection:                   false,
		BurnAddress:                           BurnAddress,
	}
}

// NetworkConfig returns the preset of a named network.
func NetworkConfig(network string) (Config, error) {
	cfg := DefaultConfig()
	switch network {
	case "mainnet", "":
	case "testnet":
		cfg.Network = "testnet"
		cfg.RandomFeedSelection = true
	case "local":
		cfg.Network = "local"
		cfg.VotingEpochDurationSeconds = 20
		cfg.RevealDeadlineSeconds = 10
		cfg.GracePeriodForSignaturesSeconds = 2
		cfg.GracePeriodForFinalizationSeconds = 4
		cfg.BenchingWindow = 2
	default:
		return Config{}, errors.Errorf("unknown network %q", network)
	}
	return cfg, nil
}

// ParseConfig overlays the YAML document onto base and validates the result.
// Fields missing from the document keep the base value.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parameters are consistent.
func (c *Config) Validate() error {
	if c.VotingEpochDurationSeconds == 0 {
		return errors.New("voting epoch duration must be positive")
	}
	if c.RevealDeadlineSeconds >= c.VotingEpochDurationSeconds {
		return errors.New("reveal deadline must be inside the voting epoch")
	}
	if c.RevealDeadlineSeconds+c.GracePeriodForSignaturesSeconds > c.VotingEpochDurationSeconds {
		return errors.New("signature grace period exceeds the voting epoch")
	}
	if c.RevealDeadlineSeconds+c.GracePeriodForFinalizationSeconds > c.VotingEpochDurationSeconds {
		return errors.New("finalization grace period exceeds the voting epoch")
	}
	if c.SigningBIPS+c.FinalizationBIPS > TotalBIPS {
		return errors.New("signing and finalization shares exceed 100%")
	}
	for _, p := range []struct {
		name  string
		value uint32
	}{
		{"cappedStakingFeeBIPS", c.CappedStakingFeeBIPS},
		{"minRewardedNonConsensusSignaturesBIPS", c.MinRewardedNonConsensusSignaturesBIPS},
		{"nonDominatingBitvoteBurnBIPS", c.NonDominatingBitvoteBurnBIPS},
	} {
		if p.value > TotalBIPS {
			return errors.Errorf("%s out of range: %d", p.name, p.value)
		}
	}
	if c.FinalizationVoterSelectionBIPS == 0 || c.FinalizationVoterSelectionBIPS > TotalBIPS/2 {
		return errors.Errorf("finalizationVoterSelectionBIPS out of range: %d", c.FinalizationVoterSelectionBIPS)
	}
	return nil
}

// SignatureGraceDeadline is the relative timestamp (seconds from the start of the voting
// epoch following the round) at which the signature grace period ends, exclusive.
func (c *Config) SignatureGraceDeadline() uint64 {
	return c.RevealDeadlineSeconds + c.GracePeriodForSignaturesSeconds
}

// FinalizationGraceDeadline is the relative timestamp at which the finalization grace
// period ends, exclusive.
func (c *Config) FinalizationGraceDeadline() uint64 {
	return c.RevealDeadlineSeconds + c.GracePeriodForFinalizationSeconds
}

// VotingEpochEnd is the relative timestamp of the end of the voting epoch following the round.
func (c *Config) VotingEpochEnd() uint64 {
	return c.VotingEpochDurationSeconds
}
