// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/luckydraw/lucky/builtin/raffle"
	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/raffle/ratio"
	"github.com/luckydraw/lucky/lucky"
)

// Config is the raffle setup read from the YAML config file.
type Config struct {
	Raffle          lucky.Address `yaml:"raffle"`
	Admin           lucky.Address `yaml:"admin"`
	Treasury        lucky.Address `yaml:"treasury"`
	Ratios          []uint64      `yaml:"ratios"`
	TotalRatio      uint64        `yaml:"total-ratio"`
	FilteredWinners uint64        `yaml:"filtered-winners"`
	Salt            uint64        `yaml:"salt"`
	VRFKeyFile      string        `yaml:"vrf-key-file,omitempty"`
	BatchSize       int           `yaml:"batch-size"`
}

func defaultConfig() *Config {
	return &Config{
		Raffle:          lucky.BytesToAddress([]byte("lucky-raffle")),
		Admin:           lucky.BytesToAddress([]byte("lucky-admin")),
		Treasury:        lucky.BytesToAddress([]byte("lucky-treasury")),
		Ratios:          []uint64{50, 30, 20},
		TotalRatio:      100,
		FilteredWinners: 3,
		BatchSize:       participant.PageSize,
	}
}

// loadConfig reads path over the defaults. An empty path gives the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "config %v", path)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Raffle.IsZero() {
		return errors.New("raffle address required")
	}
	if c.Admin.IsZero() {
		return errors.New("admin address required")
	}
	if c.BatchSize <= 0 || c.BatchSize > participant.MaxParticipants {
		return errors.Errorf("batch size must be within [1, %d]", participant.MaxParticipants)
	}
	if _, err := ratio.New(c.Ratios, c.TotalRatio); err != nil {
		return errors.WithMessage(err, "ratios")
	}
	return nil
}

func (c *Config) raffleConfig() *raffle.Config {
	return &raffle.Config{
		Admin:       c.Admin,
		Treasury:    c.Treasury,
		Ratios:      c.Ratios,
		TotalRatio:  c.TotalRatio,
		FilterLimit: c.FilteredWinners,
		Salt:        c.Salt,
	}
}
