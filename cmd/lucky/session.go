// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/luckydraw/lucky/builtin/raffle"
	"github.com/luckydraw/lucky/builtin/raffle/random"
	"github.com/luckydraw/lucky/eventdb"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/metrics"
	"github.com/luckydraw/lucky/state"
	"github.com/luckydraw/lucky/vrf"
	"github.com/luckydraw/lucky/xenv"
)

var logger = log.WithContext("pkg", "cmd")

// session is one block: the calls made by a command, committed together.
type session struct {
	cfg         *Config
	mainDB      *lvldb.LevelDB
	eventDB     *eventdb.EventDB
	state       *state.State
	block       *xenv.BlockContext
	contract    *raffle.Contract
	caller      lucky.Address
	seeders     []*vrf.Seeder
	envs        []*xenv.Environment
	stopMetrics func()
}

func openSession(ctx *cli.Context) (*session, error) {
	initLogger(ctx)

	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, caller: cfg.Admin}
	if v := ctx.GlobalString(callerFlag.Name); v != "" {
		caller, err := lucky.ParseAddress(v)
		if err != nil {
			return nil, errors.Wrapf(err, "-%s", callerFlag.Name)
		}
		s.caller = *caller
	}

	if addr := ctx.GlobalString(metricsAddrFlag.Name); addr != "" {
		metrics.InitializePrometheusMetrics()
		url, stop, err := startMetricsServer(addr)
		if err != nil {
			return nil, err
		}
		logger.Info("metrics server started", "url", url)
		s.stopMetrics = stop
	}

	dataDir := makeDataDir(ctx)
	s.mainDB = openMainDB(dataDir)
	s.eventDB = openEventDB(dataDir)
	s.state = state.New(s.mainDB)

	best, err := loadBestBlock(s.mainDB)
	if err != nil {
		s.close()
		return nil, err
	}
	number := best + 1
	// drop events of a block whose commit did not complete
	if last, err := s.eventDB.LastBlock(); err != nil {
		s.close()
		return nil, err
	} else if last >= number {
		if err := s.eventDB.Insert(nil, &number); err != nil {
			s.close()
			return nil, err
		}
	}
	s.block = &xenv.BlockContext{Number: number, Time: uint64(time.Now().Unix())}

	s.contract = raffle.NewContract(cfg.Raffle)
	if cfg.VRFKeyFile != "" {
		key, err := vrf.LoadOrGenerateKey(cfg.VRFKeyFile)
		if err != nil {
			s.close()
			return nil, errors.Wrap(err, "load VRF key")
		}
		s.contract.NewSeeder = func(block random.Block) random.Seeder {
			seeder := vrf.NewSeeder(key, block)
			s.seeders = append(s.seeders, seeder)
			return seeder
		}
	}
	logger.Debug("session opened", "block", number, "caller", s.caller, "raffle", cfg.Raffle)
	return s, nil
}

// env starts a call from the session caller to the raffle.
func (s *session) env(value *uint256.Int) *xenv.Environment {
	return s.envTo(s.cfg.Raffle, value)
}

func (s *session) envTo(to lucky.Address, value *uint256.Int) *xenv.Environment {
	env := xenv.New(s.state, s.block, s.caller, to, value)
	s.envs = append(s.envs, env)
	return env
}

func (s *session) raffle() *raffle.Raffle {
	return raffle.New(s.cfg.Raffle, s.state)
}

// treasury returns the treasury the raffle points to, the configured one before init.
func (s *session) treasury() (*raffle.Treasury, error) {
	addr, err := s.raffle().Treasury()
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		addr = s.cfg.Treasury
	}
	return raffle.NewTreasury(addr, s.state), nil
}

// commit persists the state changes and the events of the block.
func (s *session) commit() error {
	stage := s.state.Stage()
	if err := stage.Commit(); err != nil {
		return err
	}

	var events []*eventdb.Event
	for _, env := range s.envs {
		for _, ev := range env.Events() {
			events = append(events, eventdb.NewEvent(s.block, uint32(len(events)), ev))
		}
	}
	if err := s.eventDB.Insert(events, nil); err != nil {
		return errors.Wrap(err, "insert events")
	}
	if err := saveBestBlock(s.mainDB, s.block.Number); err != nil {
		return errors.Wrap(err, "save best block")
	}

	for _, seeder := range s.seeders {
		for _, p := range seeder.Proofs() {
			logger.Debug("vrf proof", "alpha", p.Alpha, "signature", lucky.BytesToBytes32(p.Signature[:32]).AbbrevString())
		}
	}
	logger.Info("block committed", "number", s.block.Number, "changes", stage.Len(), "events", len(events))
	return nil
}

func (s *session) close() {
	if s.eventDB != nil {
		s.eventDB.Close()
	}
	if s.mainDB != nil {
		s.mainDB.Close()
	}
	if s.stopMetrics != nil {
		s.stopMetrics()
	}
}

// withSession runs fn in a new session and commits it when fn succeeds.
func withSession(fn func(ctx *cli.Context, s *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()
		if err := fn(ctx, s); err != nil {
			return err
		}
		return s.commit()
	}
}

// withReadSession runs fn in a new session that is never committed.
func withReadSession(fn func(ctx *cli.Context, s *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(ctx, s)
	}
}
