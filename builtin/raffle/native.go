// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/access"
	"github.com/luckydraw/lucky/builtin/raffle/draw"
	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/raffle/random"
	"github.com/luckydraw/lucky/builtin/raffle/reward"
	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/metrics"
	"github.com/luckydraw/lucky/xenv"
)

var (
	logger = log.WithContext("pkg", "raffle")

	metricCalls = metrics.LazyLoadCounterVec("raffle_calls_count", []string{"method", "result"})
)

// roles the initial admin is granted on the raffle.
var adminRoles = []access.Role{
	access.DefaultAdminRole,
	access.RaffleManager,
	access.ParticipantManager,
	access.ParticipantFilterManager,
	access.RewardManager,
	access.RewardViewer,
	access.RandomGeneratorConsumer,
	access.RandomGeneratorManager,
	access.OracleDataManager,
}

// Config is the initial setup of a raffle.
type Config struct {
	Admin       lucky.Address
	Treasury    lucky.Address
	Ratios      []uint64
	TotalRatio  uint64
	FilterLimit uint64
	Salt        uint64
}

// Result is the outcome of a round.
type Result struct {
	Era     uint32
	Winners []draw.Winner
	Summary *reward.Summary
}

// Contract exposes the entry points of the raffle at Address. Every
// entry point runs as one call of its environment: a failure reverts
// all of its state changes and events.
type Contract struct {
	Address lucky.Address
	// NewSeeder builds the seed source of a call. Nil falls back to block data.
	NewSeeder func(block random.Block) random.Seeder
}

func NewContract(addr lucky.Address) *Contract {
	return &Contract{Address: addr}
}

// WithState binds the raffle storage.
func (c *Contract) WithState(env *xenv.Environment) *Raffle {
	return New(c.Address, env.State())
}

func (c *Contract) seeder(env *xenv.Environment) random.Seeder {
	block := random.Block{Number: env.BlockContext().Number, Time: env.BlockContext().Time}
	if c.NewSeeder != nil {
		return c.NewSeeder(block)
	}
	return random.BlockSeeder{Block: block}
}

func (c *Contract) call(env *xenv.Environment, method string, proc func(r *Raffle) error) error {
	if env.To() != c.Address {
		return errors.Errorf("%s: environment targets %v, not the raffle", method, env.To())
	}
	err := env.Call(func(env *xenv.Environment) error {
		return proc(c.WithState(env))
	})
	result := "ok"
	if err != nil {
		result = "reverted"
		logger.Debug("call reverted", "method", method, "caller", env.Caller(), "err", err)
	}
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": result})
	return err
}

func (c *Contract) callAs(env *xenv.Environment, method string, role access.Role, proc func(r *Raffle) error) error {
	return c.call(env, method, func(r *Raffle) error {
		if err := r.access.CheckRole(role, env.Caller()); err != nil {
			return err
		}
		return proc(r)
	})
}

// Init sets the raffle up once. The admin gets every management role and
// the raffle is whitelisted on the treasury.
func (c *Contract) Init(env *xenv.Environment, cfg *Config) error {
	return c.call(env, "init", func(r *Raffle) error {
		admin, err := r.Admin()
		if err != nil {
			return err
		}
		if !admin.IsZero() {
			return errors.WithMessage(reverts.ErrAccessControl, "already initialized")
		}
		if cfg.Admin.IsZero() {
			return errors.New("admin required")
		}
		r.admin.Set(&cfg.Admin)
		for _, role := range adminRoles {
			if err := r.access.SetupRole(role, cfg.Admin); err != nil {
				return err
			}
		}
		if err := r.draws.SetRatioDistribution(cfg.Ratios, cfg.TotalRatio); err != nil {
			return err
		}
		if err := r.rewards.SetRatioDistribution(cfg.Ratios, cfg.TotalRatio); err != nil {
			return err
		}
		r.filter.SetLimit(cfg.FilterLimit)
		r.Random(nil).SetSalt(cfg.Salt)

		if !cfg.Treasury.IsZero() {
			r.treasury.Set(&cfg.Treasury)
			treasury := NewTreasury(cfg.Treasury, r.state)
			if err := treasury.Access().SetupRole(access.DefaultAdminRole, cfg.Admin); err != nil {
				return err
			}
			if err := treasury.Access().SetupRole(access.Whitelisted, c.Address); err != nil {
				return err
			}
		}
		logger.Info("raffle initialized", "address", c.Address, "admin", cfg.Admin, "treasury", cfg.Treasury)
		return nil
	})
}

func (c *Contract) GrantRole(env *xenv.Environment, role access.Role, account lucky.Address) error {
	return c.call(env, "grantRole", func(r *Raffle) error {
		return r.access.GrantRole(env.Caller(), role, account)
	})
}

func (c *Contract) RevokeRole(env *xenv.Environment, role access.Role, account lucky.Address) error {
	return c.call(env, "revokeRole", func(r *Raffle) error {
		return r.access.RevokeRole(env.Caller(), role, account)
	})
}

func (c *Contract) RenounceRole(env *xenv.Environment, role access.Role) error {
	return c.call(env, "renounceRole", func(r *Raffle) error {
		return r.access.RenounceRole(env.Caller(), role, env.Caller())
	})
}

// SetTreasury points the raffle to another treasury. The raffle must be
// whitelisted there before the next round.
func (c *Contract) SetTreasury(env *xenv.Environment, treasury lucky.Address) error {
	return c.callAs(env, "setTreasury", access.DefaultAdminRole, func(r *Raffle) error {
		r.treasury.Set(&treasury)
		return nil
	})
}

func (c *Contract) AddParticipants(env *xenv.Environment, batch []participant.Participant) error {
	return c.callAs(env, "addParticipants", access.ParticipantManager, func(r *Raffle) error {
		return r.participants.AddParticipants(batch)
	})
}

// AddParticipantsWithFilters adds the batch without the recent winners.
func (c *Contract) AddParticipantsWithFilters(env *xenv.Environment, batch []participant.Participant) error {
	return c.callAs(env, "addParticipantsWithFilters", access.ParticipantManager, func(r *Raffle) error {
		kept, err := r.filter.Exclude(batch)
		if err != nil {
			return err
		}
		return r.participants.AddParticipants(kept)
	})
}

func (c *Contract) ClearParticipants(env *xenv.Environment) error {
	return c.callAs(env, "clearParticipants", access.ParticipantManager, func(r *Raffle) error {
		r.participants.Clear()
		return nil
	})
}

func (c *Contract) SetFilterLimit(env *xenv.Environment, limit uint64) error {
	return c.callAs(env, "setFilterLimit", access.ParticipantFilterManager, func(r *Raffle) error {
		r.filter.SetLimit(limit)
		return nil
	})
}

// SetRatioDistribution sets the ratio table the rounds draw with.
func (c *Contract) SetRatioDistribution(env *xenv.Environment, ratios []uint64, total uint64) error {
	return c.callAs(env, "setRatioDistribution", access.RaffleManager, func(r *Raffle) error {
		return r.draws.SetRatioDistribution(ratios, total)
	})
}

// SetRewardRatioDistribution sets the ratio table the ledger splits funded pools with.
func (c *Contract) SetRewardRatioDistribution(env *xenv.Environment, ratios []uint64, total uint64) error {
	return c.callAs(env, "setRewardRatioDistribution", access.RewardManager, func(r *Raffle) error {
		return r.rewards.SetRatioDistribution(ratios, total)
	})
}

func (c *Contract) SetSalt(env *xenv.Environment, salt uint64) error {
	return c.callAs(env, "setSalt", access.RandomGeneratorManager, func(r *Raffle) error {
		r.Random(nil).SetSalt(salt)
		return nil
	})
}

// RunRaffle draws the winners of era among the registered participants,
// withdraws amount from the treasury and credits the winners.
func (c *Contract) RunRaffle(env *xenv.Environment, era uint32, amount *uint256.Int) (*Result, error) {
	var result *Result
	err := c.callAs(env, "runRaffle", access.RaffleManager, func(r *Raffle) error {
		winners, err := r.draws.Run(era, amount, r.participants, r.Random(c.seeder(env)))
		if err != nil {
			return err
		}
		result, err = c.settle(env, r, era, amount, winners, r.participants)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RunFromOracle runs the round of era on the participants and reward the
// oracle recorded for it. Recent winners are left out.
func (c *Contract) RunFromOracle(env *xenv.Environment, era uint32) (*Result, error) {
	var result *Result
	err := c.callAs(env, "runFromOracle", access.RaffleManager, func(r *Raffle) error {
		data, err := r.oracle.Data(era)
		if err != nil {
			return err
		}
		kept, err := r.filter.Exclude(data.Participants)
		if err != nil {
			return err
		}
		pool := participant.List(kept)
		winners, err := r.draws.Run(era, data.Rewards, pool, r.Random(c.seeder(env)))
		if err != nil {
			return err
		}
		result, err = c.settle(env, r, era, data.Rewards, winners, pool)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Contract) settle(env *xenv.Environment, r *Raffle, era uint32, amount *uint256.Int, winners []draw.Winner, pool draw.Pool) (*Result, error) {
	rewards := make([]reward.Reward, 0, len(winners))
	for _, w := range winners {
		if err := r.filter.AddWinner(w.Account); err != nil {
			return nil, err
		}
		rewards = append(rewards, reward.Reward{Account: w.Account, Amount: w.Amount})
	}

	if err := c.withdraw(r, amount); err != nil {
		return nil, err
	}
	summary, err := r.rewards.AddPendingRewards(era, amount, rewards)
	if err != nil {
		return nil, err
	}

	count, err := pool.Count()
	if err != nil {
		return nil, err
	}
	total, err := pool.TotalValue()
	if err != nil {
		return nil, err
	}
	for _, p := range summary.Entries {
		emitPendingReward(env, &PendingReward{Account: p.Account, Era: p.Era, Amount: p.Amount})
	}
	emitRaffleDone(env, &RaffleDone{
		Contract:       c.Address,
		Era:            era,
		PendingRewards: summary.GivenReward,
		NbWinners:      uint64(summary.NbWinners),
		NbParticipants: count,
		TotalValue:     total,
	})
	logger.Info("raffle done", "era", era, "winners", summary.NbWinners, "given", summary.GivenReward, "participants", count)
	return &Result{Era: era, Winners: winners, Summary: summary}, nil
}

// withdraw pulls amount from the treasury into the raffle balance.
func (c *Contract) withdraw(r *Raffle, amount *uint256.Int) error {
	addr, err := r.Treasury()
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return errors.WithMessage(reverts.ErrCrossCallFailed, "no treasury set")
	}
	if err := NewTreasury(addr, r.state).Withdraw(c.Address, amount); err != nil {
		if reverts.IsRevertErr(err) {
			return errors.WithMessage(reverts.ErrCrossCallFailed, err.Error())
		}
		return err
	}
	return nil
}

// FundRewards adds the value sent with the call to the pool of era.
func (c *Contract) FundRewards(env *xenv.Environment, era uint32) error {
	return c.callAs(env, "fundRewards", access.RewardManager, func(r *Raffle) error {
		return r.rewards.FundRewards(era, env.Value())
	})
}

// FundRewardsAndAddWinners adds the value sent with the call to the pool
// of era and splits the pool among accounts by the ledger ratios.
func (c *Contract) FundRewardsAndAddWinners(env *xenv.Environment, era uint32, accounts []lucky.Address) (*reward.Summary, error) {
	var summary *reward.Summary
	err := c.callAs(env, "fundRewardsAndAddWinners", access.RewardManager, func(r *Raffle) error {
		var err error
		if summary, err = r.rewards.FundRewardsAndAddWinners(era, env.Value(), accounts); err != nil {
			return err
		}
		for _, p := range summary.Entries {
			emitPendingReward(env, &PendingReward{Account: p.Account, Era: p.Era, Amount: p.Amount})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Claim pays the caller all of its pending rewards.
func (c *Contract) Claim(env *xenv.Environment) (*uint256.Int, error) {
	return c.ClaimFrom(env, env.Caller())
}

// ClaimFrom pays account all of its pending rewards. Anyone may trigger it.
func (c *Contract) ClaimFrom(env *xenv.Environment, account lucky.Address) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := c.call(env, "claim", func(r *Raffle) error {
		var err error
		claimed, err = r.rewards.ClaimFrom(account, func(to lucky.Address, amount *uint256.Int) error {
			return env.State().Transfer(c.Address, to, amount)
		})
		if err != nil {
			return err
		}
		if !claimed.IsZero() {
			emitRewardsClaimed(env, &RewardsClaimed{Account: account, Amount: claimed})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// PendingRewards lists the pending rewards matching the optional era and account.
func (c *Contract) PendingRewards(env *xenv.Environment, era *uint32, account *lucky.Address) ([]reward.Pending, error) {
	var list []reward.Pending
	err := c.callAs(env, "pendingRewards", access.RewardViewer, func(r *Raffle) error {
		var err error
		list, err = r.rewards.ListPendingRewardsFrom(era, account)
		return err
	})
	return list, err
}

// Withdraw sends value from the raffle balance to the admin calling it.
func (c *Contract) Withdraw(env *xenv.Environment, value *uint256.Int) error {
	return c.callAs(env, "withdraw", access.DefaultAdminRole, func(r *Raffle) error {
		if err := env.State().Transfer(c.Address, env.Caller(), value); err != nil {
			return errors.WithMessage(reverts.ErrTransferError, err.Error())
		}
		return nil
	})
}

func (c *Contract) AddOracleParticipants(env *xenv.Environment, era uint32, batch []participant.Participant) error {
	return c.callAs(env, "addOracleParticipants", access.OracleDataManager, func(r *Raffle) error {
		return r.oracle.AddParticipants(era, batch)
	})
}

func (c *Contract) SetOracleRewards(env *xenv.Environment, era uint32, amount *uint256.Int) error {
	return c.callAs(env, "setOracleRewards", access.OracleDataManager, func(r *Raffle) error {
		return r.oracle.SetRewards(era, amount)
	})
}

// TreasuryWithdraw runs a whitelisted withdrawal on the treasury env targets.
func TreasuryWithdraw(env *xenv.Environment, value *uint256.Int) error {
	return env.Call(func(env *xenv.Environment) error {
		return NewTreasury(env.To(), env.State()).Withdraw(env.Caller(), value)
	})
}
