// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward implements the per-era reward pools and the pending rewards of winners.
package reward

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/raffle/ratio"
	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/metrics"
)

var (
	slotRatios    = lucky.BytesToBytes32([]byte("reward-ratios"))
	slotRemaining = lucky.BytesToBytes32([]byte("reward-remaining"))
	slotPending   = lucky.BytesToBytes32([]byte("reward-pending"))
	slotAccounts  = lucky.BytesToBytes32([]byte("reward-accounts"))

	logger = log.WithContext("pkg", "reward")

	metricPending = metrics.LazyLoadCounter("rewards_pending_count")
	metricClaims  = metrics.LazyLoadCounterVec("rewards_claims_count", []string{"result"})
)

// Service is the reward ledger. Pending rewards are kept per account, in
// the order they were registered; accounts lists who has any.
type Service struct {
	ratios    *ratio.Store
	remaining *solidity.Mapping[solidity.Uint64Key, *uint256.Int]
	pending   *solidity.Mapping[lucky.Address, []entry]
	accounts  *solidity.Raw[[]lucky.Address]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		ratios:    ratio.NewStore(sctx, slotRatios),
		remaining: solidity.NewMapping[solidity.Uint64Key, *uint256.Int](sctx, slotRemaining),
		pending:   solidity.NewMapping[lucky.Address, []entry](sctx, slotPending),
		accounts:  solidity.NewRaw[[]lucky.Address](sctx, slotAccounts),
	}
}

// SetRatioDistribution replaces the ratio table used by AddWinners.
func (s *Service) SetRatioDistribution(ratios []uint64, total uint64) error {
	_, err := s.ratios.Set(ratios, total)
	return err
}

func (s *Service) RatioDistribution() (*ratio.Table, error) {
	return s.ratios.Get()
}

// RemainingRewards returns the undistributed pool of era.
func (s *Service) RemainingRewards(era uint32) (*uint256.Int, error) {
	v, err := s.remaining.Get(solidity.Uint64Key(era))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get remaining rewards of era %d", era)
	}
	return v, nil
}

func (s *Service) setRemaining(era uint32, amount *uint256.Int) error {
	if amount.IsZero() {
		s.remaining.Delete(solidity.Uint64Key(era))
		return nil
	}
	if err := s.remaining.Set(solidity.Uint64Key(era), amount); err != nil {
		return errors.Wrapf(err, "failed to set remaining rewards of era %d", era)
	}
	return nil
}

// FundRewards credits amount to the pool of era.
func (s *Service) FundRewards(era uint32, amount *uint256.Int) error {
	pool, err := s.RemainingRewards(era)
	if err != nil {
		return err
	}
	if _, overflow := pool.AddOverflow(pool, amount); overflow {
		return reverts.ErrAddOverflow
	}
	logger.Debug("rewards funded", "era", era, "amount", amount, "pool", pool)
	return s.setRemaining(era, pool)
}

// AddWinners shares the pool of era among accounts following the ratio
// table: the i-th account gets floor(pool * ratio[i] / total). Accounts on a
// zero ratio get nothing, accounts past the table are ignored. The pool is
// debited by what was given, and dropped once empty.
func (s *Service) AddWinners(era uint32, accounts []lucky.Address) (*Summary, error) {
	table, err := s.ratios.Get()
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, reverts.ErrNoRatioSet
	}
	pool, err := s.RemainingRewards(era)
	if err != nil {
		return nil, err
	}
	if pool.IsZero() {
		return nil, reverts.ErrNoReward
	}

	rewards := make([]Reward, 0, len(accounts))
	given := new(uint256.Int)
	for i, account := range accounts {
		if i >= table.Len() {
			break
		}
		if table.At(i) == 0 {
			continue
		}
		amount, err := table.Share(pool, i)
		if err != nil {
			return nil, err
		}
		if _, overflow := given.AddOverflow(given, amount); overflow {
			return nil, reverts.ErrAddOverflow
		}
		rewards = append(rewards, Reward{Account: account, Amount: amount})
	}

	entries, err := s.record(era, rewards)
	if err != nil {
		return nil, err
	}
	if !pool.Gt(given) {
		pool.Clear()
	} else {
		pool.Sub(pool, given)
	}
	if err := s.setRemaining(era, pool); err != nil {
		return nil, err
	}
	return &Summary{Era: era, GivenReward: given, NbWinners: len(entries), Entries: entries}, nil
}

// FundRewardsAndAddWinners funds the pool of era then shares it among accounts.
func (s *Service) FundRewardsAndAddWinners(era uint32, amount *uint256.Int, accounts []lucky.Address) (*Summary, error) {
	if err := s.FundRewards(era, amount); err != nil {
		return nil, err
	}
	return s.AddWinners(era, accounts)
}

// AddPendingRewards registers pre-computed rewards paid by transferred.
// transferred must cover them all, what is left goes to the pool of era.
func (s *Service) AddPendingRewards(era uint32, transferred *uint256.Int, rewards []Reward) (*Summary, error) {
	given := new(uint256.Int)
	for _, r := range rewards {
		if _, overflow := given.AddOverflow(given, r.Amount); overflow {
			return nil, reverts.ErrAddOverflow
		}
	}
	if transferred.Lt(given) {
		return nil, reverts.ErrInsufficientTransferredBalance
	}

	entries, err := s.record(era, rewards)
	if err != nil {
		return nil, err
	}
	if left := new(uint256.Int).Sub(transferred, given); !left.IsZero() {
		if err := s.FundRewards(era, left); err != nil {
			return nil, err
		}
	}
	return &Summary{Era: era, GivenReward: given, NbWinners: len(entries), Entries: entries}, nil
}

// record appends the rewards to the pending lists of their accounts.
func (s *Service) record(era uint32, rewards []Reward) ([]Pending, error) {
	if len(rewards) == 0 {
		return nil, nil
	}
	known, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	indexed := make(map[lucky.Address]struct{}, len(known))
	for _, a := range known {
		indexed[a] = struct{}{}
	}

	added := make([]Pending, 0, len(rewards))
	for _, r := range rewards {
		list, err := s.pendingOf(r.Account)
		if err != nil {
			return nil, err
		}
		list = append(list, entry{Era: era, Amount: new(uint256.Int).Set(r.Amount)})
		if err := s.pending.Set(r.Account, list); err != nil {
			return nil, errors.Wrap(err, "failed to set pending rewards")
		}
		if _, ok := indexed[r.Account]; !ok {
			indexed[r.Account] = struct{}{}
			known = append(known, r.Account)
		}
		added = append(added, Pending{Account: r.Account, Era: era, Amount: r.Amount})
		logger.Debug("pending reward", "account", r.Account, "era", era, "amount", r.Amount)
	}
	if err := s.accounts.Set(known); err != nil {
		return nil, errors.Wrap(err, "failed to set reward accounts")
	}
	metricPending().Add(int64(len(added)))
	return added, nil
}

func (s *Service) pendingOf(account lucky.Address) ([]entry, error) {
	list, err := s.pending.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending rewards")
	}
	return list, nil
}

// Accounts returns the accounts holding pending rewards.
func (s *Service) Accounts() ([]lucky.Address, error) {
	accounts, err := s.accounts.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward accounts")
	}
	return accounts, nil
}

// ClaimFrom transfers the whole pending balance of account in one transfer
// and then removes every summed entry. Nothing is removed when the transfer
// fails. Claiming with nothing pending returns zero without a transfer.
func (s *Service) ClaimFrom(account lucky.Address, transfer Transfer) (*uint256.Int, error) {
	list, err := s.pendingOf(account)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for _, e := range list {
		if _, overflow := total.AddOverflow(total, e.Amount); overflow {
			return nil, reverts.ErrAddOverflow
		}
	}
	if len(list) == 0 {
		return total, nil
	}
	if err := transfer(account, total); err != nil {
		metricClaims().AddWithLabel(1, map[string]string{"result": "failed"})
		logger.Warn("claim transfer failed", "account", account, "amount", total, "err", err)
		return nil, errors.WithMessage(reverts.ErrTransferError, err.Error())
	}

	s.pending.Delete(account)
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	for i, a := range accounts {
		if a == account {
			accounts = append(accounts[:i], accounts[i+1:]...)
			break
		}
	}
	if len(accounts) == 0 {
		s.accounts.Clear()
	} else if err := s.accounts.Set(accounts); err != nil {
		return nil, errors.Wrap(err, "failed to set reward accounts")
	}

	metricClaims().AddWithLabel(1, map[string]string{"result": "claimed"})
	logger.Info("rewards claimed", "account", account, "amount", total, "entries", len(list))
	return total, nil
}

// ListPendingRewardsFrom lists pending rewards, a nil era or account matches any.
func (s *Service) ListPendingRewardsFrom(era *uint32, account *lucky.Address) ([]Pending, error) {
	var result []Pending
	err := s.iterate(account, func(p Pending) bool {
		if match(p, era, account) {
			result = append(result, p)
		}
		return true
	})
	return result, err
}

// HasPendingRewardsFrom reports whether any pending reward matches, a nil era or account matches any.
func (s *Service) HasPendingRewardsFrom(era *uint32, account *lucky.Address) (bool, error) {
	found := false
	err := s.iterate(account, func(p Pending) bool {
		if match(p, era, account) {
			found = true
			return false
		}
		return true
	})
	return found, err
}

func (s *Service) iterate(account *lucky.Address, cb func(Pending) bool) error {
	var accounts []lucky.Address
	if account != nil {
		accounts = []lucky.Address{*account}
	} else {
		var err error
		if accounts, err = s.Accounts(); err != nil {
			return err
		}
	}
	for _, a := range accounts {
		list, err := s.pendingOf(a)
		if err != nil {
			return err
		}
		for _, e := range list {
			if !cb(Pending{Account: a, Era: e.Era, Amount: e.Amount}) {
				return nil
			}
		}
	}
	return nil
}
