// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/luckydraw/lucky/builtin/access"
	"github.com/luckydraw/lucky/builtin/raffle"
	"github.com/luckydraw/lucky/eventdb"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/vrf"
)

func eraArg(ctx *cli.Context) (uint32, error) {
	if !ctx.IsSet(eraFlag.Name) {
		return 0, errors.Errorf("-%s required", eraFlag.Name)
	}
	era := ctx.Uint64(eraFlag.Name)
	if era > math.MaxUint32 {
		return 0, errors.Errorf("era %d out of range", era)
	}
	return uint32(era), nil
}

func amountArg(ctx *cli.Context, flag cli.StringFlag) (*uint256.Int, error) {
	v := ctx.String(flag.Name)
	if v == "" {
		return nil, errors.Errorf("-%s required", flag.Name)
	}
	return lucky.ParseBalance(v)
}

func accountArg(ctx *cli.Context) (*lucky.Address, error) {
	v := ctx.String(accountFlag.Name)
	if v == "" {
		return nil, nil
	}
	return lucky.ParseAddress(v)
}

func initAction(_ *cli.Context, s *session) error {
	if err := s.contract.Init(s.env(nil), s.cfg.raffleConfig()); err != nil {
		return err
	}
	fmt.Printf("raffle %v initialized, admin %v, treasury %v\n", s.cfg.Raffle, s.cfg.Admin, s.cfg.Treasury)
	return nil
}

func statusAction(_ *cli.Context, s *session) error {
	r := s.raffle()
	admin, err := r.Admin()
	if err != nil {
		return err
	}
	count, err := r.Participants().Count()
	if err != nil {
		return err
	}
	total, err := r.Participants().TotalValue()
	if err != nil {
		return err
	}
	last, err := r.Draws().LastEraDone()
	if err != nil {
		return err
	}
	ratios, err := r.Draws().RatioDistribution()
	if err != nil {
		return err
	}
	balance, err := r.Balance()
	if err != nil {
		return err
	}
	treasury, err := s.treasury()
	if err != nil {
		return err
	}
	treasuryBalance, err := treasury.Balance()
	if err != nil {
		return err
	}

	fmt.Printf("raffle:        %v\n", s.cfg.Raffle)
	fmt.Printf("admin:         %v\n", admin)
	fmt.Printf("next block:    %d\n", s.block.Number)
	fmt.Printf("participants:  %d (total weight %v)\n", count, total.Dec())
	fmt.Printf("ratios:        %v\n", ratios)
	fmt.Printf("last era done: %d\n", last)
	fmt.Printf("balance:       %v\n", balance.Dec())
	fmt.Printf("treasury:      %v (%v)\n", treasury.Address(), treasuryBalance.Dec())
	return nil
}

func participantsAddAction(ctx *cli.Context, s *session) error {
	list, err := readParticipants(ctx.String(fileFlag.Name))
	if err != nil {
		return err
	}
	size := s.cfg.BatchSize
	if ctx.IsSet(batchFlag.Name) {
		size = ctx.Int(batchFlag.Name)
	}
	if size <= 0 {
		return errors.Errorf("-%s must be positive", batchFlag.Name)
	}

	add := s.contract.AddParticipants
	if ctx.Bool(filteredFlag.Name) {
		add = s.contract.AddParticipantsWithFilters
	}

	bar := pb.New(len(list)).
		Prefix("participants").
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	for _, batch := range chunks(list, size) {
		if err := add(s.env(nil), batch); err != nil {
			return err
		}
		bar.Add(len(batch))
	}
	bar.Finish()

	count, err := s.raffle().Participants().Count()
	if err != nil {
		return err
	}
	fmt.Printf("%d participants registered\n", count)
	return nil
}

func participantsListAction(ctx *cli.Context, s *session) error {
	page := ctx.Uint64(pageFlag.Name)
	list, err := s.raffle().Participants().Page(page)
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%v,%v\n", p.Account, p.Weight.Dec())
	}
	return nil
}

func participantsClearAction(_ *cli.Context, s *session) error {
	return s.contract.ClearParticipants(s.env(nil))
}

func filterSetAction(ctx *cli.Context, s *session) error {
	if !ctx.IsSet(limitFlag.Name) {
		return errors.Errorf("-%s required", limitFlag.Name)
	}
	return s.contract.SetFilterLimit(s.env(nil), ctx.Uint64(limitFlag.Name))
}

func filterListAction(_ *cli.Context, s *session) error {
	winners, err := s.raffle().Filter().LastWinners()
	if err != nil {
		return err
	}
	for _, w := range winners {
		fmt.Println(w)
	}
	return nil
}

func raffleRunAction(ctx *cli.Context, s *session) error {
	era, err := eraArg(ctx)
	if err != nil {
		return err
	}
	var result *raffle.Result
	if ctx.Bool(oracleFlag.Name) {
		result, err = s.contract.RunFromOracle(s.env(nil), era)
	} else {
		reward, rerr := amountArg(ctx, rewardFlag)
		if rerr != nil {
			return rerr
		}
		result, err = s.contract.RunRaffle(s.env(nil), era, reward)
	}
	if err != nil {
		return err
	}
	fmt.Printf("era %d: %d winners, %v given\n", result.Era, len(result.Winners), result.Summary.GivenReward.Dec())
	for i, w := range result.Winners {
		fmt.Printf("%d. %v %v\n", i+1, w.Account, w.Amount.Dec())
	}
	return nil
}

func raffleWithdrawAction(ctx *cli.Context, s *session) error {
	amount, err := amountArg(ctx, amountFlag)
	if err != nil {
		return err
	}
	return s.contract.Withdraw(s.env(nil), amount)
}

func oracleAddAction(ctx *cli.Context, s *session) error {
	era, err := eraArg(ctx)
	if err != nil {
		return err
	}
	list, err := readParticipants(ctx.String(fileFlag.Name))
	if err != nil {
		return err
	}
	return s.contract.AddOracleParticipants(s.env(nil), era, list)
}

func oracleRewardsAction(ctx *cli.Context, s *session) error {
	era, err := eraArg(ctx)
	if err != nil {
		return err
	}
	amount, err := amountArg(ctx, amountFlag)
	if err != nil {
		return err
	}
	return s.contract.SetOracleRewards(s.env(nil), era, amount)
}

func treasuryDepositAction(ctx *cli.Context, s *session) error {
	amount, err := amountArg(ctx, amountFlag)
	if err != nil {
		return err
	}
	treasury, err := s.treasury()
	if err != nil {
		return err
	}
	if err := treasury.Deposit(amount); err != nil {
		return err
	}
	balance, err := treasury.Balance()
	if err != nil {
		return err
	}
	fmt.Printf("treasury %v: %v\n", treasury.Address(), balance.Dec())
	return nil
}

func rewardsPendingAction(ctx *cli.Context, s *session) error {
	var era *uint32
	if ctx.IsSet(eraFlag.Name) {
		e, err := eraArg(ctx)
		if err != nil {
			return err
		}
		era = &e
	}
	account, err := accountArg(ctx)
	if err != nil {
		return err
	}
	list, err := s.contract.PendingRewards(s.env(nil), era, account)
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%v era %d: %v\n", p.Account, p.Era, p.Amount.Dec())
	}
	return nil
}

func rewardsClaimAction(ctx *cli.Context, s *session) error {
	account, err := accountArg(ctx)
	if err != nil {
		return err
	}
	if account == nil {
		account = &s.caller
	}
	claimed, err := s.contract.ClaimFrom(s.env(nil), *account)
	if err != nil {
		return err
	}
	fmt.Printf("%v claimed %v\n", *account, claimed.Dec())
	return nil
}

func roleArgs(ctx *cli.Context) (access.Role, lucky.Address, error) {
	role, ok := access.RoleByName(ctx.String(roleFlag.Name))
	if !ok {
		return access.Role{}, lucky.Address{}, errors.Errorf("unknown role %q", ctx.String(roleFlag.Name))
	}
	account, err := accountArg(ctx)
	if err != nil {
		return access.Role{}, lucky.Address{}, err
	}
	if account == nil {
		return access.Role{}, lucky.Address{}, errors.Errorf("-%s required", accountFlag.Name)
	}
	return role, *account, nil
}

func rolesGrantAction(ctx *cli.Context, s *session) error {
	role, account, err := roleArgs(ctx)
	if err != nil {
		return err
	}
	return s.contract.GrantRole(s.env(nil), role, account)
}

func rolesRevokeAction(ctx *cli.Context, s *session) error {
	role, account, err := roleArgs(ctx)
	if err != nil {
		return err
	}
	return s.contract.RevokeRole(s.env(nil), role, account)
}

func eventsAction(ctx *cli.Context, s *session) error {
	filter := &eventdb.Filter{
		Address: &s.cfg.Raffle,
		Order:   eventdb.DESC,
	}
	if name := ctx.String(nameFlag.Name); name != "" {
		id, ok := raffle.EventByName(name)
		if !ok {
			return errors.Errorf("unknown event %q", name)
		}
		filter.TopicSet = [][5]*lucky.Bytes32{{&id}}
	}
	if limit := ctx.Uint64(limitFlag.Name); limit > 0 {
		filter.Options = &eventdb.Options{Limit: limit}
	}
	events, err := s.eventDB.Filter(filter)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Topics[0] == nil {
			continue
		}
		decoded, err := raffle.DecodeEvent(*ev.Topics[0], ev.Data)
		if err != nil {
			return err
		}
		fmt.Printf("#%d.%d %s %s\n", ev.BlockNumber, ev.Index, raffle.EventName(*ev.Topics[0]), formatEvent(decoded))
	}
	return nil
}

func formatEvent(ev any) string {
	switch e := ev.(type) {
	case *raffle.RaffleDone:
		return fmt.Sprintf("era=%d winners=%d participants=%d total=%v given=%v",
			e.Era, e.NbWinners, e.NbParticipants, e.TotalValue.Dec(), e.PendingRewards.Dec())
	case *raffle.PendingReward:
		return fmt.Sprintf("account=%v era=%d amount=%v", e.Account, e.Era, e.Amount.Dec())
	case *raffle.RewardsClaimed:
		return fmt.Sprintf("account=%v amount=%v", e.Account, e.Amount.Dec())
	}
	return fmt.Sprintf("%+v", ev)
}

// vrfKeyAction prints the signer of the configured VRF key, creating the key
// file when it does not exist.
func vrfKeyAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return err
	}
	file := cfg.VRFKeyFile
	if v := ctx.String(fileFlag.Name); v != "" {
		file = v
	}
	if file == "" {
		return errors.Errorf("no VRF key file configured, use -%s", fileFlag.Name)
	}
	key, err := vrf.LoadOrGenerateKey(file)
	if err != nil {
		return err
	}
	fmt.Printf("key:    %v\n", file)
	fmt.Printf("signer: %v\n", lucky.Address(crypto.PubkeyToAddress(key.PublicKey)))
	fmt.Printf("pk:     %x\n", crypto.CompressPubkey(&key.PublicKey))
	return nil
}
