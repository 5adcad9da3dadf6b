// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Version: fullVersion(),
		Name:    "lucky",
		Usage:   "Weighted raffle and reward distribution",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			verbosityFlag,
			jsonLogsFlag,
			callerFlag,
			metricsAddrFlag,
		},
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "set the raffle up from the config",
				Action: withSession(initAction),
			},
			{
				Name:   "status",
				Usage:  "show the raffle state",
				Action: withReadSession(statusAction),
			},
			{
				Name:  "participants",
				Usage: "manage the participant registry",
				Subcommands: []cli.Command{
					{
						Name:   "add",
						Usage:  "add participants from a CSV file",
						Flags:  []cli.Flag{fileFlag, filteredFlag, batchFlag},
						Action: withSession(participantsAddAction),
					},
					{
						Name:   "list",
						Usage:  "list a page of participants",
						Flags:  []cli.Flag{pageFlag},
						Action: withReadSession(participantsListAction),
					},
					{
						Name:   "clear",
						Usage:  "remove every participant",
						Action: withSession(participantsClearAction),
					},
				},
			},
			{
				Name:  "filter",
				Usage: "manage the recent winners filter",
				Subcommands: []cli.Command{
					{
						Name:   "set",
						Usage:  "set how many recent winners are filtered out",
						Flags:  []cli.Flag{limitFlag},
						Action: withSession(filterSetAction),
					},
					{
						Name:   "list",
						Usage:  "list the recent winners",
						Action: withReadSession(filterListAction),
					},
				},
			},
			{
				Name:  "raffle",
				Usage: "run raffles",
				Subcommands: []cli.Command{
					{
						Name:   "run",
						Usage:  "run the raffle of an era",
						Flags:  []cli.Flag{eraFlag, rewardFlag, oracleFlag},
						Action: withSession(raffleRunAction),
					},
					{
						Name:   "withdraw",
						Usage:  "withdraw from the raffle balance",
						Flags:  []cli.Flag{amountFlag},
						Action: withSession(raffleWithdrawAction),
					},
				},
			},
			{
				Name:  "oracle",
				Usage: "record per-era participants and rewards",
				Subcommands: []cli.Command{
					{
						Name:   "add",
						Usage:  "add participants of an era from a CSV file",
						Flags:  []cli.Flag{eraFlag, fileFlag},
						Action: withSession(oracleAddAction),
					},
					{
						Name:   "rewards",
						Usage:  "set the reward of an era",
						Flags:  []cli.Flag{eraFlag, amountFlag},
						Action: withSession(oracleRewardsAction),
					},
				},
			},
			{
				Name:  "treasury",
				Usage: "manage the treasury",
				Subcommands: []cli.Command{
					{
						Name:   "deposit",
						Usage:  "credit the treasury",
						Flags:  []cli.Flag{amountFlag},
						Action: withSession(treasuryDepositAction),
					},
				},
			},
			{
				Name:  "rewards",
				Usage: "inspect and claim rewards",
				Subcommands: []cli.Command{
					{
						Name:   "pending",
						Usage:  "list pending rewards",
						Flags:  []cli.Flag{eraFlag, accountFlag},
						Action: withReadSession(rewardsPendingAction),
					},
					{
						Name:   "claim",
						Usage:  "claim the pending rewards of the caller or of -account",
						Flags:  []cli.Flag{accountFlag},
						Action: withSession(rewardsClaimAction),
					},
				},
			},
			{
				Name:  "roles",
				Usage: "manage roles",
				Subcommands: []cli.Command{
					{
						Name:   "grant",
						Flags:  []cli.Flag{roleFlag, accountFlag},
						Action: withSession(rolesGrantAction),
					},
					{
						Name:   "revoke",
						Flags:  []cli.Flag{roleFlag, accountFlag},
						Action: withSession(rolesRevokeAction),
					},
				},
			},
			{
				Name:   "vrf-key",
				Usage:  "show the signer of the VRF key, creating the key if missing",
				Flags:  []cli.Flag{fileFlag},
				Action: vrfKeyAction,
			},
			{
				Name:   "events",
				Usage:  "list recorded events, newest first",
				Flags:  []cli.Flag{nameFlag, limitFlag},
				Action: withReadSession(eventsAction),
			},
		},
	}
}
