// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for state and event databases",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML raffle config",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "account calling the raffle (defaults to the configured admin)",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve prometheus metrics on this address while the command runs",
	}

	fileFlag = cli.StringFlag{
		Name:  "file",
		Usage: "CSV file of account,weight lines",
	}
	filteredFlag = cli.BoolFlag{
		Name:  "filtered",
		Usage: "leave out the recent winners",
	}
	batchFlag = cli.IntFlag{
		Name:  "batch",
		Usage: "participants added per call (defaults to the config batch size)",
	}
	pageFlag = cli.Uint64Flag{
		Name:  "page",
		Value: 1,
		Usage: "participant page, 1-based",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Usage: "number of entries",
	}
	eraFlag = cli.Uint64Flag{
		Name:  "era",
		Usage: "raffle era",
	}
	rewardFlag = cli.StringFlag{
		Name:  "reward",
		Usage: "amount to distribute, decimal or 0x-prefixed hex",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount, decimal or 0x-prefixed hex",
	}
	oracleFlag = cli.BoolFlag{
		Name:  "oracle",
		Usage: "draw among the participants and reward recorded by the oracle",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account address",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "event name (RaffleDone|PendingReward|RewardsClaimed)",
	}
	roleFlag = cli.StringFlag{
		Name:  "role",
		Usage: "role name",
	}
)
