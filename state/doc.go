// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage and account balances.
// It follows the flow as bellow:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv bulk ]
//	          |
//	    [ read cache ]
//	          |
//	    [ kv store ]
//
// Every contract call runs between NewCheckpoint and either RevertTo on failure
// or nothing on success, so a failed call never leaves partial writes behind.
package state
