// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/xenv"
)

const eventTableSchema = `
create table if not exists event (
	blockNumber integer,
	eventIndex integer,
	blockTime integer,
	address blob(20),
	topic0 blob(32),
	topic1 blob(32),
	topic2 blob(32),
	topic3 blob(32),
	topic4 blob(32),
	data blob,
	primary key (blockNumber, eventIndex)
);

CREATE INDEX if not exists addressIndex on event(address);
CREATE INDEX if not exists topicIndex0 on event(topic0);
CREATE INDEX if not exists topicIndex1 on event(topic1);
`

// Event is a persisted contract event.
type Event struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	Address     lucky.Address
	Topics      [5]*lucky.Bytes32
	Data        []byte
}

// NewEvent creates an event record for an event emitted in the given block.
// Topics beyond the fifth are dropped.
func NewEvent(blockCtx *xenv.BlockContext, index uint32, ev *xenv.Event) *Event {
	event := &Event{
		BlockNumber: blockCtx.Number,
		Index:       index,
		BlockTime:   blockCtx.Time,
		Address:     ev.Address,
		Data:        ev.Data,
	}
	for i := 0; i < len(ev.Topics) && i < len(event.Topics); i++ {
		t := ev.Topics[i]
		event.Topics[i] = &t
	}
	return event
}
