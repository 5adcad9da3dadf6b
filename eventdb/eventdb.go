// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/lucky"
)

type RangeType string

const (
	Block RangeType = "Block"
	Time  RangeType = "Time"
)

type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter filter
type Filter struct {
	Address  *lucky.Address      `json:"address"` // always a contract address
	TopicSet [][5]*lucky.Bytes32 `json:"topicSet"`
	Order    OrderType           `json:"order"` // default asc
	Range    *Range
	Options  *Options
}

// EventDB manages all events
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New open a event db
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create event table")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem create a memory sqlite db
func NewMem() (*EventDB, error) {
	db, err := New(":memory:")
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a distinct database
	db.db.SetMaxOpenConns(1)
	return db, nil
}

// Insert insert events into db, and abandon events of blocks from abandonedFrom on.
func (db *EventDB) Insert(events []*Event, abandonedFrom *uint32) error {
	if len(events) == 0 && abandonedFrom == nil {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if abandonedFrom != nil {
		if _, err = tx.Exec("DELETE FROM event WHERE blockNumber >= ?;", *abandonedFrom); err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, event := range events {
		if _, err = tx.Exec("INSERT OR REPLACE INTO event(blockNumber, eventIndex, blockTime, address, topic0, topic1, topic2, topic3, topic4, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
			event.BlockNumber,
			event.Index,
			event.BlockTime,
			event.Address.Bytes(),
			topicValue(event.Topics[0]),
			topicValue(event.Topics[1]),
			topicValue(event.Topics[2]),
			topicValue(event.Topics[3]),
			topicValue(event.Topics[4]),
			event.Data); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter return events with options
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	const selectAll = "SELECT blockNumber, eventIndex, blockTime, address, topic0, topic1, topic2, topic3, topic4, data FROM event"
	if filter == nil {
		return db.query(selectAll + " ORDER BY blockNumber ASC, eventIndex ASC")
	}
	var args []any
	stmt := selectAll + " WHERE 1"
	condition := "blockNumber"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "blockTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if filter.Address != nil {
		args = append(args, filter.Address.Bytes())
		stmt += " AND address = ? "
	}
	length := len(filter.TopicSet)
	if length > 0 {
		for i, topics := range filter.TopicSet {
			if i == 0 {
				stmt += " AND (( 1 "
			} else {
				stmt += " OR ( 1 "
			}
			for j, topic := range topics {
				if topic != nil {
					args = append(args, topic.Bytes())
					stmt += fmt.Sprintf(" AND topic%v = ? ", j)
				}
			}
			if i == length-1 {
				stmt += " )) "
			} else {
				stmt += " ) "
			}
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

// LastBlock returns the highest block number holding events, 0 if there is none.
func (db *EventDB) LastBlock() (uint32, error) {
	var n sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(blockNumber) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return uint32(n.Int64), nil
}

// query query events
func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			blockNumber uint32
			index       uint32
			blockTime   uint64
			address     []byte
			topics      [5][]byte
			data        []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&blockTime,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: blockNumber,
			Index:       index,
			BlockTime:   blockTime,
			Address:     lucky.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := lucky.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path return db's directory
func (db *EventDB) Path() string {
	return db.path
}

// Close close sqlite
func (db *EventDB) Close() {
	db.db.Close()
}

func topicValue(topic *lucky.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
