// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/streams/log"
	"github.com/vechain/streams/thor"
)

const (
	memPath = ":memory:"

	selectEvents = "SELECT seq, time, method, caller, address, kind, account, rewarded, reward, topic0, topic1, topic2, topic3, data FROM event"
	insertEvent  = "INSERT OR REPLACE INTO event(seq, time, method, caller, address, kind, account, rewarded, reward, topic0, topic1, topic2, topic3, data) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

var logger = log.WithContext("pkg", "eventdb")

// EventDB keeps the history of events emitted by committed calls.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()

	if path == memPath {
		// every connection to :memory: opens its own database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		return nil, errors.Wrap(err, "pragma")
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("event db opened", "path", path, "sqlite", driverVer)
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(memPath)
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Insert stores events in a single transaction.
func (db *EventDB) Insert(events []*Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEvent)
	if err != nil {
		return err
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txStmt := tx.Stmt(stmt)
	defer txStmt.Close()
	for _, ev := range events {
		seq, err := newSequence(ev.Number, ev.Index)
		if err != nil {
			return err
		}
		if _, err := txStmt.Exec(
			seq,
			ev.Time,
			ev.Method,
			ev.Caller.Bytes(),
			ev.Address.Bytes(),
			ev.Kind,
			addressValue(ev.Account),
			addressValue(ev.Rewarded),
			addressValue(ev.Reward),
			topicValue(ev.Topics[0]),
			topicValue(ev.Topics[1]),
			topicValue(ev.Topics[2]),
			topicValue(ev.Topics[3]),
			ev.Data,
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertedEvents().Add(int64(len(events)))
	return nil
}

// NewestNumber returns the number of the last call with events, or zero if db is empty.
func (db *EventDB) NewestNumber(ctx context.Context) (uint32, error) {
	stmt, err := db.stmtCache.Prepare("SELECT seq FROM event ORDER BY seq DESC LIMIT 1")
	if err != nil {
		return 0, err
	}
	var seq sequence
	if err := stmt.QueryRowContext(ctx).Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return seq.Number(), nil
}

// Filter returns the events matching filter. A nil filter matches everything.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, selectEvents+" ORDER BY seq ASC")
	}
	start := time.Now()
	defer func() {
		metricQueryDuration().Observe(time.Since(start).Milliseconds())
	}()
	metricsHandleFilter(filter)

	var (
		args []any
		stmt strings.Builder
	)
	stmt.WriteString(selectEvents)
	stmt.WriteString(" WHERE 1")

	if r := filter.Range; r != nil {
		if r.Unit == Time {
			stmt.WriteString(" AND time >= ?")
			args = append(args, r.From)
			if r.To >= r.From {
				stmt.WriteString(" AND time <= ?")
				args = append(args, r.To)
			}
		} else {
			from, err := newSequence(clampNumber(r.From), 0)
			if err != nil {
				return nil, err
			}
			stmt.WriteString(" AND seq >= ?")
			args = append(args, from)
			if r.To >= r.From {
				to, err := newSequence(clampNumber(r.To), indexMask)
				if err != nil {
					return nil, err
				}
				stmt.WriteString(" AND seq <= ?")
				args = append(args, to)
			}
		}
	}

	if len(filter.CriteriaSet) > 0 {
		stmt.WriteString(" AND (")
		for i, c := range filter.CriteriaSet {
			if i > 0 {
				stmt.WriteString(" OR ")
			}
			stmt.WriteString("(1")
			if c.Address != nil {
				stmt.WriteString(" AND address = ?")
				args = append(args, c.Address.Bytes())
			}
			if c.Kind != "" {
				stmt.WriteString(" AND kind = ?")
				args = append(args, c.Kind)
			}
			for _, col := range []struct {
				name string
				addr *thor.Address
			}{
				{"account", c.Account},
				{"rewarded", c.Rewarded},
				{"reward", c.Reward},
			} {
				if col.addr != nil {
					fmt.Fprintf(&stmt, " AND %s = ?", col.name)
					args = append(args, col.addr.Bytes())
				}
			}
			stmt.WriteString(")")
		}
		stmt.WriteString(")")
	}

	if filter.Order == DESC {
		stmt.WriteString(" ORDER BY seq DESC")
	} else {
		stmt.WriteString(" ORDER BY seq ASC")
	}

	if filter.Options != nil {
		stmt.WriteString(" LIMIT ?, ?")
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt.String(), args...)
}

func (db *EventDB) query(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq      sequence
			t        uint64
			method   string
			caller   []byte
			address  []byte
			kind     string
			account  []byte
			rewarded []byte
			reward   []byte
			topics   [4][]byte
			data     []byte
		)
		if err := rows.Scan(
			&seq,
			&t,
			&method,
			&caller,
			&address,
			&kind,
			&account,
			&rewarded,
			&reward,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		ev := &Event{
			Number:   seq.Number(),
			Index:    seq.Index(),
			Time:     t,
			Method:   method,
			Caller:   thor.BytesToAddress(caller),
			Address:  thor.BytesToAddress(address),
			Kind:     kind,
			Account:  addressOf(account),
			Rewarded: addressOf(rewarded),
			Reward:   addressOf(reward),
			Data:     data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				ev.Topics[i] = &h
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func clampNumber(n uint64) uint32 {
	return uint32(min(n, math.MaxUint32))
}

func addressValue(addr *thor.Address) any {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

func addressOf(b []byte) *thor.Address {
	if len(b) == 0 {
		return nil
	}
	addr := thor.BytesToAddress(b)
	return &addr
}

func topicValue(topic *thor.Bytes32) any {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
