// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	time INTEGER NOT NULL,
	method TEXT NOT NULL,
	caller BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	kind TEXT NOT NULL,
	account BLOB(20),
	rewarded BLOB(20),
	reward BLOB(20),
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	data BLOB
);

CREATE INDEX IF NOT EXISTS event_i_time ON event(time);
CREATE INDEX IF NOT EXISTS event_i_address ON event(address, kind);
CREATE INDEX IF NOT EXISTS event_i_account ON event(account);
CREATE INDEX IF NOT EXISTS event_i_rewarded ON event(rewarded, reward);
`
