package main

import (
	"database/sql"
	"time"
)

var insertstatement *sql.Stmt

// initEventlog prepares the insert used for the optional activity log.
// Requires initDatabase to have run; without a database the daemon serves
// fine and logEvent is a no-op.
func initEventlog() {
	var err error
	insertstatement, err = db.Prepare(`
		INSERT INTO eventlog
		SET
			nick      = ?,
			event     = ?,
			data      = ?,
			timestamp = ?
	`)

	if err != nil {
		B("Unable to create insert statement: ", err)
	}
}

// Event mirrors one eventlog row; the status endpoint and external tooling
// consume it as JSON.
type Event struct {
	Nick      string `json:"nick"`
	Event     string `json:"event"`
	Data      string `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// logEvent records a registration, nick change, message delivery or
// disconnect. Never called under the registry lock: the insert can block on
// the database.
func logEvent(nick string, event string, data string) {
	if insertstatement == nil {
		return
	}

	d := &sql.NullString{}
	if len(data) != 0 {
		d.String = data
		d.Valid = true
	}

	ts := time.Now().UTC()
	_, err := insertstatement.Exec(nick, event, d, ts)
	if err != nil {
		D("Unable to insert event: ", err)
	}
}
