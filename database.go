package main

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var db *sql.DB

// initDatabase connects and starts the single monitor goroutine. Reconnects
// happen inside the monitor loop, so a flapping database never stacks up
// extra goroutines or watchdog entries.
func initDatabase(dbtype string, dbdsn string) {
	connectDatabase(dbtype, dbdsn)

	go (func() {
		t := time.NewTicker(time.Minute)
		cp := watchdog.register("database check thread", time.Minute)
		defer watchdog.unregister("database check thread")

		for {
			select {
			case <-t.C:
				cp <- true
				if err := db.Ping(); err != nil {
					B("Could not ping database: ", err)
					connectDatabase(dbtype, dbdsn)
					initEventlog()
				}
			}
		}
	})()
}

func connectDatabase(dbtype string, dbdsn string) {
	for {
		var err error
		db, err = sql.Open(dbtype, dbdsn)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			db.SetMaxIdleConns(10)
			return
		}
		B("Could not connect to database: ", err)
		time.Sleep(time.Second)
	}
}
