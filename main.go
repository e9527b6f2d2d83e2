package main

import (
	"log"
	"runtime"
	"time"

	conf "github.com/msbranco/goconfig"
)

func main() {
	c, err := conf.ReadConfigFile("settings.cfg")
	if err != nil {
		nc := conf.NewConfigFile()
		nc.AddOption("default", "debug", "false")
		nc.AddOption("default", "listenaddress", ":6667")
		nc.AddOption("default", "servername", "irc.mossnet.org")
		nc.AddOption("default", "maxprocesses", "0")
		nc.AddOption("default", "nickextra", "")
		nc.AddOption("default", "motdfile", "")

		nc.AddSection("websocket")
		nc.AddOption("websocket", "enabled", "false")
		nc.AddOption("websocket", "listenaddress", ":8080")

		nc.AddSection("database")
		nc.AddOption("database", "enabled", "false")
		nc.AddOption("database", "type", "mysql")
		nc.AddOption("database", "dsn", "username:password@tcp(localhost:3306)/ircd?loc=UTC&parseTime=true&timeout=1s")

		nc.AddSection("status")
		nc.AddOption("status", "enabled", "false")
		nc.AddOption("status", "listenaddress", ":9998")

		if err := nc.WriteConfigFile("settings.cfg", 0644, "mossircd"); err != nil {
			log.Fatal("Unable to create settings.cfg: ", err)
		}
		if c, err = conf.ReadConfigFile("settings.cfg"); err != nil {
			log.Fatal("Unable to read settings.cfg: ", err)
		}
	}

	debug, _ := c.GetBool("default", "debug")
	addr, _ := c.GetString("default", "listenaddress")
	name, _ := c.GetString("default", "servername")
	processes, _ := c.GetInt64("default", "maxprocesses")
	nickextra, _ := c.GetString("default", "nickextra")
	motdfile, _ := c.GetString("default", "motdfile")

	wsenabled, _ := c.GetBool("websocket", "enabled")
	wsaddr, _ := c.GetString("websocket", "listenaddress")

	dbenabled, _ := c.GetBool("database", "enabled")
	dbtype, _ := c.GetString("database", "type")
	dbdsn, _ := c.GetString("database", "dsn")

	statusenabled, _ := c.GetBool("status", "enabled")
	statusaddr, _ := c.GetString("status", "listenaddress")

	if processes <= 0 {
		processes = int64(runtime.NumCPU())
	}
	runtime.GOMAXPROCS(int(processes))

	initLogging(debug)

	serverName = name
	serverCreated = time.Now().UTC().Format("Mon Jan 2 2006 at 15:04:05 (UTC)")
	loadMotd(motdfile)

	// global state comes up before the first worker can exist
	nickCod = newNickCodec(nickextra)
	initClientList(nickCod)
	initDispatch()
	initWatchdog()
	initStats()

	if dbenabled {
		initDatabase(dbtype, dbdsn)
		initEventlog()
	}
	if wsenabled {
		initWSGateway(wsaddr)
	}
	if statusenabled {
		initStatus(statusaddr)
	}

	if err := initServer(addr); err != nil {
		F("listener failed: ", err)
	}

	// only reached when the listener goes away cleanly; workers are gone by
	// now, so the registry may be torn down
	destroyClientList()
}
