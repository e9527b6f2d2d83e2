package main

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	initLogging(false)
	nickCod = newNickCodec("")
	initClientList(nickCod)
	initDispatch()
	initWatchdog()
	initStats()
	os.Exit(m.Run())
}
