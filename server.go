package main

import (
	"net"
)

// initServer runs the TCP accept loop on the calling goroutine. Every
// accepted socket gets its own worker; the listener itself owns no client
// state.
func initServer(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()

	P("listening for clients on", addr)
	for {
		s, err := l.Accept()
		if err != nil {
			return err
		}
		go handleClient(s)
	}
}
