package main

import (
	"bytes"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// initWSGateway starts the optional gateway that lets browser clients speak
// the same protocol over websockets. An upgraded connection is wrapped into
// a net.Conn and handed to the ordinary worker pipeline; the core never
// learns the transport changed.
func initWSGateway(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/irc", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", 405)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go handleClient(&wsConn{ws: ws})
	})
	go (func() {
		P("websocket gateway listening on", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			B("websocket gateway failed: ", err)
		}
	})()
}

// wsConn adapts a websocket connection to the byte stream the reassembler
// expects. Frames are concatenated on read; browser clients tend to omit the
// message terminator, so one is appended to every unterminated frame. Writes
// go out as one frame each, which existing web clients handle fine.
type wsConn struct {
	ws   *websocket.Conn
	rest []byte
}

func (w *wsConn) Read(p []byte) (int, error) {
	for len(w.rest) == 0 {
		_, data, err := w.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			continue
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			data = append(data, '\r', '\n')
		}
		w.rest = data
	}
	n := copy(p, w.rest)
	w.rest = w.rest[n:]
	return n, nil
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error {
	return w.ws.Close()
}

func (w *wsConn) LocalAddr() net.Addr {
	return w.ws.LocalAddr()
}

func (w *wsConn) RemoteAddr() net.Addr {
	return w.ws.RemoteAddr()
}

func (w *wsConn) SetDeadline(t time.Time) error {
	if err := w.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return w.ws.SetWriteDeadline(t)
}

func (w *wsConn) SetReadDeadline(t time.Time) error {
	return w.ws.SetReadDeadline(t)
}

func (w *wsConn) SetWriteDeadline(t time.Time) error {
	return w.ws.SetWriteDeadline(t)
}
