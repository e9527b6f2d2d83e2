package main

import (
	"errors"
	"io"
)

// Scan state of a partially received message.
const (
	statusSeenCR = 1 << iota
	statusSeenLF
)

var (
	// errMsgContinue means no complete message can be extracted yet; wait for
	// more data on the socket. Not an error condition.
	errMsgContinue = errors.New("msgbuf: incomplete message")

	// errMsgFinish means a message that cannot possibly be well formed was
	// detected (malformed terminator); the buffer has been reset.
	errMsgFinish = errors.New("msgbuf: malformed message terminator")
)

// msgBuf reassembles discrete \r\n-terminated IRC messages from the arbitrary
// byte fragments a socket delivers. Each connection owns exactly one and only
// its worker touches it, so there is no locking here.
//
// Invariant: 0 <= msgBegin <= lastStop <= index <= len(msg). msgBegin marks
// the start of the message currently being assembled, index the end of
// everything read, and lastStop how far the terminator scan has advanced, so
// successive next calls never rescan bytes of the same fragment.
type msgBuf struct {
	msg      [MAXMSGSIZE]byte
	index    int
	lastStop int
	msgBegin int
	status   int
}

func (b *msgBuf) reset() {
	b.index = 0
	b.lastStop = 0
	b.msgBegin = 0
	b.status = 0
}

// readMore pulls whatever fits into the free space of the buffer. If the
// buffer is full without a terminator having been seen, a characters sequence
// of at least MAXMSGSIZE length is in flight, which the protocol forbids;
// the buffer is thrown away before reading. Only reads what it can: when
// messages were fragmented and the buffer is partially full, the read is
// short, and the caller comes back after next has freed space.
func (b *msgBuf) readMore(r io.Reader, who string) (int, error) {
	if b.index >= len(b.msg) {
		D("message exceeds maximum allowed length, resetting buffer of", who)
		// Keep the terminator flags: if the oversized message was cut in the
		// middle of its \r\n, the dangling \n that follows the reset must
		// surface as a framing error, not silently start the next message.
		status := b.status
		b.reset()
		b.status = status
	}
	n, err := r.Read(b.msg[b.index:])
	b.index += n
	return n, err
}

// next extracts the next complete message from the buffer, terminator
// included. The returned slice aliases the buffer and is valid until the
// following readMore. Returns errMsgContinue when more data is needed and
// errMsgFinish when the terminator was malformed (lone \n before \r); in the
// latter case the buffer has been reset but the connection may live on.
// On success the message is always at least 2 bytes long, so the caller can
// safely strip the trailing \r\n.
func (b *msgBuf) next() ([]byte, error) {
	i := b.lastStop
	for ; b.status != statusSeenCR|statusSeenLF && i < b.index; i++ {
		switch b.msg[i] {
		case '\r':
			b.status |= statusSeenCR
		case '\n':
			b.status |= statusSeenLF
		}
	}
	if b.status == statusSeenCR|statusSeenLF {
		b.status = 0
		length := i - b.msgBegin
		m := b.msg[b.msgBegin:i]
		b.lastStop = i
		b.msgBegin = i
		if length >= 2 && b.msg[i-1] == '\n' && b.msg[i-2] == '\r' {
			return m, nil
		}
		b.reset()
		return nil, errMsgFinish
	}
	// no full terminator in sight: compact so readMore gets the space back
	copy(b.msg[:], b.msg[b.msgBegin:b.index])
	b.index -= b.msgBegin
	b.lastStop = b.index
	b.msgBegin = 0
	return nil, errMsgContinue
}
