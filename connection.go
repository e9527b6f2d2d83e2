package main

import (
	"net"
	"sync"
	"time"
)

const (
	WRITETIMEOUT = 10 * time.Second
	READTIMEOUT  = 3 * time.Minute
)

// Client is one connection record. The socket, the message buffer and the
// parse state belong to the worker alone; the write queue and the wakeup
// doorbell are the shared surface other workers deliver through. Identity
// fields are guarded by the embedded lock because findAndExecute callbacks
// read them from foreign workers.
type Client struct {
	socket     net.Conn
	nick       string
	username   string
	hostname   string
	realname   string
	registered bool
	closing    bool

	msgbuf     msgBuf
	writeQueue msgQueue
	wakeup     chan struct{}
	stop       chan struct{}
	wpdone     chan struct{}
	stopOnce   sync.Once

	sync.RWMutex
}

// handleClient owns the connection from accept to teardown. It runs the read
// loop on the current goroutine and the write pump on a second one; these two
// are the only goroutines that ever touch the socket.
func handleClient(s net.Conn) {
	c := &Client{
		socket: s,
		wakeup: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		wpdone: make(chan struct{}),
	}
	if host, _, err := net.SplitHostPort(s.RemoteAddr().String()); err == nil {
		c.hostname = host
	} else {
		c.hostname = s.RemoteAddr().String()
	}
	statsConnect()
	go c.writePump()
	c.readPump()
}

// readPump drives the reassembler: read a fragment, extract every complete
// message it yields, parse and dispatch each one. A malformed terminator
// resets the buffer but keeps the connection; a read error or a QUIT tears
// the connection down.
func (c *Client) readPump() {
	defer c.teardown()

	var params [MAXIRCPARAMS][]byte
	for {
		c.socket.SetReadDeadline(time.Now().Add(READTIMEOUT))
		n, rerr := c.msgbuf.readMore(c.socket, c.describe())
		if n == 0 && rerr != nil {
			return
		}
		for {
			raw, err := c.msgbuf.next()
			if err == errMsgContinue {
				break
			}
			if err == errMsgFinish {
				D("malformed message terminator from", c.describe())
				continue
			}
			// strip the \r\n; next guarantees len >= 2
			line := raw[:len(raw)-2]
			prefix, cmd, nparams, err := parseMsg(line, &params)
			if err != nil {
				D("unparseable message from", c.describe())
				continue
			}
			// Copy out of the reassembler buffer before dispatching: the
			// next readMore would clobber anything still aliasing it.
			m := &ircMessage{
				prefix:  string(prefix),
				command: string(cmd),
				params:  make([]string, nparams),
			}
			for i := 0; i < nparams; i++ {
				m.params[i] = string(params[i])
			}
			dispatch(c, m)
			if c.isClosing() {
				return
			}
		}
		if rerr != nil {
			// a final fragment may arrive together with the error
			return
		}
	}
}

// writePump waits on the doorbell and drains the queue to the socket. The
// doorbell coalesces: any number of notify calls may fold into one signal,
// so the queue, not the signal count, is the source of truth and every
// wakeup drains to empty.
func (c *Client) writePump() {
	defer close(c.wpdone)
	for {
		select {
		case <-c.stop:
			return
		case <-c.wakeup:
			for {
				m, ok := c.writeQueue.dequeue()
				if !ok {
					break
				}
				if !c.write(m) {
					c.socket.Close() // forces the read loop out
					return
				}
			}
		}
	}
}

func (c *Client) write(m string) bool {
	b := []byte(m)
	written := 0
	for written < len(b) {
		c.socket.SetWriteDeadline(time.Now().Add(WRITETIMEOUT))
		n, err := c.socket.Write(b[written:])
		if err != nil {
			P("write error to", c.describe(), err)
			return false
		}
		written += n
	}
	return true
}

// notify queues message for this client's socket and rings the doorbell.
// Safe to call from any worker; messages from one producer arrive in enqueue
// order. Returns errQueueFull when the client is too slow to keep up; the
// caller decides the policy.
func (c *Client) notify(message string) error {
	if err := c.writeQueue.enqueue(message); err != nil {
		return err
	}
	select {
	case c.wakeup <- struct{}{}:
	default:
		// a signal is already pending and its drain will pick this
		// message up as well
	}
	return nil
}

// teardown runs exactly once, on the worker goroutine: stop the write pump,
// flush what is left of the queue best effort, close the socket, leave the
// registry, and only then account the connection gone.
func (c *Client) teardown() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.wpdone
	c.writeQueue.drainEach(func(m string) {
		c.write(m)
	})
	c.socket.Close()
	clients.delete(c)
	c.RLock()
	nick, wasRegistered := c.nick, c.registered
	c.RUnlock()
	if wasRegistered {
		statsUnregister()
		logEvent(nick, "disconnect", "")
	}
	statsDisconnect()
	D("connection closed:", c.describe())
}

func (c *Client) isClosing() bool {
	c.RLock()
	defer c.RUnlock()
	return c.closing
}

func (c *Client) markClosing() {
	c.Lock()
	c.closing = true
	c.Unlock()
}

func (c *Client) nickname() string {
	c.RLock()
	defer c.RUnlock()
	return c.nick
}

func (c *Client) isRegistered() bool {
	c.RLock()
	defer c.RUnlock()
	return c.registered
}

// prefixString is the nick!user@host source this client stamps on relayed
// messages.
func (c *Client) prefixString() string {
	c.RLock()
	defer c.RUnlock()
	return c.nick + "!" + c.username + "@" + c.hostname
}

// identitySnapshot returns the fields the reply formatter needs in one
// consistent read.
func (c *Client) identitySnapshot() (nick, user, host, real string) {
	c.RLock()
	defer c.RUnlock()
	return c.nick, c.username, c.hostname, c.realname
}

func (c *Client) describe() string {
	c.RLock()
	defer c.RUnlock()
	if c.nick == "" {
		return "<unregistered>@" + c.hostname
	}
	return c.nick + "@" + c.hostname
}
