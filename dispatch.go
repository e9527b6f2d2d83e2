package main

import "strings"

// ircMessage is a parsed message with fields copied out of the reassembler
// buffer, so handlers may keep it past the read callback.
type ircMessage struct {
	prefix  string
	command string
	params  []string
}

type commandHandler func(c *Client, m *ircMessage)

type command struct {
	handler commandHandler
	// preReg marks the few commands a client may issue before NICK+USER
	// completed registration.
	preReg bool
}

// commandTable maps command words to handlers through a letters-only trie, so
// lookups are case insensitive for free. Built once at startup, read only
// afterwards, which is what makes the lock-free concurrent lookups sound.
var commandTable *trie

func initDispatch() {
	commandTable = newTrie(newCommandCodec(), nil)
	table := map[string]command{
		"nick":    {cmdNick, true},
		"user":    {cmdUser, true},
		"quit":    {cmdQuit, true},
		"ping":    {cmdPing, false},
		"pong":    {cmdPong, false},
		"privmsg": {cmdPrivmsg, false},
		"notice":  {cmdNotice, false},
		"motd":    {cmdMotd, false},
		"who":     {cmdWho, false},
	}
	for name, cmd := range table {
		if err := commandTable.insert(name, cmd); err != nil {
			F("bad command table entry: ", name)
		}
	}
}

// dispatch routes one parsed message to its handler. Unknown commands get a
// numeric 421; everything except NICK, USER and QUIT requires a registered
// client and gets 451 otherwise. Numeric commands from clients never match
// the letters-only table, which is the behavior we want.
func dispatch(c *Client, m *ircMessage) {
	data := commandTable.lookup(m.command)
	if data == nil {
		if c.isRegistered() {
			sendNumericReply(c, ERR_UNKNOWNCOMMAND, m.command+" :Unknown command")
		} else {
			sendNumericReply(c, ERR_NOTREGISTERED, ":You have not registered")
		}
		return
	}
	cmd := data.(command)
	if !cmd.preReg && !c.isRegistered() {
		sendNumericReply(c, ERR_NOTREGISTERED, ":You have not registered")
		return
	}
	cmd.handler(c, m)
}

func cmdNick(c *Client, m *ircMessage) {
	if len(m.params) == 0 {
		sendNumericReply(c, ERR_NONICKNAMEGIVEN, ":No nickname given")
		return
	}
	newnick := m.params[0]
	if len(newnick) > MAXNICKLENGTH {
		sendNumericReply(c, ERR_ERRONEUSNICKNAME, newnick+" :Erroneus nickname")
		return
	}
	canonNew, ok := canonicalNick(nickCod, newnick)
	if !ok {
		sendNumericReply(c, ERR_ERRONEUSNICKNAME, newnick+" :Erroneus nickname")
		return
	}

	old := c.nickname()
	if old != "" {
		if canonOld, _ := canonicalNick(nickCod, old); canonOld == canonNew {
			// same nickname in a different spelling, the registry key does
			// not change
			oldPrefix := c.prefixString()
			c.Lock()
			c.nick = newnick
			c.Unlock()
			if c.isRegistered() {
				c.notify(clampMsg(":" + oldPrefix + " NICK :" + newnick))
			}
			return
		}
	}

	switch err := clients.add(c, newnick); err {
	case errNickInvalid:
		sendNumericReply(c, ERR_ERRONEUSNICKNAME, newnick+" :Erroneus nickname")
		return
	case errNickInUse:
		sendNumericReply(c, ERR_NICKNAMEINUSE, newnick+" :Nickname is already in use")
		return
	}

	oldPrefix := c.prefixString()
	if old != "" {
		clients.delete(c)
	}
	c.Lock()
	c.nick = newnick
	c.Unlock()

	if c.isRegistered() {
		c.notify(clampMsg(":" + oldPrefix + " NICK :" + newnick))
		logEvent(newnick, "nick", old)
	} else {
		c.maybeRegister()
	}
}

func cmdUser(c *Client, m *ircMessage) {
	if c.isRegistered() {
		sendNumericReply(c, ERR_ALREADYREGISTRED, ":You may not reregister")
		return
	}
	if len(m.params) < 4 {
		sendNumericReply(c, ERR_NEEDMOREPARAMS, "USER :Not enough parameters")
		return
	}
	c.Lock()
	c.username = m.params[0]
	c.realname = m.params[3]
	c.Unlock()
	c.maybeRegister()
}

// maybeRegister completes registration once both NICK and USER went through.
func (c *Client) maybeRegister() {
	c.Lock()
	if c.registered || c.nick == "" || c.username == "" {
		c.Unlock()
		return
	}
	c.registered = true
	c.Unlock()
	statsRegister()
	sendWelcome(c)
	sendMotd(c)
	logEvent(c.nickname(), "register", "")
}

func cmdPrivmsg(c *Client, m *ircMessage) {
	relayMsg(c, m, "PRIVMSG", true)
}

// NOTICE never triggers automatic replies, not even error numerics.
func cmdNotice(c *Client, m *ircMessage) {
	relayMsg(c, m, "NOTICE", false)
}

// relayMsg looks the target up and enqueues the formatted relay on its
// worker, all under the registry lock: the target cannot disconnect between
// the lookup and the delivery. A full target queue means the recipient is
// not keeping up; the message is dropped and accounted rather than letting
// its backlog grow without bound.
func relayMsg(c *Client, m *ircMessage, verb string, replies bool) {
	if len(m.params) == 0 {
		if replies {
			sendNumericReply(c, ERR_NORECIPIENT, ":No recipient given ("+verb+")")
		}
		return
	}
	if len(m.params) < 2 || m.params[1] == "" {
		if replies {
			sendNumericReply(c, ERR_NOTEXTTOSEND, ":No text to send")
		}
		return
	}
	target := m.params[0]
	relay := clampMsg(":" + c.prefixString() + " " + verb + " " + target + " :" + m.params[1])

	_, called := clients.findAndExecute(target, func(to *Client) interface{} {
		if err := to.notify(relay); err != nil {
			statsDropped()
			D("write queue full, dropping "+verb+" for", to.describe())
		} else {
			statsDelivered()
		}
		return nil
	})
	if !called {
		if replies {
			sendNumericReply(c, ERR_NOSUCHNICK, target+" :No such nick/channel")
		}
		return
	}
	logEvent(c.nickname(), strings.ToLower(verb), target)
}

func cmdPing(c *Client, m *ircMessage) {
	if len(m.params) == 0 {
		sendNumericReply(c, ERR_NOORIGIN, ":No origin specified")
		return
	}
	c.notify(clampMsg(":" + serverName + " PONG " + serverName + " :" + m.params[0]))
}

func cmdPong(c *Client, m *ircMessage) {
}

func cmdMotd(c *Client, m *ircMessage) {
	sendMotd(c)
}

// WHOPAGESIZE bounds the number of replies a single WHO produces.
const WHOPAGESIZE = 64

// cmdWho lists visible users whose nickname starts with the given mask, one
// page worth at most. The registry enumerates through its trie cursor, so the
// walk is confined to the mask's subtree instead of scanning every client.
func cmdWho(c *Client, m *ircMessage) {
	mask := ""
	if len(m.params) > 0 && m.params[0] != "0" && m.params[0] != "*" {
		mask = m.params[0]
	}
	for _, nick := range clients.findByPrefix(mask, WHOPAGESIZE) {
		var line string
		_, called := clients.findAndExecute(nick, func(to *Client) interface{} {
			n, user, host, real := to.identitySnapshot()
			line = "* " + user + " " + host + " " + serverName + " " + n + " H :0 " + real
			return nil
		})
		if called {
			sendNumericReply(c, RPL_WHOREPLY, line)
		}
	}
	name := mask
	if name == "" {
		name = "*"
	}
	sendNumericReply(c, RPL_ENDOFWHO, name+" :End of /WHO list")
}

func cmdQuit(c *Client, m *ircMessage) {
	reason := "Client Quit"
	if len(m.params) > 0 {
		reason = m.params[0]
	}
	c.RLock()
	host := c.hostname
	c.RUnlock()
	c.notify(clampMsg("ERROR :Closing Link: " + host + " (" + reason + ")"))
	c.markClosing()
}
