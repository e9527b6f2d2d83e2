package main

import (
	"bufio"
	"os"
)

// Server identity, filled in from configuration at startup and read only
// afterwards.
var (
	serverName    = "irc.mossnet.org"
	serverVersion = "mossircd-0.1"
	serverCreated = ""
	nickCod       codec
)

// motdLines is what the MOTD block serves; replaced by loadMotd when a motd
// file is configured.
var motdLines = []string{
	"Hello, welcome to this IRC server.",
	"This is an experimental server with very few features implemented.",
	"Only private messages are allowed at the moment, sorry!",
	"Good luck! :P",
}

func loadMotd(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		P("could not open motd file, using the builtin one:", err)
		return
	}
	defer f.Close()
	lines := make([]string, 0, 16)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) > 0 {
		motdLines = lines
	}
}

// clampMsg bounds a reply to the protocol's message size and terminates it.
// Replies that would not fit are cut, never split.
func clampMsg(s string) string {
	if len(s) > MAXMSGSIZE-2 {
		s = s[:MAXMSGSIZE-2]
	}
	return s + "\r\n"
}

// sendNumericReply formats ":<server> <numeric> <nick> <rest>" and queues it
// on the client's own worker. Before registration the nick placeholder is
// "*". Delivery failure here means the client's queue is full; the reply is
// dropped and accounted, disconnecting is left to the read timeout.
func sendNumericReply(c *Client, numeric, rest string) {
	nick := c.nickname()
	if nick == "" {
		nick = "*"
	}
	if err := c.notify(clampMsg(":" + serverName + " " + numeric + " " + nick + " " + rest)); err != nil {
		statsDropped()
		D("write queue full, dropping numeric", numeric, "for", c.describe())
	}
}

// sendWelcome greets a client that just completed registration with the
// 001..004 burst.
func sendWelcome(c *Client) {
	nick, user, host, _ := c.identitySnapshot()
	sendNumericReply(c, RPL_WELCOME, ":Welcome to the Internet Relay Network "+nick+"!"+user+"@"+host)
	sendNumericReply(c, RPL_YOURHOST, ":Your host is "+serverName+", running version "+serverVersion)
	sendNumericReply(c, RPL_CREATED, ":This server was created "+serverCreated)
	sendNumericReply(c, RPL_MYINFO, ":"+serverName+" "+serverVersion+" UMODES=xTR CHANMODES=mvil")
}

func sendMotd(c *Client) {
	sendNumericReply(c, RPL_MOTDSTART, ":- "+serverName+" Message of the day -")
	for _, line := range motdLines {
		sendNumericReply(c, RPL_MOTD, ":- "+line)
	}
	sendNumericReply(c, RPL_ENDOFMOTD, ":End of /MOTD command")
}
