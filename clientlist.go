package main

import (
	"errors"
	"sync"
)

var (
	errNickInvalid = errors.New("clientlist: nickname contains invalid characters")
	errNickInUse   = errors.New("clientlist: nickname already registered")
)

// clientList is the global registry of connected clients, keyed by nickname.
// It wraps a trie over the nickname alphabet behind one exclusive lock, so
// that the scandinavian case equivalence of RFC Section 2.2 falls out of the
// codec and every operation observes a consistent registry. The find and
// execute pattern is what makes lookups usable across workers: the action
// runs while the lock is held, so the target cannot be deleted between the
// lookup and the use.
type clientList struct {
	words *trie
	mu    sync.Mutex
}

var clients *clientList

// initClientList sets up the registry. Must be called exactly once by the
// parent goroutine before any worker is started.
func initClientList(cod codec) {
	clients = &clientList{words: newTrie(cod, nil)}
}

// destroyClientList tears the registry down. Must be called exactly once,
// after every worker has exited and no more accesses will be performed.
func destroyClientList() {
	clients.mu.Lock()
	defer clients.mu.Unlock()
	clients.words.destroy(false)
}

// add registers client under newnick if no canonical-equal nickname is taken.
// The search and the insertion happen atomically. newnick is assumed to be
// the client's nickname no matter what client.nick currently holds, and
// client.nick is not updated here: that eases adding clients whose proposed
// nickname may still turn out invalid.
func (l *clientList) add(client *Client, newnick string) error {
	if len(newnick) == 0 || len(newnick) > MAXNICKLENGTH {
		return errNickInvalid
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.words.lookup(newnick) != nil {
		return errNickInUse
	}
	if err := l.words.insert(newnick, client); err != nil {
		return errNickInvalid
	}
	return nil
}

// delete removes client from the registry. Nothing happens if no such client
// is registered.
func (l *clientList) delete(client *Client) {
	nick := client.nickname()
	if nick == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.words.lookup(nick) == client {
		l.words.remove(nick)
	}
}

// findAndExecute looks nick up and, on a match, calls f with the matching
// client, all in one atomic step. called reports whether f ran, so the caller
// can tell a missing client from an f that returned nil.
//
// f runs with the registry lock held: it must be brief, must not touch the
// registry again, and must not block on locks that other registry callers
// might hold. Terminating the worker inside f would leave the lock taken and
// freeze the whole daemon.
func (l *clientList) findAndExecute(nick string, f func(*Client) interface{}) (result interface{}, called bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data := l.words.lookup(nick)
	if data == nil {
		return nil, false
	}
	return f(data.(*Client)), true
}

// findByPrefix collects up to max registered nicknames starting with prefix,
// in canonical spelling, walking the trie cursor under one lock hold. An
// empty prefix enumerates from the root.
func (l *clientList) findByPrefix(prefix string, max int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, max)
	cur, nick, _ := l.words.prefixNext(nil, prefix, MAXNICKLENGTH+1)
	for cur != nil && len(out) < max {
		out = append(out, nick)
		cur, nick, _ = l.words.prefixNext(cur, prefix, MAXNICKLENGTH+1)
	}
	l.words.releaseCursor(cur)
	return out
}

// foreach visits every registered client. The visitor runs under the
// registry lock, the findAndExecute caveats apply.
func (l *clientList) foreach(f func(*Client)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.words.foreach(func(data interface{}) {
		f(data.(*Client))
	})
}
