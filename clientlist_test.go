package main

import (
	"sync"
	"testing"
)

func TestClientListCaseFolding(t *testing.T) {
	c1 := &Client{}
	c2 := &Client{}

	if err := clients.add(c1, "Bob{"); err != nil {
		t.Fatalf("add(Bob{) failed: %v", err)
	}
	defer func() {
		c1.nick = "Bob{"
		clients.delete(c1)
	}()

	if err := clients.add(c2, "bob["); err != errNickInUse {
		t.Errorf("add(bob[) = %v, expected nick in use", err)
	}

	res, called := clients.findAndExecute("BOB[", func(c *Client) interface{} {
		return c
	})
	if !called {
		t.Fatal("findAndExecute(BOB[) found nothing")
	}
	if res != c1 {
		t.Error("findAndExecute returned the wrong client")
	}
}

func TestClientListAddValidation(t *testing.T) {
	c := &Client{}
	if err := clients.add(c, ""); err != errNickInvalid {
		t.Errorf("empty nickname gave %v", err)
	}
	if err := clients.add(c, "0123456789"); err != errNickInvalid {
		t.Errorf("ten character nickname gave %v", err)
	}
	if err := clients.add(c, "with space"); err != errNickInvalid {
		t.Errorf("nickname with invalid characters gave %v", err)
	}

	// nine characters with every special is fine
	if err := clients.add(c, "a-[]\\`^{}"); err != nil {
		t.Fatalf("nickname with specials gave %v", err)
	}
	c.nick = "a-[]\\`^{}"
	clients.delete(c)
}

func TestClientListDeleteIdempotent(t *testing.T) {
	c := &Client{}
	clients.delete(c) // no nickname at all

	if err := clients.add(c, "deltest"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	c.nick = "deltest"
	clients.delete(c)
	clients.delete(c) // second delete finds nothing

	if _, called := clients.findAndExecute("deltest", func(c *Client) interface{} { return nil }); called {
		t.Error("client still registered after delete")
	}

	// deleting one client must not remove another holding the nickname
	c1, c2 := &Client{}, &Client{}
	if err := clients.add(c1, "keeper"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	c1.nick = "keeper"
	c2.nick = "keeper"
	clients.delete(c2)
	if _, called := clients.findAndExecute("keeper", func(c *Client) interface{} { return nil }); !called {
		t.Error("delete by an impostor removed the registered client")
	}
	clients.delete(c1)
}

func TestClientListFindByPrefix(t *testing.T) {
	nicks := []string{"pfxbob", "pfxbo", "pfxalice", "other"}
	cs := make([]*Client, len(nicks))
	for i, n := range nicks {
		cs[i] = &Client{}
		if err := clients.add(cs[i], n); err != nil {
			t.Fatalf("add(%q) failed: %v", n, err)
		}
		cs[i].nick = n
	}
	defer func() {
		for _, c := range cs {
			clients.delete(c)
		}
	}()

	got := clients.findByPrefix("pfx", 10)
	if len(got) != 3 {
		t.Fatalf("findByPrefix(pfx) = %v", got)
	}
	expected := []string{"pfxalice", "pfxbo", "pfxbob"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("position %d = %q, expected %q", i, got[i], expected[i])
		}
	}

	if got := clients.findByPrefix("pfx", 2); len(got) != 2 {
		t.Errorf("bounded enumeration returned %d entries", len(got))
	}
}

// Concurrent adders racing for one nickname: exactly one wins, and the
// callback always observes a client registered under that nickname.
func TestClientListAtomicity(t *testing.T) {
	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan *Client, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &Client{}
			if err := clients.add(c, "racednick"); err == nil {
				c.Lock()
				c.nick = "racednick"
				c.Unlock()
				wins <- c
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winner *Client
	n := 0
	for c := range wins {
		winner = c
		n++
	}
	if n != 1 {
		t.Fatalf("%d adders won the race for one nickname", n)
	}
	res, called := clients.findAndExecute("racednick", func(c *Client) interface{} { return c })
	if !called || res != winner {
		t.Error("registry does not hold the race winner")
	}
	clients.delete(winner)
}
