package main

import (
	"strings"
	"testing"
)

func feed(t *testing.T, b *msgBuf, fragment string) {
	t.Helper()
	if _, err := b.readMore(strings.NewReader(fragment), "test"); err != nil {
		t.Fatalf("readMore(%q) failed: %v", fragment, err)
	}
}

func TestMsgbufFragmentReassembly(t *testing.T) {
	b := &msgBuf{}
	feed(t, b, "PING :foo\r")
	if _, err := b.next(); err != errMsgContinue {
		t.Fatalf("partial message gave %v, expected continue", err)
	}
	feed(t, b, "\n")
	m, err := b.next()
	if err != nil {
		t.Fatalf("complete message gave %v", err)
	}
	if string(m) != "PING :foo\r\n" || len(m) != 11 {
		t.Errorf("extracted %q (len %d)", m, len(m))
	}
}

func TestMsgbufBackToBack(t *testing.T) {
	b := &msgBuf{}
	feed(t, b, "NICK bob\r\nUSER bob 0 * :Bob\r\n")
	m, err := b.next()
	if err != nil || string(m) != "NICK bob\r\n" {
		t.Fatalf("first message %q, %v", m, err)
	}
	m, err = b.next()
	if err != nil || string(m) != "USER bob 0 * :Bob\r\n" {
		t.Fatalf("second message %q, %v", m, err)
	}
	if _, err = b.next(); err != errMsgContinue {
		t.Errorf("drained buffer gave %v, expected continue", err)
	}
}

// Feeding any split of a stream must extract the same messages as feeding it
// whole.
func TestMsgbufSplitIdempotence(t *testing.T) {
	stream := "NICK bob\r\nPRIVMSG alice :hello there\r\nPING :x\r\n"
	expected := []string{"NICK bob\r\n", "PRIVMSG alice :hello there\r\n", "PING :x\r\n"}

	for split := 0; split <= len(stream); split++ {
		b := &msgBuf{}
		var got []string
		for _, fragment := range []string{stream[:split], stream[split:]} {
			if fragment == "" {
				continue
			}
			feed(t, b, fragment)
			for {
				m, err := b.next()
				if err != nil {
					if err != errMsgContinue {
						t.Fatalf("split %d: next gave %v", split, err)
					}
					break
				}
				got = append(got, string(m))
			}
		}
		if len(got) != len(expected) {
			t.Fatalf("split %d: extracted %d messages", split, len(got))
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("split %d: message %d = %q", split, i, got[i])
			}
		}
	}
}

func TestMsgbufMaxLengthMessage(t *testing.T) {
	b := &msgBuf{}
	payload := strings.Repeat("a", MAXMSGSIZE-2)
	feed(t, b, payload+"\r\n")
	m, err := b.next()
	if err != nil {
		t.Fatalf("510 byte payload gave %v", err)
	}
	if len(m) != MAXMSGSIZE {
		t.Errorf("extracted %d bytes, expected %d", len(m), MAXMSGSIZE)
	}
	if _, err := b.next(); err != errMsgContinue {
		t.Errorf("drained buffer gave %v", err)
	}
	// the continue compacted everything away, the next read starts clean
	feed(t, b, "PING :x\r\n")
	if m, err := b.next(); err != nil || string(m) != "PING :x\r\n" {
		t.Errorf("message after a full-size one gave %q, %v", m, err)
	}
}

func TestMsgbufOversizeMessage(t *testing.T) {
	b := &msgBuf{}
	// 511 bytes of payload plus \r\n: 513 bytes, one over the limit
	payload := strings.Repeat("a", MAXMSGSIZE-1)
	feed(t, b, payload+"\r")
	if _, err := b.next(); err != errMsgContinue {
		t.Fatalf("first 512 bytes gave %v, expected continue", err)
	}
	// the buffer is full without a terminator; this read discards it and
	// leaves the dangling \n behind, which must surface as a framing error
	feed(t, b, "\n")
	if _, err := b.next(); err != errMsgFinish {
		t.Errorf("oversize message gave %v, expected finish error", err)
	}
	// the reset leaves the buffer usable
	feed(t, b, "PING :x\r\n")
	if m, err := b.next(); err != nil || string(m) != "PING :x\r\n" {
		t.Errorf("message after reset gave %q, %v", m, err)
	}
}

func TestMsgbufMalformedTerminators(t *testing.T) {
	b := &msgBuf{}
	// a lone \n before the \r makes the candidate message end in \r
	feed(t, b, "foo\n\r")
	if _, err := b.next(); err != errMsgFinish {
		t.Errorf("reversed terminator gave %v, expected finish error", err)
	}

	b = &msgBuf{}
	feed(t, b, "\n\r")
	if _, err := b.next(); err != errMsgFinish {
		t.Errorf("bare reversed terminator gave %v, expected finish error", err)
	}

	b = &msgBuf{}
	feed(t, b, "\r")
	if _, err := b.next(); err != errMsgContinue {
		t.Errorf("lone \\r gave %v, expected continue", err)
	}

	b = &msgBuf{}
	feed(t, b, "\n")
	if _, err := b.next(); err != errMsgContinue {
		t.Errorf("lone \\n gave %v, expected continue", err)
	}
}

func TestMsgbufEmpty(t *testing.T) {
	b := &msgBuf{}
	if _, err := b.next(); err != errMsgContinue {
		t.Errorf("empty buffer gave %v, expected continue", err)
	}
}
