package main

import (
	"fmt"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := &msgQueue{}
	if !q.isEmpty() {
		t.Error("fresh queue should be empty")
	}
	for i := 0; i < 10; i++ {
		if err := q.enqueue(fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
	}
	for i := 0; i < 10; i++ {
		m, ok := q.dequeue()
		if !ok {
			t.Fatalf("dequeue %d found nothing", i)
		}
		if m != fmt.Sprintf("msg %d", i) {
			t.Errorf("dequeue %d = %q", i, m)
		}
	}
	if _, ok := q.dequeue(); ok {
		t.Error("dequeue on an empty queue should report empty")
	}
}

func TestQueueWrapAround(t *testing.T) {
	q := &msgQueue{}
	// push the ring indices past the array boundary a few times
	for round := 0; round < 3; round++ {
		for i := 0; i < WRITEQUEUESIZE-1; i++ {
			if err := q.enqueue("x"); err != nil {
				t.Fatalf("round %d enqueue %d failed: %v", round, i, err)
			}
		}
		for i := 0; i < WRITEQUEUESIZE-1; i++ {
			if _, ok := q.dequeue(); !ok {
				t.Fatalf("round %d dequeue %d found nothing", round, i)
			}
		}
	}
	if !q.isEmpty() {
		t.Error("queue should be empty after balanced rounds")
	}
}

func TestQueueBackpressure(t *testing.T) {
	q := &msgQueue{}
	for i := 0; i < WRITEQUEUESIZE; i++ {
		if err := q.enqueue(fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
	}
	if err := q.enqueue("overflow"); err != errQueueFull {
		t.Errorf("enqueue on a full queue returned %v", err)
	}
	// the failed enqueue must not have disturbed the contents
	for i := 0; i < WRITEQUEUESIZE; i++ {
		m, ok := q.dequeue()
		if !ok || m != fmt.Sprintf("msg %d", i) {
			t.Fatalf("position %d held %q after overflow", i, m)
		}
	}
}

func TestQueueDrainEach(t *testing.T) {
	q := &msgQueue{}
	for i := 0; i < 5; i++ {
		q.enqueue(fmt.Sprintf("msg %d", i))
	}
	var drained []string
	q.drainEach(func(m string) {
		drained = append(drained, m)
	})
	if len(drained) != 5 {
		t.Fatalf("drainEach saw %d messages", len(drained))
	}
	for i, m := range drained {
		if m != fmt.Sprintf("msg %d", i) {
			t.Errorf("drain position %d = %q", i, m)
		}
	}
	if !q.isEmpty() {
		t.Error("queue should be empty after drainEach")
	}
	if err := q.enqueue("again"); err != nil {
		t.Errorf("queue should be reusable after drainEach: %v", err)
	}
}
