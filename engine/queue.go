package engine

import (
	"sync"
	"time"
)

// Queue is the scheduler's unified FIFO message queue. Producers on any
// goroutine push; the scheduler goroutine is the only consumer. A
// buffered wake channel lets the consumer block without spinning
type Queue struct {
	mu   sync.Mutex
	msgs []Msg
	wake chan struct{}
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Push appends a message and wakes a blocked consumer
func (q *Queue) Push(m Msg) {
	q.mu.Lock()
	q.msgs = append(q.msgs, m)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued messages
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// pop removes and returns the head, or nil when empty
func (q *Queue) pop() Msg {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.msgs) == 0 {
		return nil
	}
	m := q.msgs[0]
	copy(q.msgs, q.msgs[1:])
	q.msgs = q.msgs[:len(q.msgs)-1]
	return m
}

// Next returns the head message, blocking until one arrives or timeout
// elapses. On timeout a NoneMsg is returned so the loop keeps turning
func (q *Queue) Next(timeout time.Duration) Msg {
	if m := q.pop(); m != nil {
		return m
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.wake:
			if m := q.pop(); m != nil {
				return m
			}
			// Wake raced an earlier pop; keep waiting
		case <-timer.C:
			if m := q.pop(); m != nil {
				return m
			}
			return NoneMsg{}
		}
	}
}

// Coalesce scans the queue once, keeping only the most recently
// enqueued message per coalesce key. Relative order of survivors is
// preserved. Returns the number of messages discarded
func (q *Queue) Coalesce() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.msgs) < 2 {
		return 0
	}

	// Walk from the tail: the first occurrence of a key seen backward
	// is the most recent and survives
	seen := make(map[string]struct{})
	keep := make([]bool, len(q.msgs))
	for i := len(q.msgs) - 1; i >= 0; i-- {
		key, ok := coalesceKey(q.msgs[i])
		if !ok {
			keep[i] = true
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}

	kept := q.msgs[:0]
	for i, m := range q.msgs {
		if keep[i] {
			kept = append(kept, m)
		}
	}
	dropped := len(q.msgs) - len(kept)
	q.msgs = kept
	return dropped
}
