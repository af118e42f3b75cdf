// Package notice holds short-lived status messages shown after an operator
// action, such as a finished sale.
package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible when no TTL is configured
const DefaultTTL = 5 * time.Second

// Notice is a status message with its posting time
type Notice struct {
	Message  string    `json:"message"`
	Level    string    `json:"level"`
	PostedAt time.Time `json:"posted_at"`
}

// Board keeps the latest notice and clears it after the TTL. Posting again
// cancels the pending clear.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notice
	timer   *time.Timer
	seq     uint64
}

// NewBoard creates an empty board
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{ttl: ttl}
}

// Post replaces the current notice
func (b *Board) Post(level, message string) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}

	n := Notice{Message: message, Level: level, PostedAt: time.Now()}
	b.current = &n
	b.seq++
	seq := b.seq
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(seq) })

	return n
}

// a timer that already fired before Stop must not clear a newer notice
func (b *Board) expire(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq == seq {
		b.current = nil
		b.timer = nil
	}
}

// Current returns the visible notice, if any
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// Stop clears the board and cancels any pending timer
func (b *Board) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
	b.seq++
}
