package logger

import (
	"fmt"
	"sync"
	"time"
)

// RunEvent is one progress entry captured during a generation run.
type RunEvent struct {
	Timestamp string `json:"timestamp"`
	Elapsed   string `json:"elapsed"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

const (
	EventInfo    = "info"
	EventSuccess = "success"
	EventError   = "error"
)

// RunCollector captures step events for one generation run and fans them out
// to live subscribers. Safe for concurrent use; create one per run.
type RunCollector struct {
	mu     sync.Mutex
	start  time.Time
	now    func() time.Time
	events []RunEvent
	subs   map[chan RunEvent]struct{}
	closed bool
}

func NewRunCollector() *RunCollector {
	return &RunCollector{
		start: time.Now(),
		now:   time.Now,
		subs:  make(map[chan RunEvent]struct{}),
	}
}

func (c *RunCollector) add(typ, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	now := c.now()
	ev := RunEvent{
		Timestamp: now.Format("03:04:05 PM"),
		Elapsed:   fmt.Sprintf("+%.2fs", now.Sub(c.start).Seconds()),
		Message:   fmt.Sprintf(format, args...),
		Type:      typ,
	}
	c.events = append(c.events, ev)
	for ch := range c.subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop rather than block the run
		}
	}
}

func (c *RunCollector) Info(format string, args ...interface{}) {
	c.add(EventInfo, format, args...)
}

func (c *RunCollector) Success(format string, args ...interface{}) {
	c.add(EventSuccess, format, args...)
}

func (c *RunCollector) Error(format string, args ...interface{}) {
	c.add(EventError, format, args...)
}

// Events returns a copy of everything captured so far.
func (c *RunCollector) Events() []RunEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RunEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Subscribe registers a live event channel. The cancel func must be called
// when the subscriber is done; the channel is closed on cancel or Close.
func (c *RunCollector) Subscribe(buf int) (<-chan RunEvent, func()) {
	ch := make(chan RunEvent, buf)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Replay returns the events captured so far and a live channel for the
// rest, registered under the same lock so no event falls in the gap
// between snapshot and subscription.
func (c *RunCollector) Replay(buf int) ([]RunEvent, <-chan RunEvent, func()) {
	ch := make(chan RunEvent, buf)
	c.mu.Lock()
	past := make([]RunEvent, len(c.events))
	copy(past, c.events)
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return past, ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
	return past, ch, cancel
}

// Close stops fan-out and closes every subscriber channel.
func (c *RunCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for ch := range c.subs {
		close(ch)
		delete(c.subs, ch)
	}
}
