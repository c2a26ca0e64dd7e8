// internal/logbuf/buffer.go

// Package logbuf keeps the most recent operational messages in memory so
// they can be served back to operators. Consecutive duplicates are
// collapsed and the oldest entry is evicted once capacity is reached.
package logbuf

import (
	"sync"
	"time"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// TimeLayout is the timestamp format of rendered entries.
const TimeLayout = "15:04:05"

// Entry is one buffered message.
type Entry struct {
	Time    time.Time
	Message string
}

// String renders the entry as "[HH:MM:SS] message".
func (e Entry) String() string {
	return "[" + e.Time.Format(TimeLayout) + "] " + e.Message
}

// Buffer is a fixed-capacity ring of entries. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	ring    []Entry
	head    int // index of the oldest entry
	size    int
	last    string
	hasLast bool

	now func() time.Time
}

// New creates a buffer holding at most capacity entries.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		ring: make([]Entry, capacity),
		now:  time.Now,
	}
}

// Capacity returns the maximum number of entries.
func (b *Buffer) Capacity() int { return len(b.ring) }

// Append stores message unless it equals the previously appended one.
// It reports whether the message was stored.
func (b *Buffer) Append(message string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasLast && message == b.last {
		return false
	}

	e := Entry{Time: b.now(), Message: message}

	if b.size < len(b.ring) {
		b.ring[(b.head+b.size)%len(b.ring)] = e
		b.size++
	} else {
		// full: overwrite the oldest slot and advance
		b.ring[b.head] = e
		b.head = (b.head + 1) % len(b.ring)
	}

	b.last = message
	b.hasLast = true
	return true
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	return out
}

// GetAll returns the rendered entries, oldest first.
func (b *Buffer) GetAll() []string {
	entries := b.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Clear drops all entries and forgets the last message, so the next
// Append is never suppressed.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.ring {
		b.ring[i] = Entry{}
	}
	b.head = 0
	b.size = 0
	b.last = ""
	b.hasLast = false
}
