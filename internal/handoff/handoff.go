// Package handoff is the bounded cross-thread channel between the
// scraper's blocking fetch worker and its publisher goroutine.
//
// The original system needed a thread-safe enqueue primitive
// (asyncio.run_coroutine_threadsafe) to bridge a worker thread into an
// async event loop. Go has no such loop to bridge into: a goroutine and a
// buffered channel already give the same bounded handoff and backpressure
// (a full channel blocks the sender), so this package is a thin named type
// around chan, kept as its own package because both the scraper worker and
// its publisher (including the publisher's drain on shutdown) need to
// agree on the exact same channel type and drain contract.
package handoff

import "github.com/wayming/Automated-Trading-System/internal/article"

// Channel is a bounded handoff queue of raw scraped messages.
type Channel chan *article.Message

// New creates a Channel with the given buffer capacity.
func New(capacity int) Channel {
	return make(Channel, capacity)
}

// Drained reports whether the channel has no buffered items left.
func (c Channel) Drained() bool {
	return len(c) == 0
}
