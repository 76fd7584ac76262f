// Package frontier implements the crawler's URL frontier: a FIFO work queue
// (with no capacity limit) with a seen-set for deduplication and a clean stop/drain
// termination protocol, shared by all crawl workers behind a single mutex
// and condition variable.
package frontier

import (
	"strings"
	"sync"
)

// Item is a (URL, depth) pair dequeued by a worker.
type Item struct {
	URL   string
	Depth int
}

// Frontier is the thread-safe queue described in spec §4.2: pending items
// tracked by queuedSet for enqueue-time dedup, plus a processedSet of URLs
// the crawl has completed.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending []Item

	queuedSet    map[string]bool
	processedSet map[string]bool

	stopped bool
}

// New returns an empty, running Frontier.
func New() *Frontier {
	f := &Frontier{
		queuedSet:    make(map[string]bool),
		processedSet: make(map[string]bool),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Normalize lowercases the entire URL and trims a single trailing slash,
// for identity comparison purposes only. This is deliberately coarse — it
// conflates case-sensitive paths — see DESIGN.md for why it
// is kept as-is rather than narrowed to scheme+host.
func Normalize(url string) string {
	lowered := strings.ToLower(url)
	if len(lowered) > 1 && strings.HasSuffix(lowered, "/") {
		return lowered[:len(lowered)-1]
	}
	return lowered
}

// Enqueue normalizes url and appends it to the pending queue unless it is
// already queued or already processed, waking exactly one waiting consumer.
// It returns whether the URL was newly added.
func (f *Frontier) Enqueue(url string, depth int) bool {
	normalized := Normalize(url)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queuedSet[normalized] || f.processedSet[normalized] {
		return false
	}

	f.pending = append(f.pending, Item{URL: normalized, Depth: depth})
	f.queuedSet[normalized] = true
	f.cond.Signal()
	return true
}

// Dequeue blocks until an item is available or the frontier is stopped and
// drained, in which case ok is false. The returned URL is removed from the
// queued set but not yet added to the processed set — the caller must call
// MarkProcessed once handling completes.
func (f *Frontier) Dequeue() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.pending) == 0 && !f.stopped {
		f.cond.Wait()
	}

	if len(f.pending) == 0 {
		return Item{}, false
	}

	item := f.pending[0]
	f.pending = f.pending[1:]
	delete(f.queuedSet, item.URL)
	return item, true
}

// MarkProcessed adds the normalized URL to the processed set.
func (f *Frontier) MarkProcessed(url string) {
	normalized := Normalize(url)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.processedSet[normalized] = true
}

// IsProcessed reports whether the normalized URL has already been processed.
func (f *Frontier) IsProcessed(url string) bool {
	normalized := Normalize(url)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processedSet[normalized]
}

// Stop marks the frontier stopped and wakes every waiter; subsequent
// Dequeue calls return ok=false once the pending queue drains.
func (f *Frontier) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// PendingCount returns the number of items not yet dequeued.
func (f *Frontier) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// ProcessedCount returns the number of URLs marked processed.
func (f *Frontier) ProcessedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processedSet)
}

// Empty reports whether the pending queue currently holds no items.
func (f *Frontier) Empty() bool {
	return f.PendingCount() == 0
}
