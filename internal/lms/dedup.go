package lms

// cachedResult is what the apply loop records for a command's
// RequestID: either the marshaled response or the error the handler
// returned, so a replayed request (or the client router's second-hop
// fetch) observes exactly what actually happened at apply time.
type cachedResult struct {
	Response []byte
	Err      string
}

// dedupCache is a bounded FIFO cache of recently-applied request ids
// (spec.md §9 open question on deduplication). A true LRU would also be
// correct; FIFO is simpler and sufficient since client retries cluster
// tightly around the original attempt.
type dedupCache struct {
	capacity int
	order    []string
	entries  map[string]cachedResult
}

func newDedupCache(capacity int) *dedupCache {
	return &dedupCache{
		capacity: capacity,
		entries:  make(map[string]cachedResult, capacity),
	}
}

func (c *dedupCache) get(requestID string) (cachedResult, bool) {
	r, ok := c.entries[requestID]
	return r, ok
}

func (c *dedupCache) put(requestID string, result cachedResult) {
	if _, exists := c.entries[requestID]; exists {
		c.entries[requestID] = result
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, requestID)
	c.entries[requestID] = result
}
