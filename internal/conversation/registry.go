package conversation

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"gitlab.com/timkado/api/lead-console/internal/observer"
)

// Registry hands out one Aggregator per lead id, so each lead keeps a single
// token sequence. Entries are evicted by size and idle age.
type Registry struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Aggregator]
	factory func() *Aggregator
}

// NewRegistry creates a registry holding at most size aggregators, each
// dropped after ttl without access. A ttl of 0 disables expiry.
func NewRegistry(size int, ttl time.Duration, client Fetcher, opts ...Option) *Registry {
	if size <= 0 {
		size = 1
	}
	return &Registry{
		cache:   expirable.NewLRU[string, *Aggregator](size, nil, ttl),
		factory: func() *Aggregator { return New(client, opts...) },
	}
}

// Get returns the aggregator for leadID, creating it when absent.
func (r *Registry) Get(leadID string) *Aggregator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if agg, ok := r.cache.Get(leadID); ok {
		return agg
	}
	agg := r.factory()
	r.cache.Add(leadID, agg)
	observer.SetConversationRegistrySize(r.cache.Len())
	return agg
}

// Peek returns the aggregator for leadID without creating one.
func (r *Registry) Peek(leadID string) (*Aggregator, bool) {
	return r.cache.Peek(leadID)
}

// Len returns the number of live aggregators.
func (r *Registry) Len() int {
	n := r.cache.Len()
	observer.SetConversationRegistrySize(n)
	return n
}
