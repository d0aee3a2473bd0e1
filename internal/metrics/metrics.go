package metrics

import "sync/atomic"

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Registry collects process-lifetime counters surfaced on the admin dashboard.
type Registry struct {
	OrdersCreated       Counter
	WebhooksProcessed   Counter
	WebhooksRejected    Counter
	ReservationsCreated Counter
	CacheHits           Counter
	CacheMisses         Counter
}

// Default is the process-wide registry.
var Default = &Registry{}

// Snapshot returns current counter values for serialization.
func (r *Registry) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"ordersCreated":       r.OrdersCreated.Load(),
		"webhooksProcessed":   r.WebhooksProcessed.Load(),
		"webhooksRejected":    r.WebhooksRejected.Load(),
		"reservationsCreated": r.ReservationsCreated.Load(),
		"cacheHits":           r.CacheHits.Load(),
		"cacheMisses":         r.CacheMisses.Load(),
	}
}
