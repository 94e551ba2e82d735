package sharding

import "time"

// Router resolves a timestamp to the shard owning its time window.
// The shard set is loaded once at startup and immutable afterwards, so
// the router is safe for concurrent reads and free of side effects.
type Router struct {
	shards []Shard
	def    Shard
}

// NewRouter creates a router over the given shard set. The default
// shard receives every timestamp outside all configured windows; this
// is an explicit fallback, not an error path.
func NewRouter(shards []Shard, def Shard) (*Router, error) {
	if err := Validate(shards, def); err != nil {
		return nil, err
	}
	return &Router{shards: shards, def: def}, nil
}

// Route returns the first shard whose inclusive window contains t, or
// the default shard when none matches. Linear scan: the shard count is
// small and fixed.
func (r *Router) Route(t time.Time) Shard {
	for _, s := range r.shards {
		if s.Contains(t) {
			return s
		}
	}
	return r.def
}

// Shards returns the configured shard set, default shard last.
func (r *Router) Shards() []Shard {
	out := make([]Shard, 0, len(r.shards)+1)
	out = append(out, r.shards...)
	out = append(out, r.def)
	return out
}

// Default returns the designated fallback shard.
func (r *Router) Default() Shard {
	return r.def
}
