package shuffle

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// keyedMutex hands out one mutex per key. Entries are reference counted and
// removed once the last holder releases them, so idle keys cost nothing.
type keyedMutex struct {
	locks *xsync.MapOf[string, *refMutex]
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: xsync.NewMapOf[string, *refMutex]()}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) (unlock func()) {
	m, _ := k.locks.Compute(key, func(old *refMutex, loaded bool) (*refMutex, bool) {
		if !loaded {
			old = &refMutex{}
		}
		old.refs++
		return old, false
	})

	m.mu.Lock()

	return func() {
		m.mu.Unlock()
		k.locks.Compute(key, func(old *refMutex, loaded bool) (*refMutex, bool) {
			old.refs--
			return old, old.refs == 0
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (k *keyedMutex) Len() int {
	return k.locks.Size()
}

// generations counts prefix invalidations per scope name. A counter is odd
// while a delete is running, so readers that saw the same even value before
// and after a cache round trip know no invalidation overlapped it.
type generations struct {
	counters *xsync.MapOf[string, *atomic.Uint64]
}

func newGenerations() *generations {
	return &generations{counters: xsync.NewMapOf[string, *atomic.Uint64]()}
}

func (g *generations) counter(name string) *atomic.Uint64 {
	c, _ := g.counters.LoadOrCompute(name, func() *atomic.Uint64 {
		return new(atomic.Uint64)
	})
	return c
}

// load returns the current generation of name.
func (g *generations) load(name string) uint64 {
	return g.counter(name).Load()
}

// bump runs del between two increments of name's generation.
func (g *generations) bump(name string, del func() error) error {
	c := g.counter(name)
	c.Add(1)
	defer c.Add(1)
	return del()
}

// stable reports whether no invalidation of name ran between two loads.
func stable(before, after uint64) bool {
	return before == after && before%2 == 0
}
