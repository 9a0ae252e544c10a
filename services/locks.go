package services

import (
	"slices"
	"sync"
)

// keyedMutex hands out one mutex per entity key. Locks are never evicted; the
// key space is bounded by the number of entities.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, exists := k.locks[key]
	if !exists {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// lock acquires every key in sorted order and returns the matching unlock.
func (k *keyedMutex) lock(keys ...string) func() {
	sorted := slices.Compact(slices.Sorted(slices.Values(keys)))
	held := make([]*sync.Mutex, 0, len(sorted))
	for _, key := range sorted {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func userKey(id string) string    { return "user:" + id }
func prayerKey(id string) string  { return "prayer:" + id }
func circuloKey(id string) string { return "circulo:" + id }
