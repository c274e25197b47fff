// Package kmutex provides mutual exclusion scoped to string keys.
// Operations on the same key serialize; different keys never contend.
package kmutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KMutex is a set of named mutexes. Entries exist only while held or
// awaited, so the map does not grow with the key space.
type KMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty KMutex.
func New() *KMutex {
	return &KMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
func (k *KMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that is not held
// panics, same as sync.Mutex.
func (k *KMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("kmutex: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
