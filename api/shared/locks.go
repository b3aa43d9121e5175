/* locks.go
 * Contains KeyedMutex, a mutex keyed by entity id. The record store only guarantees
 * single-document atomicity, so read-check-write sequences over one match or one
 * user's stats row must hold the key's lock end to end
 * Authors: Zachary Bower
 */

package shared

import "sync"

type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Entries are kept
// for the life of the process; the population of active keys is small (live
// matches and users mid-fold)
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key. Must follow a Lock for the same key
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	m.Unlock()
}
