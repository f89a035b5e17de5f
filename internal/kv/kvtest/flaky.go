package kvtest

import (
	"errors"
	"sync"

	"github.com/asteroid-belt/vidtally/internal/kv"
)

// ErrInjected is returned by the calls a FlakyStore was told to fail.
var ErrInjected = errors.New("kvtest: injected failure")

// FlakyStore wraps a Store and fails the next n Get or Set calls on chosen
// keys, the way a busy sqlite file does when two processes share it.
type FlakyStore struct {
	kv.Store

	mu   sync.Mutex
	gets map[string]int
	sets map[string]int
}

// NewFlakyStore wraps s.
func NewFlakyStore(s kv.Store) *FlakyStore {
	return &FlakyStore{Store: s, gets: make(map[string]int), sets: make(map[string]int)}
}

// FailGet makes the next n reads of key fail.
func (f *FlakyStore) FailGet(key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets[key] = n
}

// FailSet makes the next n writes of key fail.
func (f *FlakyStore) FailSet(key string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[key] = n
}

func (f *FlakyStore) Get(key string) ([]byte, error) {
	if f.take(f.gets, key) {
		return nil, ErrInjected
	}
	return f.Store.Get(key)
}

func (f *FlakyStore) Set(key string, value []byte) error {
	if f.take(f.sets, key) {
		return ErrInjected
	}
	return f.Store.Set(key, value)
}

func (f *FlakyStore) take(budget map[string]int, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if budget[key] <= 0 {
		return false
	}
	budget[key]--
	return true
}
