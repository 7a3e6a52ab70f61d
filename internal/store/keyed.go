package store

import "sync"

// Keyed holds one value per user id. Each value has its own mutex, so work
// on one user never blocks another and two requests from the same user on
// the same resource run one after the other.
type Keyed[T any] struct {
	mu      sync.Mutex
	entries map[string]*slot[T]
}

type slot[T any] struct {
	mu    sync.Mutex
	ready bool
	val   T
}

func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{entries: make(map[string]*slot[T])}
}

func (k *Keyed[T]) slot(key string, create bool) *slot[T] {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.entries[key]
	if !ok && create {
		s = &slot[T]{}
		k.entries[key] = s
	}
	return s
}

// Ensure initializes key with seed the first time it is seen, then calls fn
// with the stored value under the key's lock. A failed seed leaves the key
// uninitialized.
func (k *Keyed[T]) Ensure(key string, seed func() (T, error), fn func(*T) error) error {
	s := k.slot(key, true)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		v, err := seed()
		if err != nil {
			return err
		}
		s.val = v
		s.ready = true
	}
	return fn(&s.val)
}

// Lookup calls fn only when key has been initialized.
func (k *Keyed[T]) Lookup(key string, fn func(*T) error) (bool, error) {
	s := k.slot(key, false)
	if s == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, nil
	}
	return true, fn(&s.val)
}

// Len counts initialized keys.
func (k *Keyed[T]) Len() int {
	k.mu.Lock()
	slots := make([]*slot[T], 0, len(k.entries))
	for _, s := range k.entries {
		slots = append(slots, s)
	}
	k.mu.Unlock()

	n := 0
	for _, s := range slots {
		s.mu.Lock()
		if s.ready {
			n++
		}
		s.mu.Unlock()
	}
	return n
}
