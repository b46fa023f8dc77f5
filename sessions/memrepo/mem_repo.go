package memrepo

import (
	"sync"

	"github.com/jrsteele09/go-bank-session/sessions"
)

var _ sessions.Repo = (*MemRepo)(nil)

// MemRepo keeps slots for the lifetime of the process. It backs the "memory"
// session store.
type MemRepo struct {
	slots map[string]string
	lock  sync.RWMutex
}

func New() *MemRepo {
	return &MemRepo{
		slots: make(map[string]string),
	}
}

func (r *MemRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.slots[key]
	return v, ok, nil
}

func (r *MemRepo) Put(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for k, v := range values {
		r.slots[k] = v
	}
	return nil
}

func (r *MemRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, k := range keys {
		delete(r.slots, k)
	}
	return nil
}
