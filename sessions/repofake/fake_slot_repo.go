package fakesessionrepo

import (
	"sync"

	"github.com/jrsteele09/go-bank-session/sessions"
)

var _ sessions.Repo = (*FakeSlotRepo)(nil)

// FakeSlotRepo is an in-memory slot store with failure injection and raw seeding.
type FakeSlotRepo struct {
	slots map[string]string
	lock  sync.RWMutex

	// Fail, when set, is returned by every operation
	Fail error
}

func NewFakeSlotRepo() *FakeSlotRepo {
	return &FakeSlotRepo{
		slots: make(map[string]string),
	}
}

func (r *FakeSlotRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Fail != nil {
		return "", false, r.Fail
	}
	v, ok := r.slots[key]
	return v, ok, nil
}

func (r *FakeSlotRepo) Put(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	for k, v := range values {
		r.slots[k] = v
	}
	return nil
}

func (r *FakeSlotRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	for _, k := range keys {
		delete(r.slots, k)
	}
	return nil
}

// Raw sets a slot without any encoding, for seeding malformed data.
func (r *FakeSlotRepo) Raw(key, value string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.slots[key] = value
}
