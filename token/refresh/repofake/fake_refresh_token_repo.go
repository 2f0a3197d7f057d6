package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-token-auth/token/refresh"
)

var _ refresh.DigestRepo = (*FakeDigestRepo)(nil)

// FakeDigestRepo is an in-memory refresh.DigestRepo keyed by user id.
type FakeDigestRepo struct {
	digests map[string]string
	lock    sync.RWMutex
}

func NewFakeDigestRepo() *FakeDigestRepo {
	return &FakeDigestRepo{
		digests: make(map[string]string),
	}
}

func (r *FakeDigestRepo) GetDigest(_ context.Context, userID string) (*string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	d, ok := r.digests[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *FakeDigestRepo) SetDigest(_ context.Context, userID, digest string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.digests[userID] = digest
	return nil
}

func (r *FakeDigestRepo) ClearDigest(_ context.Context, userID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.digests, userID)
	return nil
}

func (r *FakeDigestRepo) SwapDigest(_ context.Context, userID, old, next string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if current, ok := r.digests[userID]; !ok || current != old {
		return false, nil
	}
	r.digests[userID] = next
	return true, nil
}
