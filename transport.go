package vss

import (
	"context"
	"sync"
)

// Transport delivers a split to share holders. Shares go point-to-point over
// private channels; the commitments go to every party over an authenticated
// broadcast. Network implementations live outside this package.
type Transport interface {
	SendShare(ctx context.Context, party int, share EncodedShare) error
	Broadcast(ctx context.Context, commits *EncodedCommitments) error
}

// Distributable is a split that can be put on the wire
type Distributable interface {
	Encode() *EncodedBundle
}

// Distribute broadcasts the bundle's commitments and then sends share i to party i.
func Distribute(ctx context.Context, t Transport, bundle Distributable) error {
	encoded := bundle.Encode()
	if err := t.Broadcast(ctx, encoded.Public); err != nil {
		return ErrTransport.WithDetails("broadcast commitments").WithCause(err)
	}
	for _, share := range encoded.Shares {
		if err := ctx.Err(); err != nil {
			return ErrTransport.WithCause(err)
		}
		if err := t.SendShare(ctx, int(share.Index), share); err != nil {
			return ErrTransport.WithContext("party", share.Index).WithCause(err)
		}
	}
	return nil
}

// MemoryTransport is an in-process Transport with one buffered inbox per party.
type MemoryTransport struct {
	mu      sync.RWMutex
	inboxes map[int]chan EncodedShare
	commits *EncodedCommitments
	ready   chan struct{}
}

// NewMemoryTransport creates inboxes for parties 1..n
func NewMemoryTransport(n int) *MemoryTransport {
	inboxes := make(map[int]chan EncodedShare, n)
	for i := 1; i <= n; i++ {
		inboxes[i] = make(chan EncodedShare, 1)
	}
	return &MemoryTransport{inboxes: inboxes, ready: make(chan struct{})}
}

func (m *MemoryTransport) inbox(party int) (chan EncodedShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.inboxes[party]
	if !ok {
		return nil, ErrTransport.WithDetails("unknown party %d", party)
	}
	return ch, nil
}

func (m *MemoryTransport) SendShare(ctx context.Context, party int, share EncodedShare) error {
	ch, err := m.inbox(party)
	if err != nil {
		return err
	}
	select {
	case ch <- share:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Broadcast records the commitments once; later broadcasts are rejected.
func (m *MemoryTransport) Broadcast(ctx context.Context, commits *EncodedCommitments) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commits != nil {
		return ErrTransport.WithDetails("commitments already broadcast")
	}
	m.commits = commits
	close(m.ready)
	return nil
}

// Receive blocks until party's share arrives or ctx is done
func (m *MemoryTransport) Receive(ctx context.Context, party int) (EncodedShare, error) {
	ch, err := m.inbox(party)
	if err != nil {
		return EncodedShare{}, err
	}
	select {
	case share := <-ch:
		return share, nil
	case <-ctx.Done():
		return EncodedShare{}, ErrTransport.WithContext("party", party).WithCause(ctx.Err())
	}
}

// Commitments blocks until the commitments are broadcast or ctx is done
func (m *MemoryTransport) Commitments(ctx context.Context) (*EncodedCommitments, error) {
	select {
	case <-m.ready:
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.commits, nil
	case <-ctx.Done():
		return nil, ErrTransport.WithCause(ctx.Err())
	}
}
