package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultNamespace is the fixed storage key carts live under.
const DefaultNamespace = "cart-storage"

// Persister is durable key-value storage for cart snapshots. Load reports
// false when nothing has been stored under key yet.
type Persister interface {
	Load(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, s State) error
}

const snapshotVersion = 0

type snapshot struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

func encodeSnapshot(s State) ([]byte, error) {
	if s.Items == nil {
		s.Items = []Item{}
	}
	b, err := json.Marshal(snapshot{State: s, Version: snapshotVersion})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (State, error) {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return State{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return State{}, fmt.Errorf("unsupported cart snapshot version %d", snap.Version)
	}
	return sanitize(snap.State), nil
}

// sanitize drops entries a stored snapshot should never contain: blank ids,
// duplicate ids, negative prices and quantities outside [1, MaxQuantity].
func sanitize(s State) State {
	out := State{Items: make([]Item, 0, len(s.Items))}
	for _, it := range s.Items {
		if it.ID == "" || it.Price < 0 {
			continue
		}
		if i := out.indexOf(it.ID); i >= 0 {
			out.Items[i].Quantity = clampQuantity(out.Items[i].Quantity + clampQuantity(it.Quantity))
			continue
		}
		it.Quantity = clampQuantity(it.Quantity)
		out.Items = append(out.Items, it)
	}
	return out
}

// MemoryPersister keeps encoded snapshots in process memory.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(ctx context.Context, key string) (State, bool, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	s, err := decodeSnapshot(b)
	if err != nil {
		return State{}, false, err
	}
	return s, true, nil
}

func (m *MemoryPersister) Save(ctx context.Context, key string, s State) error {
	b, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}
