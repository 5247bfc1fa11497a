package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingPersister struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingPersister) Load(ctx context.Context, key string) (State, bool, error) {
	return State{}, false, f.loadErr
}

func (f *failingPersister) Save(ctx context.Context, key string, s State) error {
	f.saves++
	return f.saveErr
}

type countingRecorder struct {
	mu        sync.Mutex
	mutations map[string]int
	failures  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{mutations: map[string]int{}, failures: map[string]int{}}
}

func (c *countingRecorder) CartMutation(op string) {
	c.mu.Lock()
	c.mutations[op]++
	c.mu.Unlock()
}

func (c *countingRecorder) CartPersistFailure(op string) {
	c.mu.Lock()
	c.failures[op]++
	c.mu.Unlock()
}

func TestStoreWriteThrough(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	store := Open(ctx, p, "cart-storage:test", discardLogger())

	store.AddItem(ctx, Candidate{ID: "p1", Title: "Guide A", Price: 1000})
	store.AddItem(ctx, Candidate{ID: "p1", Title: "Guide A", Price: 1000})
	store.AddItem(ctx, Candidate{ID: "p2", Title: "Guide B", Price: 250})

	persisted, ok, err := p.Load(ctx, "cart-storage:test")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, store.Items(), persisted.Items)

	sum := store.Summary(DefaultTaxRate)
	assert.Equal(t, int64(2250), sum.Subtotal)
	assert.Equal(t, int64(225), sum.Tax)
	assert.Equal(t, int64(2475), sum.Total)
}

func TestStoreRehydratesInNewSession(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()

	first := Open(ctx, p, "k", discardLogger())
	first.AddItem(ctx, Candidate{ID: "b", Title: "B", Price: 300})
	first.AddItem(ctx, Candidate{ID: "a", Title: "A", Price: 100})
	first.UpdateQuantity(ctx, "b", 4)

	second := Open(ctx, p, "k", discardLogger())
	if !reflect.DeepEqual(first.Items(), second.Items()) {
		t.Fatalf("rehydrated items differ\nfirst  %+v\nsecond %+v", first.Items(), second.Items())
	}
	assert.Equal(t, "b", second.Items()[0].ID)
}

func TestStoreSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{saveErr: errors.New("quota exceeded")}
	rec := newCountingRecorder()
	store := open(ctx, p, "k", discardLogger(), rec)

	got := store.AddItem(ctx, Candidate{ID: "p1", Title: "Guide", Price: 700})
	require.Len(t, got.Items, 1)

	store.UpdateQuantity(ctx, "p1", 3)
	assert.Equal(t, 3, store.Items()[0].Quantity)
	assert.Equal(t, 2, p.saves)
	assert.Equal(t, 1, rec.failures[string(ActionAdd)])
	assert.Equal(t, 1, rec.failures[string(ActionSetQuantity)])
	assert.Equal(t, 1, rec.mutations[string(ActionAdd)])
}

func TestStoreSettleKeepsConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()

	checkingOut := Open(ctx, p, "k", discardLogger())
	checkingOut.AddItem(ctx, Candidate{ID: "p1", Title: "A", Price: 100})
	checkingOut.AddItem(ctx, Candidate{ID: "p1", Title: "A", Price: 100})
	lines := checkingOut.Items()

	other := Open(ctx, p, "k", discardLogger())
	other.AddItem(ctx, Candidate{ID: "p2", Title: "B", Price: 250})
	other.AddItem(ctx, Candidate{ID: "p1", Title: "A", Price: 100})

	got := checkingOut.Settle(ctx, lines)
	assert.Equal(t, []Item{
		{ID: "p1", Title: "A", Price: 100, Quantity: 1},
		{ID: "p2", Title: "B", Price: 250, Quantity: 1},
	}, got.Items)

	persisted, ok, err := p.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got.Items, persisted.Items)
}

func TestStoreLoadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, &failingPersister{loadErr: errors.New("unavailable")}, "k", discardLogger())
	assert.Empty(t, store.Items())
	assert.False(t, store.Summary(DefaultTaxRate).CanCheckout)
}

func TestStoreItemsIsACopy(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, NewMemoryPersister(), "k", discardLogger())
	store.AddItem(ctx, Candidate{ID: "p1", Price: 1})

	items := store.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStoreClearCart(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	store := Open(ctx, p, "k", discardLogger())
	store.AddItem(ctx, Candidate{ID: "p1", Price: 1})
	store.AddItem(ctx, Candidate{ID: "p2", Price: 1})

	store.ClearCart(ctx)

	assert.Empty(t, store.Items())
	persisted, ok, err := p.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, persisted.Items)
}

func TestStoreConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, NewMemoryPersister(), "k", discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddItem(ctx, Candidate{ID: "p1", Price: 10})
		}()
	}
	wg.Wait()

	require.Len(t, store.Items(), 1)
	assert.Equal(t, 50, store.Items()[0].Quantity)
}

func TestServiceOpen(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	svc := NewService(p, "", discardLogger())

	_, err := svc.Open(ctx, "  ")
	assert.ErrorIs(t, err, ErrMissingScope)

	store, err := svc.Open(ctx, "user:abc")
	require.NoError(t, err)
	assert.Equal(t, "cart-storage:user:abc", store.Key())

	store.AddItem(ctx, Candidate{ID: "p1", Price: 1})
	other, err := svc.Open(ctx, "user:xyz")
	require.NoError(t, err)
	assert.Empty(t, other.Items())
}
