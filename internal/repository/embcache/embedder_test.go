package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfdex/shelfdex/internal/db"
	"github.com/shelfdex/shelfdex/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.lastTTL = ttl
	m.data[key] = value
	return nil
}

type mockInner struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockInner) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

// --- Tests ---

func TestEmbed_MissThenHit(t *testing.T) {
	store := newMockStore()
	inner := &mockInner{vec: []float32{0.25, -1.5}}
	cached := New(inner, store, time.Hour, nil, nil)

	first, err := cached.Embed(context.Background(), "cozy mystery")
	if err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss must report real token usage, got %d", first.TotalTokens)
	}
	if store.lastTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", store.lastTTL)
	}

	second, err := cached.Embed(context.Background(), "cozy mystery")
	if err != nil {
		t.Fatalf("second Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("cache hit must not call the inner embedder")
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit must report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 2 || second.Embedding[0] != 0.25 || second.Embedding[1] != -1.5 {
		t.Errorf("round-tripped vector = %v", second.Embedding)
	}
}

func TestEmbed_DifferentTextsDifferentKeys(t *testing.T) {
	store := newMockStore()
	inner := &mockInner{vec: []float32{1}}
	cached := New(inner, store, 0, nil, nil)

	cached.Embed(context.Background(), "alpha")
	cached.Embed(context.Background(), "beta")

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(store.data) != 2 {
		t.Errorf("stored keys = %d, want 2", len(store.data))
	}
}

func TestEmbed_StoreFailuresFallThrough(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	inner := &mockInner{vec: []float32{1}}
	cached := New(inner, store, 0, nil, nil)

	result, err := cached.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("store failures must not fail the call: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Errorf("embedding = %v", result.Embedding)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestEmbed_CorruptEntryTreatedAsMiss(t *testing.T) {
	store := newMockStore()
	inner := &mockInner{vec: []float32{1, 2}}
	cached := New(inner, store, 0, nil, nil)

	// Pre-seed the key with a blob that is not a multiple of 4 bytes.
	key := cached.cacheKey("q")
	store.data[key] = []byte{1, 2, 3}

	result, err := cached.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must fall through to the inner embedder")
	}
	if len(result.Embedding) != 2 {
		t.Errorf("embedding = %v", result.Embedding)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &mockInner{err: domain.ErrEmbeddingUnavailable}
	cached := New(inner, newMockStore(), 0, nil, nil)

	_, err := cached.Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}
