package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockIndex struct {
	n int
}

func (m *mockIndex) Len() int { return m.n }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockIndex{n: 12}, &mockChecker{}, &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %q, want %q", r.Status, Healthy)
	}
	for _, name := range []string{"index", "embedding", "generator"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("%s = %q, want %q", name, r.Checks[name], CheckOK)
		}
	}
}

func TestCheck_EmptyIndexDegrades(t *testing.T) {
	svc := New(&mockIndex{n: 0}, &mockChecker{}, &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("status = %q, want %q", r.Status, Degraded)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("index = %q, want %q", r.Checks["index"], CheckError)
	}
}

func TestCheck_GeneratorDownDegrades(t *testing.T) {
	svc := New(&mockIndex{n: 5}, &mockChecker{}, &mockChecker{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("status = %q, want %q", r.Status, Degraded)
	}
	if r.Checks["generator"] != CheckError {
		t.Errorf("generator = %q, want %q", r.Checks["generator"], CheckError)
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("embedding = %q, want %q", r.Checks["embedding"], CheckOK)
	}
}

func TestCheck_NilOptionalCheckersSkipped(t *testing.T) {
	svc := New(&mockIndex{n: 5}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %q, want %q", r.Status, Healthy)
	}
	if len(r.Checks) != 1 {
		t.Errorf("checks = %v, want only the index", r.Checks)
	}
}
