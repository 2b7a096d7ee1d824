package identity

import (
	"context"
	"errors"
	"testing"
)

// fakeRepo is an in-memory store.Repository for identity tests.
type fakeRepo struct {
	values map[string]string
	err    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{values: make(map[string]string)}
}

func (r *fakeRepo) GetValue(_ context.Context, key string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.values[key], nil
}

func (r *fakeRepo) SetValue(_ context.Context, key, value string) error {
	if r.err != nil {
		return r.err
	}
	r.values[key] = value
	return nil
}

func (r *fakeRepo) DeleteValue(_ context.Context, key string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.values, key)
	return nil
}

func (r *fakeRepo) Ping(_ context.Context) error { return r.err }
func (r *fakeRepo) Close() error                 { return nil }

func TestStore_GetOrCreateGeneratesAndPersists(t *testing.T) {
	repo := newFakeRepo()
	s := NewStore(repo)
	ctx := context.Background()

	id := s.GetOrCreate(ctx)
	if id == "" {
		t.Fatal("Expected a non-empty identity")
	}
	if repo.values[SessionKey] != id {
		t.Errorf("Expected identity %q persisted, stored %q", id, repo.values[SessionKey])
	}

	// Stable across calls.
	if again := s.GetOrCreate(ctx); again != id {
		t.Errorf("Expected stable identity %q, got %q", id, again)
	}
}

func TestStore_GetOrCreateLoadsStored(t *testing.T) {
	repo := newFakeRepo()
	repo.values[SessionKey] = "stored-id"
	s := NewStore(repo)

	if id := s.GetOrCreate(context.Background()); id != "stored-id" {
		t.Errorf("Expected stored-id, got %q", id)
	}
}

func TestStore_ResetYieldsFreshIdentity(t *testing.T) {
	repo := newFakeRepo()
	s := NewStore(repo)
	ctx := context.Background()

	old := s.GetOrCreate(ctx)
	fresh := s.Reset(ctx)

	if fresh == "" || fresh == old {
		t.Errorf("Expected a fresh identity, old %q new %q", old, fresh)
	}
	if repo.values[SessionKey] != fresh {
		t.Errorf("Expected fresh identity persisted, stored %q", repo.values[SessionKey])
	}
}

func TestStore_AdoptReplacesIdentity(t *testing.T) {
	repo := newFakeRepo()
	s := NewStore(repo)
	ctx := context.Background()

	s.GetOrCreate(ctx)
	s.Adopt(ctx, "authoritative-id")

	if id := s.GetOrCreate(ctx); id != "authoritative-id" {
		t.Errorf("Expected authoritative-id, got %q", id)
	}
	if repo.values[SessionKey] != "authoritative-id" {
		t.Errorf("Expected authoritative-id persisted, stored %q", repo.values[SessionKey])
	}

	// Empty adoption is ignored.
	s.Adopt(ctx, "")
	if id := s.GetOrCreate(ctx); id != "authoritative-id" {
		t.Errorf("Expected identity unchanged after empty adopt, got %q", id)
	}
}

func TestStore_StorageUnavailableFallsBackInMemory(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("disk gone")
	s := NewStore(repo)
	ctx := context.Background()

	id := s.GetOrCreate(ctx)
	if id == "" {
		t.Fatal("Expected an in-memory identity despite storage failure")
	}
	if again := s.GetOrCreate(ctx); again != id {
		t.Errorf("Expected stable in-memory identity %q, got %q", id, again)
	}
}

func TestStore_NilRepoIsInMemoryOnly(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	id := s.GetOrCreate(ctx)
	if id == "" {
		t.Fatal("Expected a non-empty identity")
	}
	if fresh := s.Reset(ctx); fresh == id {
		t.Error("Expected Reset to change the identity")
	}
}
