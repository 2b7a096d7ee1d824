package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestSQLiteStore_GetValueMissing(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetValue(context.Background(), "mf_session_id")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value for missing key, got %q", got)
	}
}

func TestSQLiteStore_SetGetRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.SetValue(ctx, "mf_session_id", "abc-123"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	got, err := repo.GetValue(ctx, "mf_session_id")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if got != "abc-123" {
		t.Errorf("Expected abc-123, got %q", got)
	}
}

func TestSQLiteStore_SetValueReplaces(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.SetValue(ctx, "mf_session_id", "old"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := repo.SetValue(ctx, "mf_session_id", "new"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	got, err := repo.GetValue(ctx, "mf_session_id")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if got != "new" {
		t.Errorf("Expected new, got %q", got)
	}
}

func TestSQLiteStore_DeleteValue(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.SetValue(ctx, "mf_session_id", "abc"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := repo.DeleteValue(ctx, "mf_session_id"); err != nil {
		t.Fatalf("DeleteValue failed: %v", err)
	}

	got, err := repo.GetValue(ctx, "mf_session_id")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value after delete, got %q", got)
	}

	// Deleting an absent key must be a no-op.
	if err := repo.DeleteValue(ctx, "mf_session_id"); err != nil {
		t.Errorf("DeleteValue on absent key failed: %v", err)
	}
}
