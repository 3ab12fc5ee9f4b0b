package profilestore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/janisto/profile-playground/internal/profile"
)

func intPtr(v int) *int { return &v }

func TestMemoryCreateAssignsSequentialIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Create(ctx, profile.Input{Name: "  Alice ", Email: " a@b.co ", Age: intPtr(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Create(ctx, profile.Input{Name: "Bob", Email: "b@b.co"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != "1" || second.ID != "2" {
		t.Fatalf("expected ids 1 and 2, got %s and %s", first.ID, second.ID)
	}
	if first.Name != "Alice" || first.Email != "a@b.co" {
		t.Errorf("expected trimmed fields, got %+v", first)
	}
	if first.Age == nil || *first.Age != 30 {
		t.Errorf("expected age 30, got %v", first.Age)
	}
}

func TestMemoryListKeepsCreationOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if _, err := store.Create(ctx, profile.Input{Name: name, Email: "x@y.co"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Alice" || list[2].Name != "Carol" {
		t.Fatalf("unexpected list %+v", list)
	}

	list[0].Name = "changed"
	again, _ := store.List(ctx)
	if again[0].Name != "Alice" {
		t.Error("expected List to return copies")
	}
}

func TestMemoryReplace(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	created, _ := store.Create(ctx, profile.Input{Name: "Alice", Email: "a@b.co", Age: intPtr(30)})

	updated, err := store.Replace(ctx, created.ID, profile.Input{Name: "Alicia", Email: "alicia@b.co"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Alicia" || updated.Age != nil {
		t.Fatalf("expected full replace, got %+v", updated)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(*updated) {
		t.Errorf("expected %+v, got %+v", updated, got)
	}
}

func TestMemoryNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Replace(ctx, "1", profile.Input{Name: "Alice", Email: "a@b.co"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDeleteTwice(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	created, _ := store.Create(ctx, profile.Input{Name: "Alice", Email: "a@b.co"})

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryClearKeepsCounting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Create(ctx, profile.Input{Name: "Alice", Email: "a@b.co"})
	store.Clear()

	list, _ := store.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty store, got %d", len(list))
	}
	p, _ := store.Create(ctx, profile.Input{Name: "Bob", Email: "b@b.co"})
	if p.ID != "2" {
		t.Fatalf("expected id 2 after clear, got %s", p.ID)
	}
}

func TestMemoryConcurrentCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, _ = store.Create(ctx, profile.Input{Name: "Alice", Email: "a@b.co"})
		})
	}
	wg.Wait()

	list, _ := store.List(ctx)
	seen := make(map[profile.ID]bool)
	for _, p := range list {
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if len(seen) != 20 {
		t.Fatalf("expected 20 profiles, got %d", len(seen))
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not_found"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
