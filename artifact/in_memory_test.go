package artifact

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	store := NewInMemoryStore()
	data := []byte("hello")
	loc, err := store.Save("a1", data)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if loc != "mem://a1" {
		t.Fatalf("unexpected location %q", loc)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := store.Get("a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := store.Get("a1")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Save("a1", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("a2", []byte("2")); err != nil {
		t.Fatal(err)
	}
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if err := store.Delete("a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get("a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted artifact, got %v", err)
	}
	if err := store.Delete("a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
	names, _ = store.List()
	if len(names) != 1 {
		t.Fatalf("expected 1 name after delete, got %d", len(names))
	}
}

func TestInMemoryStore_SanitizesNames(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Save("../../etc/passwd", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("passwd"); err != nil {
		t.Fatalf("expected artifact stored under sanitized name: %v", err)
	}
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("a%d", i%10)
			if _, err := store.Save(name, []byte("data")); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = store.List()
		}()
	}
	wg.Wait()
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 10 {
		t.Fatalf("expected 10 artifacts, got %d", len(names))
	}
}
