package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var _ Store = (*FSStore)(nil)

func TestFSStore_RoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "reports")
	store, err := NewFSStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root dir not created: %v", err)
	}

	path, err := store.Save("report.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(root, "report.pdf") {
		t.Fatalf("unexpected path %q", path)
	}

	data, err := store.Get("report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "report.pdf" {
		t.Fatalf("unexpected listing %v", names)
	}

	if err := store.Delete("report.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("report.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("report.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFSStore_TraversalStaysInRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root)
	if err != nil {
		t.Fatal(err)
	}

	path, err := store.Save("../escape.txt", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel != filepath.Base(rel) {
		t.Fatalf("artifact escaped the root: %q", path)
	}
}

func TestFSStore_RequiresRoot(t *testing.T) {
	if _, err := NewFSStore(""); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Report.pdf", "My_Report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"weird:name?.txt", "weirdname.txt"},
		{"...", "artifact"},
		{"", "artifact"},
		{"trim._", "trim"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureExtension(t *testing.T) {
	if got := EnsureExtension("report", "pdf"); got != "report.pdf" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExtension("report.PDF", ".pdf"); got != "report.PDF" {
		t.Errorf("extension must not be doubled, got %q", got)
	}
}
