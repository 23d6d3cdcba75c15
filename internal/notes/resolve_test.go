package notes

import (
	"errors"
	"testing"
	"time"

	"github.com/eliasvk/tracksync/internal/apperr"
	"github.com/eliasvk/tracksync/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNotePath(t *testing.T) {
	store := testStore(t)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	r := NewResolver(store, "daily", "2006-01-02")
	if got := r.NotePath(date); got != "daily/2024-05-01.md" {
		t.Errorf("NotePath = %q", got)
	}

	nested := NewResolver(store, "journal", "2006/01/2006-01-02")
	if got := nested.NotePath(date); got != "journal/2024/05/2024-05-01.md" {
		t.Errorf("nested NotePath = %q", got)
	}

	noFolder := NewResolver(store, "", "")
	if got := noFolder.NotePath(date); got != "2024-05-01.md" {
		t.Errorf("no-folder NotePath = %q", got)
	}
}

func TestResolveExistingNote(t *testing.T) {
	store := testStore(t)
	if err := store.Write("daily/2024-05-01.md", []byte("# Day\n")); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(store, "daily", "2006-01-02")
	path, err := r.Resolve("2024-05-01")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "daily/2024-05-01.md" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveMissingNote(t *testing.T) {
	r := NewResolver(testStore(t), "daily", "2006-01-02")
	_, err := r.Resolve("2024-05-01")
	if !errors.Is(err, apperr.ErrNoNote) {
		t.Fatalf("err = %v, want ErrNoNote", err)
	}
}

func TestResolveBadDate(t *testing.T) {
	r := NewResolver(testStore(t), "daily", "2006-01-02")
	_, err := r.Resolve("May 1st")
	if err == nil || errors.Is(err, apperr.ErrNoNote) {
		t.Fatalf("err = %v, want parse error", err)
	}
}

func TestDateOf(t *testing.T) {
	store := testStore(t)
	r := NewResolver(store, "daily", "2006-01-02")

	if got, ok := r.DateOf("daily/2024-05-01.md"); !ok || got != "2024-05-01" {
		t.Errorf("DateOf = %q, %v", got, ok)
	}
	if _, ok := r.DateOf("other/2024-05-01.md"); ok {
		t.Error("path outside folder should not resolve")
	}
	if _, ok := r.DateOf("daily/notes.md"); ok {
		t.Error("non-date filename should not resolve")
	}
	if _, ok := r.DateOf("daily/2024-05-01.txt"); ok {
		t.Error("non-md file should not resolve")
	}

	nested := NewResolver(store, "journal", "2006/01/2006-01-02")
	if got, ok := nested.DateOf("journal/2024/05/2024-05-01.md"); !ok || got != "2024-05-01" {
		t.Errorf("nested DateOf = %q, %v", got, ok)
	}
}
