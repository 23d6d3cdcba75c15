package storage

import (
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\ntitle: Daily\n---\n\nBody\n")
	if err := s.Write("daily/2024-05-01.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("daily/2024-05-01.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("daily/2024/05/2024-05-01.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("daily/2024/05/2024-05-01.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("daily/a.md", []byte("a"))

	ok, err := s.Exists("daily/a.md")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("expected file to exist")
	}

	ok, err = s.Exists("daily/missing.md")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("missing file reported as existing")
	}

	// A directory is not a note.
	ok, err = s.Exists("daily")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("directory reported as existing note")
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("daily/b.md", []byte("b"))
	_ = s.Write("daily/skip.txt", []byte("x"))

	all, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(\"\") = %v, want 2 entries", all)
	}

	sub, err := s.List("daily")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sub) != 1 {
		t.Errorf("List(daily) = %v, want 1 entry", sub)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	s := tempVault(t)
	if _, err := s.Read("../outside.md"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if err := s.Write("../outside.md", []byte("x")); err == nil {
		t.Error("expected traversal write to be rejected")
	}
	if _, err := s.Read("/etc/passwd"); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}
