package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempAppData(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempAppData(t)
	content := []byte(`[{"id":"1","text":"buy milk"}]`)
	meta, err := s.Write("fu-sendo-it-todos.json", content)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", meta.Size, len(content))
	}
	if meta.Checksum != Checksum(content) {
		t.Errorf("checksum mismatch")
	}
	got, err := s.Read("fu-sendo-it-todos.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempAppData(t)
	if _, err := s.Write("a/b/c.json", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempAppData(t)
	ok, err := s.Exists("missing.json")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	_, _ = s.Write("here.json", []byte("{}"))
	ok, err = s.Exists("here.json")
	if err != nil || !ok {
		t.Fatalf("Exists(here) = %v, %v", ok, err)
	}
	_ = os.Mkdir(filepath.Join(s.Root(), "dir"), 0o755)
	ok, _ = s.Exists("dir")
	if ok {
		t.Error("directories are not files")
	}
}

func TestDelete(t *testing.T) {
	s := tempAppData(t)
	_, _ = s.Write("del.json", []byte("bye"))
	if err := s.Delete("del.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist reading deleted file, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := tempAppData(t)
	_, _ = s.Write("a.json", []byte("a"))
	_, _ = s.Write("sub/b.json", []byte("b"))
	_ = os.WriteFile(filepath.Join(s.Root(), ".fusendo-tmp-123"), []byte("partial"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(items), items)
	}
	seen := map[string]bool{}
	for _, it := range items {
		seen[it.Path] = true
	}
	if !seen["a.json"] || !seen["sub/b.json"] {
		t.Errorf("unexpected listing: %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempAppData(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Read(%q) err = %v, want ErrOutsideRoot", p, err)
		}
		if _, err := s.Write(p, []byte("x")); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Write(%q) err = %v, want ErrOutsideRoot", p, err)
		}
		if _, err := s.Exists(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Exists(%q) err = %v, want ErrOutsideRoot", p, err)
		}
	}
}

func TestWriteRejectsRoot(t *testing.T) {
	s := tempAppData(t)
	if _, err := s.Write("", []byte("x")); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Write(\"\") err = %v", err)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/fusendo-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "fusendo-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestBackupName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	got := BackupName("fu-sendo-it-todos.json", now)
	want := "fu-sendo-it-todos-backup-2025-01-02T03-04-05-678Z.json"
	if got != want {
		t.Errorf("BackupName = %q, want %q", got, want)
	}
	if got := BackupName("sub/notes", now); got != "sub/notes-backup-2025-01-02T03-04-05-678Z" {
		t.Errorf("no-ext BackupName = %q", got)
	}
}
