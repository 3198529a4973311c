package history

import (
	"context"
	"os"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "fusendo-history-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, "save_markdown_file", "/tmp/out/a.md", false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := db.Record(ctx, "select_directory", "/tmp/pick", true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := db.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Command != "select_directory" || got[0].Dir != "/tmp/pick" {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].Dir != "/tmp/out" {
		t.Errorf("file dir = %q, want /tmp/out", got[1].Dir)
	}
	if got[1].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestRecentLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = db.Record(ctx, "save_markdown_file", "/tmp/x.md", false)
	}
	got, err := db.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestRecentEmpty(t *testing.T) {
	db := testDB(t)
	got, err := db.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", got)
	}
}

func TestLastDir(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	dir, err := db.LastDir(ctx, "save_markdown_file")
	if err != nil || dir != "" {
		t.Fatalf("LastDir on empty = %q, %v", dir, err)
	}

	_ = db.Record(ctx, "save_markdown_file", "/a/one.md", false)
	_ = db.Record(ctx, "select_directory", "/b", true)
	_ = db.Record(ctx, "save_markdown_file", "/c/two.md", false)

	dir, err = db.LastDir(ctx, "save_markdown_file")
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/c" {
		t.Errorf("LastDir = %q, want /c", dir)
	}
	dir, _ = db.LastDir(ctx, "select_directory")
	if dir != "/b" {
		t.Errorf("LastDir(select_directory) = %q, want /b", dir)
	}
}
