package db

import (
	"context"
	"path/filepath"
	"testing"
)

type backend interface {
	Get(ctx context.Context, collection, id string) ([]byte, bool, error)
	Put(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([][]byte, error)
}

func openSQLite(t *testing.T) *DB {
	t.Helper()
	database, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "bizflow.db"))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func exerciseBackend(t *testing.T, b backend) {
	ctx := context.Background()

	if _, ok, err := b.Get(ctx, "tasks", "1"); err != nil || ok {
		t.Fatalf("expected empty get, ok=%v err=%v", ok, err)
	}

	if err := b.Put(ctx, "tasks", "1", []byte(`{"name":"a"}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := b.Put(ctx, "tasks", "2", []byte(`{"name":"b"}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := b.Put(ctx, "projects", "1", []byte(`{"name":"p"}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	data, ok, err := b.Get(ctx, "tasks", "1")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"name":"a"}` {
		t.Fatalf("unexpected payload: %s", data)
	}

	if err := b.Put(ctx, "tasks", "1", []byte(`{"name":"a2"}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _, _ = b.Get(ctx, "tasks", "1")
	if string(data) != `{"name":"a2"}` {
		t.Fatalf("overwrite not visible: %s", data)
	}

	all, err := b.List(ctx, "tasks")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}

	if err := b.Delete(ctx, "tasks", "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := b.Delete(ctx, "tasks", "1"); err != nil {
		t.Fatalf("second delete should be silent at this layer: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "tasks", "1"); ok {
		t.Fatal("record still present after delete")
	}

	projects, _ := b.List(ctx, "projects")
	if len(projects) != 1 {
		t.Fatalf("delete leaked into other collection: %d projects", len(projects))
	}
}

func TestSQLiteBackend(t *testing.T) {
	exerciseBackend(t, openSQLite(t))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizflow.db")
	first, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := first.Put(context.Background(), "tasks", "7", []byte(`{}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	first.Close()

	second, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	if _, ok, err := second.Get(context.Background(), "tasks", "7"); err != nil || !ok {
		t.Fatalf("record lost across reopen: ok=%v err=%v", ok, err)
	}
}

func TestMemoryListKeepsInsertionOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"3", "1", "2"} {
		m.Put(ctx, "c", id, []byte(id))
	}
	m.Put(ctx, "c", "3", []byte("3b"))

	got, _ := m.List(ctx, "c")
	want := []string{"3b", "1", "2"}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestDriverForDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://localhost/bizflow":   DriverPostgres,
		"postgresql://localhost/bizflow": DriverPostgres,
		"/tmp/bizflow.db":                DriverSQLite,
		":memory:":                       DriverSQLite,
	}
	for dsn, want := range cases {
		if got := DriverForDSN(dsn); got != want {
			t.Fatalf("DriverForDSN(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
