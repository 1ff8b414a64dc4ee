package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := NewStore(path)
	if err := first.Set(ctx, "helpdesk.token", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Set(ctx, "helpdesk.user", `{"id":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewStore(path)
	v, ok, err := second.Get(ctx, "helpdesk.user")
	if err != nil || !ok || v != `{"id":1}` {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("expected 0600, got %o", perm)
		}
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if _, ok, err := s.Get(context.Background(), "helpdesk.token"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Delete(context.Background(), "helpdesk.token"); err != nil {
		t.Fatalf("delete on missing file: %v", err)
	}
}

func TestStore_DeleteLastEntryRemovesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, got %v", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewStore(path).Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected decode error")
	}
}
