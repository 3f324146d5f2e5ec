package blob

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("failed to open blob store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)

	want := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	if err := s.Put("img-1", want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get("img-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Put_Overwrites(t *testing.T) {
	s := newTestStore(t)

	s.Put("img-1", []byte("old"))
	if err := s.Put("img-1", []byte("new")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get("img-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)

	s.Put("img-1", []byte("data"))
	if err := s.Delete("img-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := s.Get("img-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op.
	if err := s.Delete("img-1"); err != nil {
		t.Errorf("Delete() of missing ref error = %v, want nil", err)
	}
}
