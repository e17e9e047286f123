package store

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFileStore_RoundTrip verifies Put then Get returns the stored blob and
// that missing keys yield (nil, nil).
func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got, err := s.Get("absent")
	if err != nil {
		t.Fatalf("Get(absent): %v", err)
	}
	if got != nil {
		t.Errorf("Get(absent) = %q, want nil", got)
	}

	if err := s.Put("providers", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err = s.Get("providers")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("Get = %q, want stored blob", got)
	}
}

// TestFileStore_Overwrite verifies that Put replaces the previous value and
// leaves no temporary file behind.
func TestFileStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := s.Put("k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k", []byte("two")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("Get after overwrite = %q, want %q", got, "two")
	}

	if _, err := os.Stat(filepath.Join(dir, "k.json.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file should not survive a completed Put")
	}
}

// TestMemoryStore_RoundTrip verifies the in-memory implementation matches the
// Store contract, including (nil, nil) for missing keys.
func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Get("absent")
	if err != nil || got != nil {
		t.Errorf("Get(absent) = (%q, %v), want (nil, nil)", got, err)
	}

	if err := s.Put("k", []byte("value")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err = s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

// TestMemoryStore_CopiesValues verifies that mutating buffers passed in or
// returned does not change the stored blob.
func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()

	input := []byte("original")
	if err := s.Put("k", input); err != nil {
		t.Fatal(err)
	}
	input[0] = 'X'

	got, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("stored blob changed after caller mutation: %q", got)
	}

	got[0] = 'Y'
	again, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != "original" {
		t.Errorf("stored blob changed after returned-buffer mutation: %q", again)
	}
}
