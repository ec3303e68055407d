package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testState struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	want := testState{Name: "alice.test", Count: 3}
	if err := SaveSnapshot(path, want); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	var got testState
	if err := LoadSnapshot(path, &got); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	// No temp file left behind after a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file still present after save")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"), &testState{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadSnapshotEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got testState
	if err := LoadSnapshot(path, &got); err != nil {
		t.Fatalf("LoadSnapshot on empty file: %v", err)
	}
	if got != (testState{}) {
		t.Fatalf("expected zero state from empty file, got %+v", got)
	}
}

func TestLoadSnapshotCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := LoadSnapshot(path, &testState{}); err == nil {
		t.Fatalf("expected parse error for corrupt file")
	}
}

func TestStaleTempFileDoesNotShadowSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	want := testState{Name: "before", Count: 1}
	if err := SaveSnapshot(path, want); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	// Simulate a crash after the temp write but before the rename: a newer,
	// partial temp file sits next to the target.
	if err := os.WriteFile(path+".tmp", []byte(`{"name":"after","cou`), 0644); err != nil {
		t.Fatalf("write tmp: %v", err)
	}

	var got testState
	if err := LoadSnapshot(path, &got); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got != want {
		t.Fatalf("reader picked up partial state: got %+v want %+v", got, want)
	}

	// A later save replaces both cleanly.
	want = testState{Name: "after", Count: 2}
	if err := SaveSnapshot(path, want); err != nil {
		t.Fatalf("second SaveSnapshot: %v", err)
	}
	if err := LoadSnapshot(path, &got); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got != want {
		t.Fatalf("second save not visible: got %+v want %+v", got, want)
	}
}

func TestSaveSnapshotCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	if err := SaveSnapshot(path, testState{Name: "x"}); err != nil {
		t.Fatalf("SaveSnapshot with missing parent dirs: %v", err)
	}

	var got testState
	if err := LoadSnapshot(path, &got); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.Name != "x" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestSaveSnapshotRenameFailureCleansUpTemp(t *testing.T) {
	// A directory at the target path makes the rename fail.
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := SaveSnapshot(path, testState{Name: "x"}); err == nil {
		t.Fatalf("expected rename error when target is a directory")
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file not cleaned up after rename failure")
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("target must be left untouched, got %v / %v", info, err)
	}
}

func TestSaveSnapshotRejectsUnmarshalableValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := SaveSnapshot(path, make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("failed save must not create the target file")
	}
}
