package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	playlistID := 7
	info := Info{DeviceID: 12, DeviceName: "Lobby TV", CompanyID: 3, PlaylistID: &playlistID}
	if err := s.Save("abc123", info); err != nil {
		t.Fatalf("Save: %v", err)
	}

	token, got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}
	if got == nil || got.DeviceID != 12 || got.DeviceName != "Lobby TV" {
		t.Errorf("info = %+v", got)
	}
	if got.PlaylistID == nil || *got.PlaylistID != 7 {
		t.Errorf("playlist id = %v, want 7", got.PlaylistID)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())

	token, info, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "" || info != nil {
		t.Errorf("expected empty load, got token=%q info=%+v", token, info)
	}
}

func TestFileStoreClear(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.Save("tok", Info{DeviceID: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// clearing an already-empty store must not error
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	token, info, err := s.Load()
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if token != "" || info != nil {
		t.Errorf("expected empty load after clear, got token=%q info=%+v", token, info)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	token, info, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "" || info != nil {
		t.Errorf("corrupt file should read as unpaired, got token=%q info=%+v", token, info)
	}
}
