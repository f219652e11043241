package mailbox

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openack/openack"
	"github.com/openack/openack/envelope"
)

func TestRecoverStaged(t *testing.T) {
	store, _, root := newTestStore(t)

	// Simulate a crash after staging but before the zip was written.
	staging := filepath.Join(root, "bob", processingDir, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if err := os.MkdirAll(staging, 0o700); err != nil {
		t.Fatalf("create staging dir: %v", err)
	}
	env := openack.Envelope{
		ID:     envelope.NewID(),
		From:   "alice",
		To:     "bob",
		SentAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Body:   "interrupted",
	}
	data, err := envelope.Encode(env)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	envName := envelope.Filename(env.SentAt, env.ID)
	if err := os.WriteFile(filepath.Join(staging, envName), data, 0o600); err != nil {
		t.Fatalf("write staged envelope: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staging, env.ID+"-attachment1.txt"), []byte("stuck"), 0o600); err != nil {
		t.Fatalf("write staged attachment: %v", err)
	}

	// The next fetch replays the staged transaction before scanning.
	messages, err := store.FetchAndConsume(context.Background(), "tok-bob")
	if err != nil {
		t.Fatalf("FetchAndConsume failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("messages = %+v, want none (staged envelope was already consumed)", messages)
	}

	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Errorf("staging dir still present after recovery: %v", err)
	}
	zips := listDone(t, root, "bob")
	if len(zips) != 1 || zips[0] != envelope.ArchiveName(envName) {
		t.Fatalf("done = %v, want [%s]", zips, envelope.ArchiveName(envName))
	}

	zr, err := zip.OpenReader(filepath.Join(root, "bob", doneDir, zips[0]))
	if err != nil {
		t.Fatalf("open recovered archive: %v", err)
	}
	defer func() { _ = zr.Close() }()
	if len(zr.File) != 2 {
		t.Errorf("recovered archive members = %d, want 2", len(zr.File))
	}
}

func TestRecoverStaged_EmptyDirRemoved(t *testing.T) {
	store, _, root := newTestStore(t)

	staging := filepath.Join(root, "bob", processingDir, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if err := os.MkdirAll(staging, 0o700); err != nil {
		t.Fatalf("create staging dir: %v", err)
	}

	if _, err := store.FetchAndConsume(context.Background(), "tok-bob"); err != nil {
		t.Fatalf("FetchAndConsume failed: %v", err)
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Errorf("empty staging dir still present: %v", err)
	}
	if zips := listDone(t, root, "bob"); len(zips) != 0 {
		t.Errorf("done = %v, want no archive for an empty staging dir", zips)
	}
}

func TestZipDir(t *testing.T) {
	src := t.TempDir()
	for name, content := range map[string]string{
		"a.md":  "envelope",
		"b.png": "image",
	} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	if err := zipDir(src, zipPath); err != nil {
		t.Fatalf("zipDir failed: %v", err)
	}
	if _, err := os.Stat(zipPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary archive left behind: %v", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = zr.Close() }()

	got := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", f.Name, err)
		}
		got[f.Name] = string(buf)
	}
	if got["a.md"] != "envelope" || got["b.png"] != "image" {
		t.Errorf("archive contents = %v", got)
	}
}
