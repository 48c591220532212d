package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// minimal 1x1 GIF
var gifData = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "blogPosts/p1.gif"

	// Upload
	if err := backend.Upload(ctx, key, bytes.NewReader(gifData)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// GetObjectMeta
	meta, err := backend.GetObjectMeta(ctx, key)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Size != int64(len(gifData)) {
		t.Fatalf("expected size %d, got %d", len(gifData), meta.Size)
	}
	if meta.ContentType != "image/gif" {
		t.Fatalf("expected image/gif, got %q", meta.ContentType)
	}
	if meta.ETag == "" {
		t.Fatalf("expected etag")
	}

	// Download
	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, gifData) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	// Delete
	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Ensure file and its now-empty directory are removed
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "blogPosts")); !os.IsNotExist(err) {
		t.Fatalf("expected empty directory removed, stat err=%v", err)
	}
}

func TestFSBackend_NotFound(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()

	if _, err := backend.Download(ctx, "authors/missing.png"); !errors.Is(err, simpleblog.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
	if _, err := backend.GetObjectMeta(ctx, "authors/missing.png"); !errors.Is(err, simpleblog.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
	if err := backend.Delete(ctx, "authors/missing.png"); !errors.Is(err, simpleblog.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	if err := backend.Upload(context.Background(), "../outside.png", bytes.NewReader(gifData)); err == nil {
		t.Fatalf("expected error for key escaping base dir")
	}
}

func TestFSBackend_Overwrite(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()
	key := "authors/a1.gif"

	for _, content := range []string{"first", "second"} {
		if err := backend.Upload(ctx, key, bytes.NewReader([]byte(content))); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	raw, err := os.ReadFile(filepath.Join(tmp, key))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "second" {
		t.Fatalf("expected overwritten content, got %q", raw)
	}

	entries, _ := os.ReadDir(filepath.Join(tmp, "authors"))
	if len(entries) != 1 {
		t.Fatalf("expected no temporary files, found %d entries", len(entries))
	}
}

func TestNew_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
