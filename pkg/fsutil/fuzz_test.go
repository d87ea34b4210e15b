package fsutil_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/htmlmd/pkg/fsutil"
)

func FuzzWriteAtomic(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("# Title\n\nbody\n"))
	f.Add([]byte("| a | b |\n| --- | --- |\n"))
	f.Add([]byte("\x00\x01\x02\x03"))
	f.Add(make([]byte, 1024))

	f.Fuzz(func(t *testing.T, content []byte) {
		path := filepath.Join(t.TempDir(), "page.md")

		if err := fsutil.WriteAtomic(context.Background(), path, content, 0o644); err != nil {
			t.Fatalf("WriteAtomic failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content mismatch: got %d bytes, want %d", len(got), len(content))
		}
	})
}

func FuzzReadFileCheckModified(f *testing.F) {
	f.Add([]byte("<p>hello</p>"))
	f.Add([]byte("<meta charset=\"koi8-r\">"))
	f.Add([]byte(""))
	f.Add(make([]byte, 1024))

	f.Fuzz(func(t *testing.T, content []byte) {
		path := filepath.Join(t.TempDir(), "index.html")
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		ctx := context.Background()
		got, info, err := fsutil.ReadFile(ctx, path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content mismatch: got %d bytes, want %d", len(got), len(content))
		}

		modified, err := fsutil.CheckModified(ctx, info)
		if err != nil {
			t.Fatalf("CheckModified failed: %v", err)
		}
		if modified {
			t.Error("file should not be reported as modified")
		}
	})
}
