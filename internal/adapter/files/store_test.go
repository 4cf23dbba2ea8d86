package files_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neomorfeo/gestloc/internal/adapter/files"
	"github.com/neomorfeo/gestloc/internal/domain"
)

func newTestStore(t *testing.T) *files.Store {
	t.Helper()
	store, err := files.New(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func TestValidateRelative(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "etats_des_lieux/1/a.jpg"},
		{path: "a..b/c.png"},
		{path: "", wantErr: true},
		{path: "../../etc/passwd", wantErr: true},
		{path: "a/../../b", wantErr: true},
		{path: `a\b`, wantErr: true},
		{path: "/etc/passwd", wantErr: true},
		{path: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := files.ValidateRelative(tt.path)
			if tt.wantErr && !errors.Is(err, domain.ErrUnsafePath) {
				t.Errorf("expected ErrUnsafePath, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaveResolveRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "etats_des_lieux/3/x.png", []byte("data")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path, err := store.Resolve("etats_des_lieux/3/x.png")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Errorf("read back %q, %v", got, err)
	}

	if err := store.Remove("etats_des_lieux/3/x.png"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove("etats_des_lieux/3/x.png"); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}
	if _, err := store.Resolve("etats_des_lieux/3/x.png"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestResolve_RejectsBeforeTouchingFilesystem(t *testing.T) {
	// The root does not exist: any filesystem access would fail differently.
	store := &files.Store{}
	for _, p := range []string{"../../etc/passwd", `a\b`, "/etc/passwd"} {
		if _, err := store.Resolve(p); !errors.Is(err, domain.ErrUnsafePath) {
			t.Errorf("Resolve(%q): expected ErrUnsafePath, got %v", p, err)
		}
	}
}

func TestResolve_RejectsSymlinkEscape(t *testing.T) {
	store := newTestStore(t)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o600); err != nil {
		t.Fatalf("writing outside file: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(store.Root(), "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := store.Resolve("link.txt"); !errors.Is(err, domain.ErrUnsafePath) {
		t.Errorf("expected ErrUnsafePath, got %v", err)
	}
}

func TestResolve_RejectsDirectories(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Join(store.Root(), "etats_des_lieux"), 0o750); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Resolve("etats_des_lieux"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRemoveUnder(t *testing.T) {
	tmp := t.TempDir()
	inside := filepath.Join(tmp, "doc.pdf")
	if err := os.WriteFile(inside, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "keep.pdf")
	if err := os.WriteFile(outside, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := files.RemoveUnder(tmp, inside); err != nil {
		t.Fatalf("RemoveUnder failed: %v", err)
	}
	if _, err := os.Stat(inside); !errors.Is(err, os.ErrNotExist) {
		t.Error("file inside the temp root should be removed")
	}

	if err := files.RemoveUnder(tmp, outside); !errors.Is(err, domain.ErrUnsafePath) {
		t.Errorf("expected ErrUnsafePath, got %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the temp root must be kept")
	}
}
