package backgrounds

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/forPelevin/ayatreel/internal/types"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpen_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4", "b.MOV", "c.webm", "d.avi", "notes.txt", "cover.jpg")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}
	lib, err := Open(dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 4 {
		t.Fatalf("expected 4 videos, got %v", lib.Files())
	}
	for _, f := range lib.Files() {
		if filepath.Ext(f) == ".txt" || filepath.Ext(f) == ".jpg" {
			t.Fatalf("unexpected file %s", f)
		}
	}
}

func TestPick_DeterministicForSeed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.mp4", "2.mp4", "3.mp4", "4.mp4", "5.mp4")

	seq := func() []string {
		lib, err := Open(dir, 42)
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for i := 0; i < 10; i++ {
			p, err := lib.Pick()
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, p)
		}
		return out
	}
	a, b := seq(), seq()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pick %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestPick_Empty(t *testing.T) {
	lib, err := Open(t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Pick(); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_MissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope"), 1); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
