package ramfs

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/quay/zlog"
)

// Populate fills a filesystem with the given name → contents mapping,
// creating leading directories as needed.
func populate(t testing.TB, sys *FS, files map[string]string) {
	t.Helper()
	for n, c := range files {
		if d := path.Dir(n); d != "." {
			if err := sys.MkdirAll(d, 0o755); err != nil {
				t.Fatal(err)
			}
		}
		f, err := sys.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(c)); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

var testTree = map[string]string{
	"file.txt":       "contents",
	"other.txt":      "more",
	"d1/f.txt":       "x",
	"d1/d2/deep.bin": "\x00\x01\x02",
	"z/empty":        "",
}

// TestFS runs the standard library's conformance check over a populated
// store.
func TestFS(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	sys := New(ctx)
	defer sys.Close()
	populate(t, sys, testTree)

	expected := make([]string, 0, len(testTree))
	for n := range testTree {
		expected = append(expected, n)
	}
	if err := fstest.TestFS(sys, expected...); err != nil {
		t.Error(err)
	}
}

func TestGlob(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	sys := New(ctx)
	defer sys.Close()
	populate(t, sys, testTree)

	tt := []struct {
		Pattern string
		Want    []string
	}{
		{"*.txt", []string{"file.txt", "other.txt"}},
		{"d1/*", []string{"d1/d2", "d1/f.txt"}},
		{"*/*", []string{"d1/d2", "d1/f.txt", "z/empty"}},
		{"file.txt", []string{"file.txt"}},
		{".", []string{"."}},
		{"nope*", nil},
	}
	for _, tc := range tt {
		t.Run(tc.Pattern, func(t *testing.T) {
			got, err := sys.Glob(tc.Pattern)
			if err != nil {
				t.Fatal(err)
			}
			if !cmp.Equal(got, tc.Want) {
				t.Error(cmp.Diff(got, tc.Want))
			}
		})
	}

	t.Run("BadPattern", func(t *testing.T) {
		if _, err := sys.Glob("[-"); !errors.Is(err, path.ErrBadPattern) {
			t.Errorf("got: %v, want: %v", err, path.ErrBadPattern)
		}
	})
}

func TestWalkDir(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	sys := New(ctx)
	defer sys.Close()
	populate(t, sys, testTree)

	got := make(map[string]string)
	err := fs.WalkDir(sys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		b, err := fs.ReadFile(sys, p)
		if err != nil {
			return err
		}
		got[p] = string(b)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, testTree) {
		t.Error(cmp.Diff(got, testTree))
	}
}

// TestReadFileCopy checks that mutating the returned slice cannot reach the
// store's buffer.
func TestReadFileCopy(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	sys := New(ctx)
	defer sys.Close()
	populate(t, sys, map[string]string{"f": "stable"})

	b, err := sys.ReadFile("f")
	if err != nil {
		t.Fatal(err)
	}
	for i := range b {
		b[i] = 'X'
	}
	again, err := sys.ReadFile("f")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(again), "stable"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

// TestOpenStrict checks that the [fs.FS] entry points hold the [io/fs] line
// on names, while the POSIX-like surface stays permissive.
func TestOpenStrict(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	sys := New(ctx)
	defer sys.Close()
	populate(t, sys, map[string]string{"f": "x"})

	for _, n := range []string{"/f", "./f", "f/", ""} {
		if _, err := sys.Open(n); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Open(%q): got: %v, want: %v", n, err, fs.ErrInvalid)
		}
		if _, err := sys.ReadFile(n); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("ReadFile(%q): got: %v, want: %v", n, err, fs.ErrInvalid)
		}
	}
	if _, err := sys.Stat("/f"); err != nil {
		t.Errorf("Stat(\"/f\"): %v", err)
	}
}
