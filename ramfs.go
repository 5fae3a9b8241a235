// Package ramfs implements a volatile, heap-backed hierarchical filesystem.
//
// The store owns a tree of directories and files living entirely in memory:
// lookups are path-based, open files are handles carrying a private cursor
// over shared contents, and files with live handles cannot be removed.
// Alongside the POSIX-like surface ([FS.OpenFile], [FS.Remove],
// [FS.MkdirAll], ...) the read side of the store implements the [io/fs]
// interfaces, so a populated instance composes with [fs.WalkDir],
// [testing/fstest.TestFS], and friends.
//
// An FS is not safe for concurrent use; callers are expected to serialize
// access to an instance and everything opened from it.
package ramfs

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/quay/zlog"
)

// FsMagic tags live instances. Close poisons it, which is what turns every
// later method call into a clean [fs.ErrClosed] report instead of a walk of
// released state.
const fsMagic = 0x52414D46

// FS is a single in-memory filesystem instance.
//
// [FS.Close] must be called to release the tree.
// Failing to do so and letting an instance be garbage collected results in
// the program panicing.
type FS struct {
	magic uint32
	root  *dirNode
	ctx   context.Context
}

// New constructs an empty filesystem holding just the root directory.
//
// The context is used for logging and telemetry only; no operation on the
// returned FS blocks.
func New(ctx context.Context) *FS {
	ctx = zlog.ContextWithValues(ctx, "component", "ramfs/New")
	ctx, span := tracer.Start(ctx, "New")
	defer span.End()

	sys := &FS{
		magic: fsMagic,
		root:  newRoot(),
		ctx:   ctx,
	}

	_, file, line, _ := runtime.Caller(1)
	runtime.SetFinalizer(sys, func(sys *FS) {
		panic(fmt.Sprintf("%s:%d: FS not closed", file, line))
	})
	profile.Add(sys, 1)
	fsCounter.Add(ctx, 1)
	zlog.Debug(ctx).Msg("filesystem created")
	return sys
}

// Close releases the tree.
//
// The walk is post-order: every file's buffer and handle set is dropped,
// then subdirectories, then the directory itself. Handles still open are
// detached rather than leaked; any later use of one reports [fs.ErrClosed].
// Calling Close a second time reports [fs.ErrClosed].
func (sys *FS) Close() error {
	if !sys.valid() {
		return fs.ErrClosed
	}
	runtime.SetFinalizer(sys, nil)
	profile.Remove(sys)
	if n := sys.root.teardown(); n > 0 {
		zlog.Warn(zlog.ContextWithValues(sys.ctx, "component", "ramfs/Close")).
			Int("handles", n).
			Msg("handles still open at teardown")
	}
	sys.root = nil
	sys.ctx = nil
	sys.magic = 0
	return nil
}

// Valid reports whether the instance was returned by [New] and has not been
// Closed.
func (sys *FS) Valid() bool { return sys.valid() }

func (sys *FS) valid() bool { return sys != nil && sys.magic == fsMagic }
