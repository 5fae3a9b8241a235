package ramfs

import (
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"
)

// OpenFile opens the named file.
//
// A missing file is created when "flag" contains [os.O_CREATE] or
// [os.O_WRONLY]; intermediate directories are never created implicitly.
// [os.O_TRUNC] discards any existing contents and [os.O_APPEND] starts the
// cursor at end-of-file. "flag" and "perm" are recorded on the handle but
// not enforced.
//
// Both rooted ("/a/b") and [io/fs]-style ("a/b") names are accepted; a name
// addressing the root or an existing directory is an error.
func (sys *FS) OpenFile(name string, flag int, perm fs.FileMode) (*File, error) {
	const op = `open`
	if !sys.valid() {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) == 0 {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	_, f, err := lookupFile(sys.root, segs)
	switch {
	case err == nil:
	case flag&(os.O_CREATE|os.O_WRONLY) != 0:
		f, err = createFile(sys.root, segs)
		if err != nil {
			return nil, &fs.PathError{Op: op, Path: name, Err: err}
		}
	default:
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	h := &File{
		fs:   sys,
		file: f,
		name: name,
		flag: flag,
		perm: perm,
	}
	if flag&os.O_TRUNC != 0 {
		f.data = nil
	}
	if flag&os.O_APPEND != 0 {
		h.pos = int64(len(f.data))
	}
	f.handles = append(f.handles, h)
	return h, nil
}

// Create opens the named file for reading and writing, creating it if
// missing and discarding any prior contents.
func (sys *FS) Create(name string) (*File, error) {
	return sys.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
}

// Stat reports metadata for the file or directory at "name".
//
// This also serves as the [fs.StatFS] implementation; the root stats as a
// directory named ".".
func (sys *FS) Stat(name string) (fs.FileInfo, error) {
	const op = `stat`
	if !sys.valid() {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) == 0 {
		return &fileinfo{name: ".", mode: fs.ModeDir}, nil
	}
	if _, f, err := lookupFile(sys.root, segs); err == nil {
		return &fileinfo{name: f.name, size: int64(len(f.data))}, nil
	}
	if d, err := lookupDir(sys.root, segs); err == nil {
		return &fileinfo{name: d.name, mode: fs.ModeDir}, nil
	}
	return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// Remove unlinks the named file.
//
// A file with open handles is refused with [ErrInUse] and the tree is left
// unchanged. Directories cannot be removed.
func (sys *FS) Remove(name string) error {
	const op = `remove`
	if !sys.valid() {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) == 0 {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	parent, err := lookupDir(sys.root, segs[:len(segs)-1])
	if err != nil {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	i, f := parent.findFile(segs[len(segs)-1])
	if f == nil {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	if len(f.handles) > 0 {
		return &fs.PathError{Op: op, Path: name, Err: ErrInUse}
	}
	parent.detachFile(i)
	f.data = nil
	return nil
}

// Rename renames the file at "oldname" to the terminal name of "newname".
//
// Only in-place renames are supported: both names must resolve to the same
// parent directory, and directories cannot be renamed. Renaming onto an
// existing name is refused; renaming a file onto its own name is a no-op.
// Open handles stay valid across a rename.
func (sys *FS) Rename(oldname, newname string) error {
	const op = `rename`
	lerr := func(err error) error {
		return &os.LinkError{Op: op, Old: oldname, New: newname, Err: err}
	}
	if !sys.valid() {
		return lerr(fs.ErrClosed)
	}
	oldsegs, err := splitPath(oldname)
	if err != nil {
		return lerr(err)
	}
	newsegs, err := splitPath(newname)
	if err != nil {
		return lerr(err)
	}
	if len(oldsegs) == 0 || len(newsegs) == 0 {
		return lerr(fs.ErrInvalid)
	}
	if !slices.Equal(oldsegs[:len(oldsegs)-1], newsegs[:len(newsegs)-1]) {
		return lerr(fmt.Errorf("cross-directory rename not supported: %w", fs.ErrInvalid))
	}
	parent, f, err := lookupFile(sys.root, oldsegs)
	if err != nil {
		return lerr(fs.ErrNotExist)
	}
	base := newsegs[len(newsegs)-1]
	if base == f.name {
		return nil
	}
	if parent.occupied(base) {
		return lerr(fs.ErrExist)
	}
	f.name = base
	return nil
}

// MkdirAll creates the named directory along with any missing parents.
//
// Creating an already-existing directory is success; naming the root is an
// error; a path segment already naming a file is a conflict. "perm" is
// accepted for signature parity with [os.MkdirAll] and discarded.
func (sys *FS) MkdirAll(name string, perm fs.FileMode) error {
	const op = `mkdir`
	_ = perm
	if !sys.valid() {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) == 0 {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	if _, err := createDir(sys.root, segs); err != nil {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

// Chmod verifies the named file or directory exists.
//
// The store tracks no permissions, so the mode is discarded.
func (sys *FS) Chmod(name string, mode fs.FileMode) error {
	_ = mode
	return sys.resolve(`chmod`, name)
}

// Chtimes verifies the named file or directory exists.
//
// The store tracks no times, so both arguments are discarded.
func (sys *FS) Chtimes(name string, atime, mtime time.Time) error {
	_, _ = atime, mtime
	return sys.resolve(`chtimes`, name)
}

func (sys *FS) resolve(op, name string) error {
	if !sys.valid() {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) == 0 {
		return nil
	}
	if _, _, err := lookupFile(sys.root, segs); err == nil {
		return nil
	}
	if _, err := lookupDir(sys.root, segs); err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// DirExists reports whether "name" resolves to a directory, the root
// included. It never reports an error: malformed names and closed
// filesystems report false.
func (sys *FS) DirExists(name string) bool {
	if !sys.valid() {
		return false
	}
	segs, err := splitPath(name)
	if err != nil {
		return false
	}
	_, err = lookupDir(sys.root, segs)
	return err == nil
}
