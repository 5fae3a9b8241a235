package ramfs

import (
	"io"
	"io/fs"
	"time"
)

// Dir is an iteration handle over a directory.
//
// Iteration yields every file, then every subdirectory, each group in
// reverse creation order (children are inserted at the front of their
// directory). The handle takes no snapshot: mutating the directory while
// iterating it is undefined under the single-caller model.
type Dir struct {
	fs      *FS
	dir     *dirNode
	name    string
	fileIdx int
	dirIdx  int
}

// OpenDir opens the named directory for iteration.
//
// The empty string, "/", and "." all name the root.
func (sys *FS) OpenDir(name string) (*Dir, error) {
	const op = `opendir`
	if !sys.valid() {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	segs, err := splitPath(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	d, err := lookupDir(sys.root, segs)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return &Dir{fs: sys, dir: d, name: name}, nil
}

// ReadDir reads up to n entries from the handle's position, or all
// remaining entries when n <= 0.
//
// It follows the [fs.ReadDirFile] convention: once the directory is
// exhausted, a positive n reports [io.EOF].
func (d *Dir) ReadDir(n int) ([]fs.DirEntry, error) {
	const op = `readdir`
	if d == nil {
		return nil, &fs.PathError{Op: op, Err: fs.ErrInvalid}
	}
	if d.dir == nil || !d.fs.valid() {
		return nil, &fs.PathError{Op: op, Path: d.name, Err: fs.ErrClosed}
	}
	rem := (len(d.dir.files) - d.fileIdx) + (len(d.dir.dirs) - d.dirIdx)
	if rem == 0 {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}
	if n <= 0 || n > rem {
		n = rem
	}
	ents := make([]fs.DirEntry, 0, n)
	for ; len(ents) < n && d.fileIdx < len(d.dir.files); d.fileIdx++ {
		ents = append(ents, fileEntry(d.dir.files[d.fileIdx]))
	}
	for ; len(ents) < n && d.dirIdx < len(d.dir.dirs); d.dirIdx++ {
		ents = append(ents, dirEntry(d.dir.dirs[d.dirIdx]))
	}
	return ents, nil
}

// Close releases the handle. A second Close reports [fs.ErrClosed].
func (d *Dir) Close() error {
	if d == nil {
		return &fs.PathError{Op: `closedir`, Err: fs.ErrInvalid}
	}
	if d.dir == nil {
		return &fs.PathError{Op: `closedir`, Path: d.name, Err: fs.ErrClosed}
	}
	d.dir = nil
	d.fs = nil
	return nil
}

// Fileinfo implements [fs.FileInfo] for entries in the store.
//
// It reports what the store actually tracks and nothing more: files have a
// byte length and a zero mode, directories have [fs.ModeDir] and size 0,
// and everything has the zero time.
type fileinfo struct {
	name string
	size int64
	mode fs.FileMode
}

var _ fs.FileInfo = (*fileinfo)(nil)

func (fi *fileinfo) Name() string       { return fi.name }
func (fi *fileinfo) Size() int64        { return fi.size }
func (fi *fileinfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileinfo) ModTime() time.Time { return time.Time{} }
func (fi *fileinfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileinfo) Sys() any           { return nil }

// Dirent implements [fs.DirEntry].
type dirent struct{ fi fileinfo }

var _ fs.DirEntry = dirent{}

func (d dirent) Name() string               { return d.fi.name }
func (d dirent) IsDir() bool                { return d.fi.IsDir() }
func (d dirent) Type() fs.FileMode          { return d.fi.mode & fs.ModeType }
func (d dirent) Info() (fs.FileInfo, error) { return &d.fi, nil }

func fileEntry(f *fileNode) dirent {
	return dirent{fileinfo{name: f.name, size: int64(len(f.data))}}
}

func dirEntry(d *dirNode) dirent {
	return dirent{fileinfo{name: d.name, mode: fs.ModeDir}}
}
