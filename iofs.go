package ramfs

import (
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Interface assertions for FS.
var (
	_ fs.FS         = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.GlobFS     = (*FS)(nil)
	// Skipped implementing [fs.SubFS]: a subtree shares ownership with the
	// parent tree, which the teardown discipline cannot express.
)

// Open implements [fs.FS].
//
// This is the [io/fs] entry point: unlike [FS.OpenFile] it requires names
// satisfying [fs.ValidPath], opens read-only, and can open directories,
// yielding an [fs.ReadDirFile] over a lexically sorted snapshot.
func (sys *FS) Open(name string) (fs.File, error) {
	const op = `open`
	if !sys.valid() {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	segs, err := splitPath(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	if len(segs) != 0 {
		if _, f, err := lookupFile(sys.root, segs); err == nil {
			h := &File{fs: sys, file: f, name: name}
			f.handles = append(f.handles, h)
			return h, nil
		}
	}
	d, err := lookupDir(sys.root, segs)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return &dirFile{
		info: fileinfo{name: path.Base(name), mode: fs.ModeDir},
		ents: sortedEntries(d),
	}, nil
}

// ReadDir implements [fs.ReadDirFS].
//
// Entries are lexically sorted as that contract requires, unlike
// [Dir.ReadDir], which preserves the store's insertion order.
func (sys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	const op = `readdir`
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
	return sortedEntries(d), nil
}

// ReadFile implements [fs.ReadFileFS].
//
// The returned slice is a copy; the caller cannot reach the store's buffer
// through it.
func (sys *FS) ReadFile(name string) ([]byte, error) {
	const op = `readfile`
	if !sys.valid() {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrClosed}
	}
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	segs, err := splitPath(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	_, f, err := lookupFile(sys.root, segs)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	ret := make([]byte, len(f.data))
	copy(ret, f.data)
	return ret, nil
}

// Glob implements [fs.GlobFS].
//
// See [path.Match] for the pattern syntax.
func (sys *FS) Glob(pattern string) ([]string, error) {
	// Path.Match is documented as only returning an error when the pattern
	// is invalid, so check it here and avoid the check in the walk.
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	if !sys.valid() {
		return nil, fs.ErrClosed
	}
	if pattern == "." {
		return []string{"."}, nil
	}
	var ret []string
	var walk func(prefix string, d *dirNode)
	walk = func(prefix string, d *dirNode) {
		for _, f := range d.files {
			n := prefix + f.name
			if ok, _ := path.Match(pattern, n); ok {
				ret = append(ret, n)
			}
		}
		for _, s := range d.dirs {
			n := prefix + s.name
			if ok, _ := path.Match(pattern, n); ok {
				ret = append(ret, n)
			}
			walk(n+"/", s)
		}
	}
	walk("", sys.root)
	slices.Sort(ret)
	return ret, nil
}

// SortedEntries snapshots a directory in the lexical order the [io/fs]
// contracts require.
func sortedEntries(d *dirNode) []fs.DirEntry {
	ents := make([]fs.DirEntry, 0, len(d.files)+len(d.dirs))
	for _, f := range d.files {
		ents = append(ents, fileEntry(f))
	}
	for _, s := range d.dirs {
		ents = append(ents, dirEntry(s))
	}
	slices.SortFunc(ents, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return ents
}

// DirFile implements [fs.ReadDirFile] for directories opened through
// [FS.Open].
type dirFile struct {
	info fileinfo
	ents []fs.DirEntry
	pos  int
}

var _ fs.ReadDirFile = (*dirFile)(nil)

func (*dirFile) Close() error                 { return nil }
func (*dirFile) Read(_ []byte) (int, error)   { return 0, io.EOF }
func (d *dirFile) Stat() (fs.FileInfo, error) { return &d.info, nil }

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	es := d.ents[d.pos:]
	if len(es) == 0 {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}
	end := len(es)
	if n > 0 && n < end {
		end = n
	}
	d.pos += end
	return es[:end], nil
}
