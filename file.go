package ramfs

import (
	"io"
	"io/fs"
)

// File is an open handle on a file in the store.
//
// Each handle carries a private cursor over the file's shared contents, so
// concurrent-in-time handles on one file do not disturb each other's
// position. A handle stays usable until its own Close or the owning
// [FS.Close], whichever comes first; afterward every method with an error
// result reports [fs.ErrClosed].
//
// The flag and permission bits given to [FS.OpenFile] are recorded on the
// handle but never enforced: the store tracks no permissions.
type File struct {
	fs   *FS
	file *fileNode
	name string
	flag int
	perm fs.FileMode
	pos  int64
}

// Interface assertions for File.
var (
	_ fs.File            = (*File)(nil)
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.ByteReader      = (*File)(nil)
	_ io.ByteWriter      = (*File)(nil)
)

func (f *File) ok() bool { return f != nil && f.file != nil }

// ClosedErr builds the error every method reports once the handle is no
// longer usable. Tolerates a nil receiver, like the [os.File] methods do.
func (f *File) closedErr(op string) error {
	if f == nil {
		return &fs.PathError{Op: op, Err: fs.ErrInvalid}
	}
	return &fs.PathError{Op: op, Path: f.name, Err: fs.ErrClosed}
}

// Name returns the name the file was opened with.
func (f *File) Name() string { return f.name }

// Read copies up to len(p) bytes from the cursor position and advances the
// cursor. At or past end-of-file it reports [io.EOF].
func (f *File) Read(p []byte) (int, error) {
	if !f.ok() {
		return 0, f.closedErr(`read`)
	}
	node := f.file
	if f.pos >= int64(len(node.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, node.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

// Write copies p at the cursor position and advances the cursor.
//
// Writing past the current end grows the file to cursor+len(p); any gap
// between the old end and the cursor, as produced by a prior [File.Seek]
// beyond end-of-file, reads back as zero bytes.
func (f *File) Write(p []byte) (int, error) {
	if !f.ok() {
		return 0, f.closedErr(`write`)
	}
	node := f.file
	end := f.pos + int64(len(p))
	if end > int64(len(node.data)) {
		grown := make([]byte, end)
		copy(grown, node.data)
		node.data = grown
	}
	copy(node.data[f.pos:], p)
	f.pos = end
	return len(p), nil
}

// Seek moves the cursor, interpreting offset per [io.SeekStart],
// [io.SeekCurrent], or [io.SeekEnd], and returns the new position.
//
// Positions past end-of-file are legal; a subsequent [File.Write] defines
// the gap as zeros. A computed position before the start is an error.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if !f.ok() {
		return 0, f.closedErr(`seek`)
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = int64(len(f.file.data))
	default:
		return 0, &fs.PathError{Op: `seek`, Path: f.name, Err: fs.ErrInvalid}
	}
	pos := base + offset
	if pos < 0 {
		return 0, &fs.PathError{Op: `seek`, Path: f.name, Err: fs.ErrInvalid}
	}
	f.pos = pos
	return pos, nil
}

// ReadByte implements [io.ByteReader].
func (f *File) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := f.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteByte implements [io.ByteWriter].
func (f *File) WriteByte(c byte) error {
	b := [1]byte{c}
	_, err := f.Write(b[:])
	return err
}

// Tell returns the current cursor position.
func (f *File) Tell() int64 { return f.pos }

// EOF reports whether the cursor is at or past end-of-file.
func (f *File) EOF() bool {
	if !f.ok() {
		return true
	}
	return f.pos >= int64(len(f.file.data))
}

// Size returns the file's current length in bytes.
func (f *File) Size() int64 {
	if !f.ok() {
		return 0
	}
	return int64(len(f.file.data))
}

// Stat implements [fs.File].
func (f *File) Stat() (fs.FileInfo, error) {
	if !f.ok() {
		return nil, f.closedErr(`stat`)
	}
	return &fileinfo{name: f.file.name, size: int64(len(f.file.data))}, nil
}

// Close deregisters the handle from its file.
//
// The file itself is untouched; only once every handle is closed does
// [FS.Remove] of the file succeed. A second Close reports [fs.ErrClosed].
func (f *File) Close() error {
	if !f.ok() {
		return f.closedErr(`close`)
	}
	node := f.file
	for i, h := range node.handles {
		if h == f {
			node.handles = append(node.handles[:i], node.handles[i+1:]...)
			break
		}
	}
	f.file = nil
	f.fs = nil
	return nil
}
