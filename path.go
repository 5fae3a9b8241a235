package ramfs

import (
	"fmt"
	"io/fs"
	"strings"
)

// SplitPath normalizes a path into its name segments.
//
// One leading and one trailing separator are stripped, empty and "."
// segments are dropped (which also absorbs doubled separators), and ".."
// is rejected. The empty segment list addresses the root.
func splitPath(name string) ([]string, error) {
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, "/")
	if name == "" || name == "." {
		return nil, nil
	}
	segs := strings.Split(name, "/")
	out := segs[:0]
	for _, s := range segs {
		switch s {
		case "", ".":
		case "..":
			return nil, fs.ErrInvalid
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

// LookupDir walks the segments from "start" and returns the named
// directory, or [fs.ErrNotExist].
func lookupDir(start *dirNode, segs []string) (*dirNode, error) {
	cur := start
	for _, s := range segs {
		_, next := cur.findDir(s)
		if next == nil {
			return nil, fs.ErrNotExist
		}
		cur = next
	}
	return cur, nil
}

// LookupFile resolves all but the last segment as directories and the last
// as a file.
//
// On a miss of only the terminal segment the parent is still returned
// alongside [fs.ErrNotExist], so callers on a create path can avoid a
// second walk.
func lookupFile(start *dirNode, segs []string) (*dirNode, *fileNode, error) {
	if len(segs) == 0 {
		return nil, nil, fs.ErrInvalid
	}
	parent, err := lookupDir(start, segs[:len(segs)-1])
	if err != nil {
		return nil, nil, err
	}
	_, f := parent.findFile(segs[len(segs)-1])
	if f == nil {
		return parent, nil, fs.ErrNotExist
	}
	return parent, f, nil
}

// CreateFile creates the file named by the terminal segment.
//
// Every intermediate directory must already exist; there is no implicit
// mkdir-p on the file-create path. A subdirectory already using the
// terminal name is a conflict.
func createFile(start *dirNode, segs []string) (*fileNode, error) {
	if len(segs) == 0 {
		return nil, fs.ErrInvalid
	}
	parent, err := lookupDir(start, segs[:len(segs)-1])
	if err != nil {
		return nil, err
	}
	base := segs[len(segs)-1]
	if _, s := parent.findDir(base); s != nil {
		return nil, fmt.Errorf("%q is a directory: %w", base, fs.ErrExist)
	}
	f := &fileNode{name: base}
	parent.attachFile(f)
	return f, nil
}

// CreateDir creates the named directory with mkdir-p semantics: missing
// segments are created on the way down, existing ones are descended into.
// Reaching an already-existing terminal directory is success.
//
// A file already using any segment's name is a conflict.
func createDir(start *dirNode, segs []string) (*dirNode, error) {
	cur := start
	for _, s := range segs {
		if _, f := cur.findFile(s); f != nil {
			return nil, fmt.Errorf("%q is a file: %w", s, fs.ErrExist)
		}
		_, next := cur.findDir(s)
		if next == nil {
			next = &dirNode{name: s}
			cur.attachDir(next)
		}
		cur = next
	}
	return cur, nil
}
