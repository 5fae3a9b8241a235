package ramfs

import (
	"slices"
)

// FileNode is a regular file in the tree.
//
// The containing directory exclusively owns the node. Handles hold
// non-owning back-references and are registered in "handles" so removal can
// refuse while any are live and teardown can detach the stragglers.
//
// The invariant data == nil ⇔ len(data) == 0 holds everywhere the buffer is
// replaced.
type fileNode struct {
	name    string
	data    []byte
	handles []*File
}

// DirNode is a directory in the tree.
//
// Children are inserted at index 0, so iteration sees reverse creation
// order. No two direct children, across both slices, share a name.
type dirNode struct {
	name  string
	files []*fileNode
	dirs  []*dirNode
}

// NewRoot returns the root directory, whose name is the literal separator.
func newRoot() *dirNode { return &dirNode{name: "/"} }

// FindFile returns the index and node of the named child file, or -1 and
// nil when there is none.
func (d *dirNode) findFile(name string) (int, *fileNode) {
	for i, f := range d.files {
		if f.name == name {
			return i, f
		}
	}
	return -1, nil
}

// FindDir is [dirNode.findFile] for subdirectories.
func (d *dirNode) findDir(name string) (int, *dirNode) {
	for i, s := range d.dirs {
		if s.name == name {
			return i, s
		}
	}
	return -1, nil
}

func (d *dirNode) attachFile(f *fileNode) { d.files = slices.Insert(d.files, 0, f) }
func (d *dirNode) attachDir(s *dirNode)   { d.dirs = slices.Insert(d.dirs, 0, s) }
func (d *dirNode) detachFile(i int)       { d.files = slices.Delete(d.files, i, i+1) }

// Occupied reports whether any direct child, file or subdirectory, uses the
// name.
func (d *dirNode) occupied(name string) bool {
	if _, f := d.findFile(name); f != nil {
		return true
	}
	_, s := d.findDir(name)
	return s != nil
}

// Teardown releases the subtree rooted at d: files first, then
// subdirectories, post-order.
//
// Handles still registered are detached so that later method calls report
// [fs.ErrClosed] instead of touching released state. The count of such
// stragglers is returned for logging.
func (d *dirNode) teardown() (lingering int) {
	for _, f := range d.files {
		lingering += len(f.handles)
		for _, h := range f.handles {
			h.fs = nil
			h.file = nil
		}
		f.handles = nil
		f.data = nil
	}
	d.files = nil
	for _, s := range d.dirs {
		lingering += s.teardown()
	}
	d.dirs = nil
	return lingering
}
