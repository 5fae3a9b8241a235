package ramfs

import (
	"io/fs"
)

// ErrInUse is reported when removing a file that still has open handles.
//
// Comparing via [errors.Is] against [fs.ErrInvalid] also reports true: the
// request is well-formed but not serviceable while handles are live.
var ErrInUse error = invalidError("ramfs: file has open handles")

// InvalidError is the concrete type behind [ErrInUse].
type invalidError string

func (e invalidError) Is(tgt error) bool { return tgt == fs.ErrInvalid }
func (e invalidError) Error() string     { return string(e) }
