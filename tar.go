package ramfs

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/quay/zlog"
	"go.opentelemetry.io/otel/attribute"
)

// Magic numbers for compression detection.
const zstdFrameMagic = 0xFD2FB528

var gzipMagic = []byte{0x1f, 0x8b}

// FromTar constructs a filesystem populated from the tar stream in "r".
//
// Plain, gzip-compressed, and zstd-compressed streams are detected by magic
// bytes. Directory members become directories, regular members become files
// (leading directories created as needed, later members shadowing earlier
// ones of the same name); everything else -- links, devices, fifos -- is
// skipped, as the store cannot represent them.
//
// The returned FS is subject to the usual [FS.Close] discipline.
func FromTar(ctx context.Context, r io.Reader) (*FS, error) {
	ctx = zlog.ContextWithValues(ctx, "component", "ramfs/FromTar")
	ctx, span := tracer.Start(ctx, "FromTar")
	defer span.End()

	br := bufio.NewReader(r)
	hdr, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ramfs: unable to read stream header: %w", err)
	}
	var src io.Reader = br
	compressionKind := `none`
	switch {
	case len(hdr) >= 4 && binary.LittleEndian.Uint32(hdr) == zstdFrameMagic:
		compressionKind = `zstd`
		z, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("ramfs: unable to read zstd stream: %w", err)
		}
		defer z.Close()
		src = z
	case len(hdr) >= 2 && bytes.Equal(hdr[:2], gzipMagic):
		compressionKind = `gzip`
		z, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("ramfs: unable to read gzip stream: %w", err)
		}
		defer z.Close()
		src = z
	}
	span.SetAttributes(attribute.String("compression", compressionKind))

	sys := New(ctx)
	bail := true
	defer func() {
		if bail {
			sys.Close()
		}
	}()

	var n int
	tr := tar.NewReader(src)
	h, err := tr.Next()
	for ; err == nil; h, err = tr.Next() {
		name := path.Clean(strings.TrimPrefix(h.Name, "/"))
		if name == "." || name == ".." || strings.HasPrefix(name, "../") {
			continue
		}
		switch h.Typeflag {
		case tar.TypeDir:
			if err := sys.MkdirAll(name, fs.FileMode(h.Mode)); err != nil {
				return nil, fmt.Errorf("ramfs: unable to create %q: %w", name, err)
			}
		case tar.TypeReg:
			if dir := path.Dir(name); dir != "." {
				if err := sys.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ramfs: unable to create %q: %w", dir, err)
				}
			}
			f, err := sys.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(h.Mode))
			if err != nil {
				return nil, fmt.Errorf("ramfs: unable to create %q: %w", name, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, fmt.Errorf("ramfs: unable to copy %q: %w", name, err)
			}
			if err := f.Close(); err != nil {
				return nil, err
			}
		default:
			zlog.Debug(ctx).
				Str("name", name).
				Uint8("type", h.Typeflag).
				Msg("skipping unsupported member")
			continue
		}
		n++
	}
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ramfs: error reading tar: %w", err)
	}
	span.SetAttributes(attribute.Int("entries", n))
	zlog.Debug(ctx).Int("entries", n).Msg("filesystem populated")
	bail = false
	return sys, nil
}

// WriteTar writes the whole tree to "w" as an uncompressed tar stream.
//
// Within one directory, files come before subdirectories and each group is
// emitted in [Dir.ReadDir] order; a directory's header always precedes its
// contents. The result round-trips through [FromTar].
func (sys *FS) WriteTar(ctx context.Context, w io.Writer) error {
	const op = `writetar`
	if !sys.valid() {
		return &fs.PathError{Op: op, Path: "/", Err: fs.ErrClosed}
	}
	ctx = zlog.ContextWithValues(ctx, "component", "ramfs/WriteTar")
	_, span := tracer.Start(ctx, "WriteTar")
	defer span.End()

	tw := tar.NewWriter(w)
	var walk func(prefix string, d *dirNode) error
	walk = func(prefix string, d *dirNode) error {
		for _, f := range d.files {
			h := &tar.Header{
				Typeflag: tar.TypeReg,
				Name:     prefix + f.name,
				Size:     int64(len(f.data)),
				Mode:     0o644,
			}
			if err := tw.WriteHeader(h); err != nil {
				return err
			}
			if _, err := tw.Write(f.data); err != nil {
				return err
			}
		}
		for _, s := range d.dirs {
			n := prefix + s.name
			h := &tar.Header{
				Typeflag: tar.TypeDir,
				Name:     n + "/",
				Mode:     0o755,
			}
			if err := tw.WriteHeader(h); err != nil {
				return err
			}
			if err := walk(n+"/", s); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("", sys.root); err != nil {
		return fmt.Errorf("ramfs: unable to write tar: %w", err)
	}
	return tw.Close()
}
