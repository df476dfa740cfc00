package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"

	"github.com/okian/starboard/internal/domain/snapshot"
)

// DirSource reads snapshots from a directory, the layout the downloader
// writes.
type DirSource struct {
	root string
	fsys fs.FS
	opts options
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string, opts ...Option) *DirSource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &DirSource{root: dir, fsys: os.DirFS(dir), opts: o}
}

// Manifest reads the manifest file. Without one, every *.json file in the
// directory except the manifest itself is listed.
func (d *DirSource) Manifest(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := d.fsys.Open(d.opts.manifest)
	if errors.Is(err, fs.ErrNotExist) {
		return d.list()
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.opts.manifest, err)
	}
	defer func() { _ = f.Close() }()
	return snapshot.DecodeManifest(f)
}

func (d *DirSource) list() ([]string, error) {
	matches, err := fs.Glob(d.fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	matches = slices.DeleteFunc(matches, func(n string) bool { return n == d.opts.manifest })
	return matches, nil
}

// Open opens one snapshot file. Names must stay inside the directory.
func (d *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return d.open(ctx, name)
}

// Registration opens the registration sheet.
func (d *DirSource) Registration(ctx context.Context) (io.ReadCloser, error) {
	if d.opts.registration == "" {
		return nil, ErrNotFound
	}
	return d.open(ctx, d.opts.registration)
}

func (d *DirSource) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(name)
	if !fs.ValidPath(clean) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	f, err := d.fsys.Open(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
