// Package repository provides the places snapshot files are read from: a local
// directory or a static HTTP location.
package repository

import (
	"context"
	"io"

	"github.com/okian/starboard/internal/domain/snapshot"
)

// Source serves snapshots and the optional registration sheet.
type Source interface {
	snapshot.Source

	// Registration opens the registration sheet. It returns ErrNotFound when
	// the source has none.
	Registration(ctx context.Context) (io.ReadCloser, error)
}

var (
	_ Source = (*DirSource)(nil)
	_ Source = (*HTTPSource)(nil)
)
