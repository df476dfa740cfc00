package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/starboard/internal/domain/snapshot"
)

// HTTPSource fetches snapshots from a static HTTP location: GET
// {base}/{manifest} and GET {base}/{name}.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
	opts   options
}

// NewHTTPSource creates a source below base.
func NewHTTPSource(base string, opts ...Option) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse data url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse data url: unsupported scheme %q", u.Scheme)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}
	return &HTTPSource{base: u, client: client, opts: o}, nil
}

// Manifest fetches and decodes the manifest.
func (h *HTTPSource) Manifest(ctx context.Context) ([]string, error) {
	body, err := h.get(ctx, h.opts.manifest)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	return snapshot.DecodeManifest(body)
}

// Open fetches one snapshot file.
func (h *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return h.get(ctx, name)
}

// Registration fetches the registration sheet.
func (h *HTTPSource) Registration(ctx context.Context) (io.ReadCloser, error) {
	if h.opts.registration == "" {
		return nil, ErrNotFound
	}
	return h.get(ctx, h.opts.registration)
}

func (h *HTTPSource) get(ctx context.Context, name string) (io.ReadCloser, error) {
	ref, err := url.Parse(strings.TrimLeft(name, "/"))
	if err != nil || ref.IsAbs() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	target := h.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv;q=0.9, */*;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w %d fetching %s: %w", ErrStatus, resp.StatusCode, name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w %d fetching %s", ErrStatus, resp.StatusCode, name)
	}
	return resp.Body, nil
}
