package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrNotFound is returned when a named resource does not exist
var ErrNotFound = errors.New("resource not found")

// ErrNotListable is returned by sources that cannot enumerate their contents
var ErrNotListable = errors.New("source cannot be listed")

// Source is where the site's JSON resources and images live
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context) ([]string, error)
	String() string
}

// NewSource picks a source from base: gs://bucket/prefix, http(s)://host/path
// or a local directory.
func NewSource(ctx context.Context, base string, opts ...option.ClientOption) (Source, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, including windows drive letters
		return NewDirSource(base), nil
	}
	switch u.Scheme {
	case "gs":
		return NewGCSSource(ctx, u.Host, strings.TrimPrefix(u.Path, "/"), opts...)
	case "http", "https":
		return NewHTTPSource(base, nil)
	case "file":
		return NewDirSource(u.Path), nil
	}
	return nil, fmt.Errorf("unsupported resource base %q", base)
}

// cleanName rejects names that escape the source root
func cleanName(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return clean, nil
}

// DirSource reads resources from a local directory
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Root returns the directory path
func (d *DirSource) Root() string { return d.root }

func (d *DirSource) String() string { return d.root }

func (d *DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", clean, err)
	}
	return f, nil
}

func (d *DirSource) List(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.root, err)
	}
	return names, nil
}

// HTTPSource fetches resources relative to a base URL
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource returns a source rooted at base. A nil client gets a 30s timeout.
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing resource url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{base: u, client: client}, nil
}

func (h *HTTPSource) String() string { return h.base.String() }

func (h *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	target := h.base.ResolveReference(&url.URL{Path: clean})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: bad status code: %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

func (h *HTTPSource) List(context.Context) ([]string, error) {
	return nil, ErrNotListable
}

// GCSSource reads resources from a Cloud Storage bucket under a prefix
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSource opens a storage client for bucket. Close releases it.
func NewGCSSource(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSSource, error) {
	if bucket == "" {
		return nil, errors.New("gs resource base needs a bucket")
	}
	opts = append([]option.ClientOption{option.WithUserAgent("map-gallery")}, opts...)
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSSource{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *GCSSource) String() string { return "gs://" + g.bucket + "/" + g.prefix }

func (g *GCSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	r, err := g.client.Bucket(g.bucket).Object(g.prefix + clean).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %w", g.prefix+clean, err)
	}
	return r, nil
}

func (g *GCSSource) List(ctx context.Context) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})
	var names []string
	for {
		obj, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return names, fmt.Errorf("error iterating objects: %w", err)
		}
		if name := strings.TrimPrefix(obj.Name, g.prefix); name != "" && !strings.HasSuffix(name, "/") {
			names = append(names, name)
		}
	}
	return names, nil
}

// Close releases the storage client
func (g *GCSSource) Close() error {
	return g.client.Close()
}
