package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
)

var ErrUnsafePath = errors.New("unsafe object path")

// Store is the object store the services upload to and remove from.
type Store interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader) error
	Remove(ctx context.Context, bucket string, objectPaths ...string) error
	Open(ctx context.Context, bucket, objectPath string) (*os.File, error)
}

// FSStore keeps each bucket as a directory under Root.
type FSStore struct {
	Root string
}

// NewFSStore creates the bucket directories under root.
func NewFSStore(root string) (*FSStore, error) {
	for _, b := range Buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &FSStore{Root: root}, nil
}

func cleanObjectPath(p string) (string, error) {
	if p == "" || strings.ContainsRune(p, 0) || strings.Contains(p, "\\") || strings.HasPrefix(p, "/") {
		return "", ErrUnsafePath
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrUnsafePath
	}
	return clean, nil
}

func (s *FSStore) filePath(bucket, objectPath string) (string, error) {
	if !KnownBucket(bucket) {
		return "", fmt.Errorf("bucket %q: %w", bucket, apperr.ErrNotFound)
	}
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, bucket, filepath.FromSlash(clean)), nil
}

// Upload streams r into a temp file next to the target and renames it into
// place, so readers never observe a partial blob.
func (s *FSStore) Upload(ctx context.Context, bucket, objectPath string, r io.Reader) error {
	full, err := s.filePath(bucket, objectPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}

	f, err := os.CreateTemp(dir, ".tmp."+filepath.Base(full)+".*")
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}

	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}

	if dirf, err := os.Open(dir); err == nil {
		_ = dirf.Sync()
		_ = dirf.Close()
	}
	return nil
}

// Remove deletes every listed object. Missing objects are not an error; the
// first real failure is returned after all paths were attempted.
func (s *FSStore) Remove(ctx context.Context, bucket string, objectPaths ...string) error {
	var errs []error
	for _, p := range objectPaths {
		if err := ctx.Err(); err != nil {
			return err
		}
		full, err := s.filePath(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s/%s: %w", bucket, p, err))
		}
	}
	return errors.Join(errs...)
}

// Open returns the blob for reading. A missing blob is apperr.ErrNotFound.
func (s *FSStore) Open(ctx context.Context, bucket, objectPath string) (*os.File, error) {
	full, err := s.filePath(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s/%s: %w", bucket, objectPath, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", bucket, objectPath, err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s/%s: %w", bucket, objectPath, apperr.ErrNotFound)
	}
	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
