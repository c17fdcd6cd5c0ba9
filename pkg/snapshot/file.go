package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vango-dev/hostrender/internal/errors"
)

// FileStore writes snapshots under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E140").WithDetail(dir).Wrap(err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Put writes html to dir/key.html via a temporary file and rename.
func (s *FileStore) Put(ctx context.Context, key string, html []byte) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.FromSlash(objectName(key)))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.New("E140").WithDetail(path).Wrap(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return "", errors.New("E140").WithDetail(path).Wrap(err)
	}
	_, err = tmp.Write(html)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("E140").WithDetail(path).Wrap(err)
	}
	return path, nil
}
