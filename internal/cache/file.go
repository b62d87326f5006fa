package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

const backendJSON = "json"

// FileStore keeps the snapshot as a single JSON document
type FileStore struct {
	path string
	now  Clock
}

// NewFileStore returns a store writing to path. A nil clock means time.Now.
func NewFileStore(path string, now Clock) *FileStore {
	if now == nil {
		now = time.Now
	}
	return &FileStore{path: path, now: now}
}

// Path returns the snapshot location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*aggregate.Aggregate, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr(backendJSON, "load", err, "read snapshot")
	}

	agg, err := decode(data)
	if err != nil {
		return nil, storageErr(backendJSON, "load", err, "decode snapshot")
	}
	return agg, nil
}

// Save writes to a temp file in the same directory and renames it over the
// snapshot, so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, agg *aggregate.Aggregate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agg.CachedAt = aggregate.Timestamp{Time: s.now()}
	data, err := encode(agg)
	if err != nil {
		return storageErr(backendJSON, "save", err, "encode snapshot")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return storageErr(backendJSON, "save", err, "create cache directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storageErr(backendJSON, "save", err, "create temp file")
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpName)
		return storageErr(backendJSON, "save", err, "write temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return storageErr(backendJSON, "save", err, "replace snapshot")
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "fsync")
	}
	return f.Close()
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return storageErr(backendJSON, "clear", err, "remove snapshot")
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
