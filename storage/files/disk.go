// Package files stores uploaded bytes on the local filesystem and serves
// them back through a static URL prefix.
package files

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
)

type DiskStorage struct {
	dir       string
	urlPrefix string
}

var _ file.Storage = (*DiskStorage)(nil)

func NewDiskStorage(conf *core.Config) (*DiskStorage, error) {
	if err := os.MkdirAll(conf.Uploads.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads directory")
	}
	return &DiskStorage{dir: conf.Uploads.Dir, urlPrefix: conf.Uploads.URLPrefix}, nil
}

func (s *DiskStorage) Save(_ context.Context, token string, src io.Reader) (string, error) {
	dst, err := os.Create(filepath.Join(s.dir, token))
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer func() { _ = dst.Close() }()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return s.urlPrefix + "/" + token, nil
}

func (s *DiskStorage) Remove(_ context.Context, token string) error {
	if err := os.Remove(filepath.Join(s.dir, token)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
