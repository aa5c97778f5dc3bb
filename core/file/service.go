package file

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core/group"
)

var ErrNotFound = errors.New("file not found")

type (
	Repository interface {
		CreateFile(ctx context.Context, f File) (File, error)
		QueryGroupFiles(ctx context.Context, groupID int) ([]File, error)
		GetFileByID(ctx context.Context, id int) (File, error)
		DeleteFile(ctx context.Context, id int) error
	}

	// Storage holds the uploaded bytes; the registry only keeps metadata.
	Storage interface {
		// Save persists the content under the given token and returns the
		// public URL it will be served from.
		Save(ctx context.Context, token string, src io.Reader) (string, error)
		// Remove deletes stored bytes. A missing file is not an error.
		Remove(ctx context.Context, token string) error
	}

	Service struct {
		repo      Repository
		store     Storage
		groupRepo group.Repository
	}
)

func NewService(repo Repository, store Storage, groupRepo group.Repository) *Service {
	return &Service{repo: repo, store: store, groupRepo: groupRepo}
}

// Upload stores the bytes under a generated token that keeps the original
// extension, then records the metadata. The original filename is kept for
// display only.
func (svc *Service) Upload(ctx context.Context, uploaderID, groupID int, filename, description string, size int64, src io.Reader) (File, error) {
	if err := ValidateUpload(filename, size); err != nil {
		return File{}, err
	}
	if _, err := svc.groupRepo.GetGroupByID(ctx, groupID); err != nil {
		return File{}, err
	}

	token := uuid.New().String() + Ext(filename)
	url, err := svc.store.Save(ctx, token, src)
	if err != nil {
		return File{}, errors.Wrap(err, "storing file")
	}

	f, err := svc.repo.CreateFile(ctx, File{
		GroupID:     groupID,
		UploadedBy:  uploaderID,
		FileName:    filename,
		FileURL:     url,
		FileType:    Ext(filename),
		FileSize:    size,
		Description: null.NewString(description, description != ""),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		// the registry row failed; do not leave orphaned bytes behind
		_ = svc.store.Remove(ctx, token)
		return File{}, err
	}
	return f, nil
}

func (svc *Service) QueryByGroup(ctx context.Context, groupID int) ([]File, error) {
	return svc.repo.QueryGroupFiles(ctx, groupID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (File, error) {
	return svc.repo.GetFileByID(ctx, id)
}

// Delete removes the registry row and then the stored bytes; bytes already
// gone are tolerated.
func (svc *Service) Delete(ctx context.Context, id int) error {
	f, err := svc.repo.GetFileByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteFile(ctx, id); err != nil {
		return err
	}
	return svc.store.Remove(ctx, tokenFromURL(f.FileURL))
}

// tokenFromURL recovers the storage token from the public URL.
func tokenFromURL(url string) string { return path.Base(url) }
