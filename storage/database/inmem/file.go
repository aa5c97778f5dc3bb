package inmem

import (
	"context"
	"sort"

	"github.com/Ma114119/Combits-2025/core/file"
)

type fileRepository struct {
	db *DB
}

var _ file.Repository = (*fileRepository)(nil)

func NewFileRepository(db *DB) *fileRepository {
	return &fileRepository{db: db}
}

// callers hold the store lock
func (db *DB) enrichFileLocked(f file.File) file.File {
	if usr, ok := db.users[f.UploadedBy]; ok {
		f.UploadedByName = usr.Name
		f.UploadedByEmail = usr.Email
	}
	return f
}

func (repo fileRepository) CreateFile(_ context.Context, f file.File) (file.File, error) {
	defer repo.db.lock()()

	repo.db.fileSeq++
	f.ID = repo.db.fileSeq
	repo.db.files[f.ID] = f
	return repo.db.enrichFileLocked(f), nil
}

func (repo fileRepository) QueryGroupFiles(_ context.Context, groupID int) ([]file.File, error) {
	defer repo.db.lock()()

	var files []file.File
	for _, f := range repo.db.files {
		if f.GroupID == groupID {
			files = append(files, repo.db.enrichFileLocked(f))
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID > files[j].ID
		}
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func (repo fileRepository) GetFileByID(_ context.Context, id int) (file.File, error) {
	defer repo.db.lock()()

	f, ok := repo.db.files[id]
	if !ok {
		return file.File{}, file.ErrNotFound
	}
	return repo.db.enrichFileLocked(f), nil
}

func (repo fileRepository) DeleteFile(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.files[id]; !ok {
		return file.ErrNotFound
	}
	delete(repo.db.files, id)
	return nil
}
