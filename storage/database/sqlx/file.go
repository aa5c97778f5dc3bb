package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/file"
)

const fileColumns = `f.file_id, f.group_id, f.uploaded_by, f.file_name, f.file_url,
	f.file_type, f.file_size, f.description, f.created_at`

type fileRepository struct {
	db *sqlx.DB
}

var _ file.Repository = (*fileRepository)(nil)

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

func (repo fileRepository) CreateFile(ctx context.Context, f file.File) (file.File, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO group_files (group_id, uploaded_by, file_name, file_url, file_type, file_size, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING file_id`,
		f.GroupID, f.UploadedBy, f.FileName, f.FileURL, f.FileType, f.FileSize, f.Description, f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		return file.File{}, errors.Wrap(err, "creating file record")
	}
	return f, nil
}

func (repo fileRepository) QueryGroupFiles(ctx context.Context, groupID int) ([]file.File, error) {
	var files []file.File
	err := repo.db.SelectContext(ctx, &files,
		`SELECT `+fileColumns+`, u.name AS uploaded_by_name, u.email AS uploaded_by_email
		 FROM group_files f
		 JOIN users u ON f.uploaded_by = u.user_id
		 WHERE f.group_id = $1
		 ORDER BY f.created_at DESC`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group files")
	}
	return files, nil
}

func (repo fileRepository) GetFileByID(ctx context.Context, id int) (file.File, error) {
	var f file.File
	err := repo.db.GetContext(ctx, &f,
		`SELECT `+fileColumns+`, u.name AS uploaded_by_name, u.email AS uploaded_by_email
		 FROM group_files f
		 JOIN users u ON f.uploaded_by = u.user_id
		 WHERE f.file_id = $1`, id)
	if err != nil {
		return file.File{}, trapNoRows(err, file.ErrNotFound, "finding file by ID")
	}
	return f, nil
}

func (repo fileRepository) DeleteFile(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM group_files WHERE file_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting file record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return file.ErrNotFound
	}
	return nil
}
