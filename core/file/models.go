package file

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 10 << 20 // 10 MiB

// allowedExtensions is the upload allow-list: images, PDFs and documents.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

type File struct {
	ID          int         `json:"file_id" db:"file_id"`
	GroupID     int         `json:"group_id" db:"group_id"`
	UploadedBy  int         `json:"uploaded_by" db:"uploaded_by"`
	FileName    string      `json:"file_name" db:"file_name"`
	FileURL     string      `json:"file_url" db:"file_url"`
	FileType    string      `json:"file_type" db:"file_type"`
	FileSize    int64       `json:"file_size" db:"file_size"`
	Description null.String `json:"description" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC

	// read-time enrichment
	UploadedByName  string `json:"uploaded_by_name,omitempty" db:"uploaded_by_name"`
	UploadedByEmail string `json:"uploaded_by_email,omitempty" db:"uploaded_by_email"`
}

// Ext returns the lower-cased extension of the original filename.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ValidateUpload enforces the extension allow-list and the size ceiling.
func ValidateUpload(filename string, size int64) error {
	if !allowedExtensions[Ext(filename)] {
		return core.NewValidationError(
			errors.New("only images, PDFs, and documents are allowed"),
			core.FieldError{Field: "file", Error: "only images, PDFs, and documents are allowed"},
		)
	}
	if size > MaxFileSize {
		return core.NewValidationError(
			errors.New("file exceeds the 10MB size limit"),
			core.FieldError{Field: "file", Error: "file exceeds the 10MB size limit"},
		)
	}
	return nil
}
