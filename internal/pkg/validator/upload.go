package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// Validator validates document uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateUploadDocument(req *entity.UploadDocumentRequest) error {
	if req.Title == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	if req.File == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	return v.ValidateFile(req.File)
}

// ValidateFile validates a single uploaded file
func (v *Validator) ValidateFile(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %s (allowed: txt, md, pdf)", entity.ErrInvalidExtension, ext)
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		"..", "_",
	)
	return replacer.Replace(filename)
}
