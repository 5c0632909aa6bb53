package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// Service extracts raw text from uploaded files. Extraction is best-effort:
// malformed or unreadable input produces empty text, never an error, so a
// document with nothing extractable is treated as empty rather than failed.
type Service struct {
	logger  *zap.Logger
	tempDir string
}

func NewService(logger *zap.Logger) *Service {
	tempDir := filepath.Join(os.TempDir(), "docuchat-extract")
	os.MkdirAll(tempDir, 0o755)

	return &Service{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Text returns the extractable text of the file at path. PDF files go
// through pdfcpu content extraction; everything else is read as plain text.
func (s *Service) Text(ctx context.Context, path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return s.pdfText(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read file for extraction",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}

	return string(data)
}

// pdfText extracts page content streams from a PDF and concatenates their
// text. pdfcpu has no direct text API, so content extraction is the closest
// Go-native approximation; anything that fails yields empty text.
func (s *Service) pdfText(ctx context.Context, path string) string {
	conf := model.NewDefaultConfiguration()

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		s.logger.Warn("failed to read PDF",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}

	// Each call gets its own scratch dir: concurrent workers must never
	// read or remove each other's page files.
	outDir, err := os.MkdirTemp(s.tempDir, "pages_")
	if err != nil {
		s.logger.Warn("failed to create extraction dir", zap.Error(err))
		return ""
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		s.logger.Warn("failed to extract PDF content",
			zap.String("path", path),
			zap.Int("page_count", pdfCtx.PageCount),
			zap.Error(err),
		)
		return ""
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var builder strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.Write(content)
	}

	return builder.String()
}
