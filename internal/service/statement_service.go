package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// StatementService turns uploaded statement files into plain text for the
// analysis pipeline. PDFs go through go-fitz; .txt files are read as-is.
type StatementService struct {
	logger *zap.Logger
}

func NewStatementService(logger *zap.Logger) *StatementService {
	return &StatementService{logger: logger}
}

// ExtractText extracts statement text from a file on disk.
// Supported formats: .pdf, .txt
func (s *StatementService) ExtractText(ctx context.Context, filePath string) (string, error) {
	var text string
	var err error

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		text, err = s.extractTextFromPDF(filePath)
	case ".txt":
		var data []byte
		data, err = os.ReadFile(filePath)
		text = string(data)
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: pdf, txt)", ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(sanitizeUTF8(text))
	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", filepath.Base(filePath))
	}

	s.logger.Info("Statement text extracted",
		zap.String("file", filepath.Base(filePath)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

// ExtractTextFromReader extracts text from an uploaded statement stream.
func (s *StatementService) ExtractTextFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error) {
	tmpFile, err := os.CreateTemp("", "statement-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".txt"
	}
	newPath := tmpFile.Name() + ext
	if err := os.Rename(tmpFile.Name(), newPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	defer os.Remove(newPath)

	return s.ExtractText(ctx, newPath)
}

func (s *StatementService) extractTextFromPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text found in PDF")
	}

	return text, nil
}
