package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/pkg/pdfextract"
	"tutordesk/internal/repository"
)

const bytesPerMiB = 1024 * 1024

// ObjectStore is the document bucket.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
}

type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type DocumentService struct {
	store    ObjectStore
	docs     *repository.DocumentRepository
	maxBytes int64
	now      func() time.Time
	log      *logger.Logger
}

func NewDocumentService(store ObjectStore, docs *repository.DocumentRepository, maxBytes int64, log *logger.Logger) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &DocumentService{
		store:    store,
		docs:     docs,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log.With("service", "DocumentService"),
	}
}

// Upload stores the file and only then inserts the row pointing at it, so a
// failed upload never leaves a document with a dead URL.
func (s *DocumentService) Upload(ctx context.Context, studentID string, input UploadInput) (*model.Document, error) {
	name := strings.TrimSpace(filepath.Base(input.Filename))
	if studentID == "" || name == "" || name == "." || input.Body == nil {
		return nil, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	docType := DocumentType(name, input.ContentType)
	key := StorageKey(s.now(), name)
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), input.ContentType); err != nil {
		s.log.Error("object upload failed", "student_id", studentID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	doc := &model.Document{
		StudentID:  studentID,
		Name:       name,
		Type:       docType,
		Size:       SizeLabel(int64(len(data))),
		FileURL:    s.store.PublicURL(key),
		StorageKey: key,
	}
	if docType == model.DocumentTypePDF {
		if pages, err := pdfextract.PageCount(data); err == nil {
			doc.Pages = pages
		} else {
			s.log.Debug("pdf page count unavailable", "key", key, "error", err)
		}
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		s.log.Error("document insert failed after upload", "student_id", studentID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return doc, nil
}

// DocumentType classifies an upload as pdf, image or doc.
func DocumentType(filename, contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if strings.EqualFold(filepath.Ext(filename), ".pdf") || mime == "application/pdf" {
		return model.DocumentTypePDF
	}
	if strings.HasPrefix(mime, "image/") {
		return model.DocumentTypeImage
	}
	return model.DocumentTypeDoc
}

// SizeLabel renders a byte count in mebibytes with one decimal, e.g. "2.1 MB".
func SizeLabel(size int64) string {
	return fmt.Sprintf("%.1f MB", float64(size)/bytesPerMiB)
}

// StorageKey derives the object name from the upload time and the original
// extension. The random suffix narrows, but does not remove, the chance of two
// uploads in the same instant colliding.
func StorageKey(at time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", at.UnixNano(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}
