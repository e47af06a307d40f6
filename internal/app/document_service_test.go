package app

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
	"tutordesk/internal/testutil"
)

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "2.1 MB", SizeLabel(2150000))
	assert.Equal(t, "0.0 MB", SizeLabel(0))
	assert.Equal(t, "20.0 MB", SizeLabel(20<<20))
}

func TestDocumentType(t *testing.T) {
	cases := []struct {
		name, mime, want string
	}{
		{"cours.PDF", "", model.DocumentTypePDF},
		{"scan", "application/pdf", model.DocumentTypePDF},
		{"photo.jpg", "image/jpeg", model.DocumentTypeImage},
		{"notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", model.DocumentTypeDoc},
		{"notes.txt", "", model.DocumentTypeDoc},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DocumentType(tc.name, tc.mime), tc.name)
	}
}

func TestStorageKeyKeepsExtension(t *testing.T) {
	at := time.Unix(1700000000, 42)
	key := StorageKey(at, "Fiche Révision.PDF")
	assert.Regexp(t, regexp.MustCompile(`^1700000000000000042-[0-9a-f]{8}\.pdf$`), key)
	assert.NotEqual(t, key, StorageKey(at, "Fiche Révision.PDF"))
}

func TestUploadStoresObjectThenRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := &fakeObjectStore{objects: map[string][]byte{}}
	docs := repository.NewDocumentRepository(db)
	svc := NewDocumentService(store, docs, 64, logger.Nop())

	doc, err := svc.Upload(ctx, "s1", UploadInput{Filename: "dir/photo.png", ContentType: "image/png", Body: strings.NewReader("pixels")})
	require.NoError(t, err)
	assert.Equal(t, "photo.png", doc.Name)
	assert.Equal(t, model.DocumentTypeImage, doc.Type)
	assert.Equal(t, "0.0 MB", doc.Size)
	assert.Equal(t, []byte("pixels"), store.objects[doc.StorageKey])

	_, err = svc.Upload(ctx, "s1", UploadInput{Filename: "big.pdf", Body: strings.NewReader(strings.Repeat("x", 65))})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	_, err = svc.Upload(ctx, "", UploadInput{Filename: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := docs.ListByStudentID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, store.objects, 1)
}
