package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrent/rental-backend/internal/pkg/storage"
)

type memRepo struct {
	mu    sync.Mutex
	files map[string]*File
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{files: map[string]*File{}}
}

func (r *memRepo) Create(_ context.Context, f *File) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

// fileHeader builds a real multipart.FileHeader the way gin would hand it over.
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T) (Service, *memRepo) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := newMemRepo()
	log, _ := test.NewNullLogger()
	return NewService(repo, store, log), repo
}

func TestUploadImageIsResizedWithThumbnail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "car.png", "image/png", pngBytes(t, 1600, 800)),
		UserID:       "u1",
		MaxSizeBytes: 5 << 20,
		AllowedTypes: []string{"image/jpeg", "image/png"},
		ResizeImage:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, "car.jpg", f.Filename)
	require.NotNil(t, f.ThumbnailPath)

	rc, got, err := svc.Download(ctx, f.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, f.ID, got.ID)
	img, _, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())

	thumb, _, err := svc.DownloadThumbnail(ctx, f.ID)
	require.NoError(t, err)
	thumb.Close()
}

func TestUploadLimits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "big.png", "image/png", bytes.Repeat([]byte{1}, 2048)),
		MaxSizeBytes: 1024,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "doc.pdf", "application/pdf", []byte("%PDF")),
		AllowedTypes: []string{"image/png"},
	})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader:  fileHeader(t, "fake.png", "image/png", []byte("not really")),
		ResizeImage: true,
	})
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestUploadPlainFileHasNoThumbnail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader: fileHeader(t, "receipt.txt", "text/plain", []byte("paid")),
	})
	require.NoError(t, err)
	assert.Nil(t, f.ThumbnailPath)

	_, _, err = svc.DownloadThumbnail(ctx, f.ID)
	assert.ErrorIs(t, err, ErrThumbnailUnavailable)

	rc, _, err := svc.Download(ctx, f.ID)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "paid", string(b))

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, err = svc.Get(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadCleansUpWhenRepositoryFails(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	repo.err = assert.AnError

	_, err := svc.Upload(ctx, UploadInput{
		FileHeader: fileHeader(t, "receipt.txt", "text/plain", []byte("paid")),
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, repo.files)
}
