package http

import (
	"context"
	"time"

	"github.com/carrent/rental-backend/internal/file"
)

var (
	carImageTypes     = []string{"image/jpeg", "image/png", "image/webp"}
	paymentProofTypes = []string{"image/jpeg", "image/png", "application/pdf"}
)

// CarImageUpload resizes car photos to a bounded JPEG.
func CarImageUpload(after func(ctx context.Context, fileID string) error) FileUploadConfig {
	return FileUploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024, // 5MB
		AllowedTypes: carImageTypes,
		ResizeImage:  true,
		AfterUpload:  after,
	}
}

// PaymentProofUpload keeps receipts as sent. GCash screenshots still get a thumbnail.
func PaymentProofUpload(after func(ctx context.Context, fileID string) error) FileUploadConfig {
	return FileUploadConfig{
		MaxSizeBytes: 10 * 1024 * 1024, // 10MB
		AllowedTypes: paymentProofTypes,
		AfterUpload:  after,
	}
}

type FileUploadResponse struct {
	Message      string  `json:"message"`
	FileID       string  `json:"file_id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// FileResponse describes a stored car photo or payment proof without its content.
type FileResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewFileResponse(f *file.File) FileResponse {
	resp := FileResponse{
		ID:          f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		URL:         file.FileURL(f.ID),
		UploadedBy:  f.UserID,
		CreatedAt:   f.CreatedAt,
	}
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		resp.ThumbnailURL = &t
	}
	return resp
}
