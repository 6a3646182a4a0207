package file

import (
	"net/http"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "file not found")
	ErrThumbnailUnavailable = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrFileTooLarge         = apperror.New(http.StatusBadRequest, "file is too large")
	ErrUnsupportedType      = apperror.New(http.StatusBadRequest, "file type is not allowed")
	ErrNotAnImage           = apperror.New(http.StatusBadRequest, "file is not a valid image")
)

// File represents a file object in the system
type File struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"-"` // Internal path
	ThumbnailPath *string   `json:"-"` // Internal path
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}

// URLPtr returns FileURL for a non-nil id, nil otherwise.
func URLPtr(id *string) *string {
	if id == nil {
		return nil
	}
	u := FileURL(*id)
	return &u
}
