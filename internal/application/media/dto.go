package media

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/media"
)

// InitiateUploadRequest asks for a presigned upload URL
type InitiateUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
	Size        int64  `json:"size" binding:"required,min=1"`
	Folder      string `json:"folder" binding:"omitempty,max=100"`
	AltText     string `json:"alt_text" binding:"omitempty,max=500"`
}

// InitiateUploadResponse carries the pending asset and where to PUT the file
type InitiateUploadResponse struct {
	AssetID   uuid.UUID `json:"asset_id"`
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadInput is a file sent through the API
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Folder      string
	AltText     string
}

// UpdateMetadataRequest changes descriptive fields of an asset
type UpdateMetadataRequest struct {
	AltText *string `json:"alt_text" binding:"omitempty,max=500"`
	Folder  *string `json:"folder" binding:"omitempty,max=100"`
	Width   *int    `json:"width" binding:"omitempty,min=1"`
	Height  *int    `json:"height" binding:"omitempty,min=1"`
}

// AssetListFilter holds the list query parameters
type AssetListFilter struct {
	Search      string `form:"search"`
	Folder      string `form:"folder"`
	ContentType string `form:"content_type"`
	Status      string `form:"status" binding:"omitempty,oneof=pending uploaded"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DownloadURLResponse is a presigned GET URL
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AssetResponse represents an asset in API responses
type AssetResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Folder      string    `json:"folder"`
	AltText     string    `json:"alt_text"`
	Width       *int      `json:"width,omitempty"`
	Height      *int      `json:"height,omitempty"`
	Status      string    `json:"status"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToAssetResponse converts a domain asset to a response
func ToAssetResponse(a *media.Asset) AssetResponse {
	return AssetResponse{
		ID:          a.ID,
		FileName:    a.FileName,
		ObjectKey:   a.ObjectKey,
		ContentType: a.ContentType,
		Size:        a.Size,
		Folder:      a.Folder,
		AltText:     a.AltText,
		Width:       a.Width,
		Height:      a.Height,
		Status:      string(a.Status),
		UploadedBy:  a.UploadedBy,
		URL:         a.PublicURL,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
