package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Status is the upload state of an asset
type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
)

const (
	// MaxFileSize is the largest accepted upload
	MaxFileSize int64 = 50 << 20
	// PendingTTL is how long an unconfirmed upload survives
	PendingTTL = 24 * time.Hour
)

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"application/pdf": ".pdf",
}

// IsAllowedContentType reports whether uploads of ct are accepted
func IsAllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[normalizeContentType(ct)]
	return ok
}

// Asset is a file in the media library
type Asset struct {
	shared.BaseAggregateRoot
	FileName    string    `gorm:"type:varchar(255);not null"`
	ObjectKey   string    `gorm:"type:varchar(500);not null;uniqueIndex"`
	ContentType string    `gorm:"type:varchar(100);not null;index"`
	Size        int64     `gorm:"not null;default:0"`
	Folder      string    `gorm:"type:varchar(100);not null;default:'';index"`
	AltText     string    `gorm:"type:varchar(500)"`
	Width       *int      `gorm:""`
	Height      *int      `gorm:""`
	Status      Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	UploadedBy  uuid.UUID `gorm:"type:uuid"`
	PublicURL   string    `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (Asset) TableName() string {
	return "media_assets"
}

// NewAsset creates a pending asset with a generated object key
func NewAsset(fileName, contentType string, size int64, folder string, uploadedBy uuid.UUID) (*Asset, error) {
	contentType = normalizeContentType(contentType)
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", fmt.Sprintf("Content type '%s' is not allowed", contentType))
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size must be positive")
	}
	if size > MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 50MB")
	}
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name is required")
	}
	folder, err := normalizeFolder(folder)
	if err != nil {
		return nil, err
	}

	a := &Asset{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FileName:          fileName,
		ContentType:       contentType,
		Size:              size,
		Folder:            folder,
		Status:            StatusPending,
		UploadedBy:        uploadedBy,
	}
	a.ObjectKey = buildObjectKey(folder, a.ID, fileName, ext, a.CreatedAt)
	return a, nil
}

// ConfirmUpload marks the asset as stored. size is what storage reports.
func (a *Asset) ConfirmUpload(size int64, publicURL string) error {
	if a.Status == StatusUploaded {
		return shared.NewDomainError("ALREADY_UPLOADED", "Upload was already confirmed")
	}
	if size > MaxFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 50MB")
	}
	if size > 0 {
		a.Size = size
	}
	a.Status = StatusUploaded
	a.PublicURL = publicURL
	a.touch()
	return nil
}

// UpdateMetadata changes alt text, folder and dimensions
func (a *Asset) UpdateMetadata(altText, folder string, width, height *int) error {
	if len(altText) > 500 {
		return shared.NewDomainError("INVALID_ALT_TEXT", "Alt text cannot exceed 500 characters")
	}
	f, err := normalizeFolder(folder)
	if err != nil {
		return err
	}
	if (width != nil && *width <= 0) || (height != nil && *height <= 0) {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Width and height must be positive")
	}
	a.AltText = strings.TrimSpace(altText)
	a.Folder = f
	a.Width = width
	a.Height = height
	a.touch()
	return nil
}

// IsImage reports whether the asset is an image
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// IsStale reports whether a pending upload has outlived PendingTTL
func (a *Asset) IsStale(now time.Time) bool {
	return a.Status == StatusPending && now.Sub(a.CreatedAt) > PendingTTL
}

func (a *Asset) touch() {
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

func normalizeFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "", nil
	}
	for _, seg := range strings.Split(folder, "/") {
		if !shared.IsValidSlug(seg) {
			return "", shared.NewDomainError("INVALID_FOLDER", "Folder segments may only contain lowercase letters, numbers and hyphens")
		}
	}
	if len(folder) > 100 {
		return "", shared.NewDomainError("INVALID_FOLDER", "Folder cannot exceed 100 characters")
	}
	return folder, nil
}

func buildObjectKey(folder string, id uuid.UUID, fileName, ext string, at time.Time) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	slug := shared.Slugify(base)
	if slug == "" {
		slug = "file"
	}
	prefix := "media"
	if folder != "" {
		prefix += "/" + folder
	}
	return fmt.Sprintf("%s/%s/%s-%s%s", prefix, at.UTC().Format("2006/01"), id.String()[:8], slug, ext)
}
