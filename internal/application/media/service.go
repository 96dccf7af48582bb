package media

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/media"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var assetSortFields = map[string]bool{
	"file_name": true, "size": true, "created_at": true, "updated_at": true,
}

// ServiceConfig holds presign lifetimes and cleanup batch size
type ServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
	CleanupBatchSize  int
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
		CleanupBatchSize:  200,
	}
}

// Service handles the media library
type Service struct {
	repo    media.Repository
	storage ObjectStorage
	config  ServiceConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new media service
func NewService(repo media.Repository, storage ObjectStorage, cfg ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultServiceConfig()
	if cfg.UploadURLExpiry <= 0 {
		cfg.UploadURLExpiry = def.UploadURLExpiry
	}
	if cfg.DownloadURLExpiry <= 0 {
		cfg.DownloadURLExpiry = def.DownloadURLExpiry
	}
	if cfg.CleanupBatchSize <= 0 {
		cfg.CleanupBatchSize = def.CleanupBatchSize
	}
	return &Service{repo: repo, storage: storage, config: cfg, logger: logger, now: time.Now}
}

// InitiateUpload creates a pending asset and returns a presigned upload URL
func (s *Service) InitiateUpload(ctx context.Context, uploadedBy uuid.UUID, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	asset, err := media.NewAsset(req.FileName, req.ContentType, req.Size, req.Folder, uploadedBy)
	if err != nil {
		return nil, err
	}
	if req.AltText != "" {
		if err := asset.UpdateMetadata(req.AltText, asset.Folder, nil, nil); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, asset.ObjectKey, asset.ContentType, asset.Size, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("key", asset.ObjectKey), zap.Error(err))
		// the pending row is useless without a URL
		_ = s.repo.Delete(ctx, asset.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		AssetID:   asset.ID,
		ObjectKey: asset.ObjectKey,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the object exists and marks the asset uploaded
func (s *Service) ConfirmUpload(ctx context.Context, id uuid.UUID) (*AssetResponse, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := s.storage.StatObject(ctx, asset.ObjectKey)
	if err != nil {
		s.logger.Error("Failed to stat object", zap.String("key", asset.ObjectKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if info == nil {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Upload the file first.")
	}
	if err := asset.ConfirmUpload(info.Size, s.storage.PublicURL(asset.ObjectKey)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		return nil, err
	}

	response := ToAssetResponse(asset)
	return &response, nil
}

// Upload streams a file through the API and stores it as an uploaded asset
func (s *Service) Upload(ctx context.Context, uploadedBy uuid.UUID, in UploadInput, body io.Reader) (*AssetResponse, error) {
	asset, err := media.NewAsset(in.FileName, in.ContentType, in.Size, in.Folder, uploadedBy)
	if err != nil {
		return nil, err
	}
	if in.AltText != "" {
		if err := asset.UpdateMetadata(in.AltText, asset.Folder, nil, nil); err != nil {
			return nil, err
		}
	}

	// never read past the declared size
	limited := io.LimitReader(body, asset.Size)
	if err := s.storage.Upload(ctx, asset.ObjectKey, limited, asset.Size, asset.ContentType); err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", asset.ObjectKey), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store file")
	}
	if err := asset.ConfirmUpload(asset.Size, s.storage.PublicURL(asset.ObjectKey)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		if delErr := s.storage.DeleteObject(ctx, asset.ObjectKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned object", zap.String("key", asset.ObjectKey), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Media uploaded",
		zap.String("asset_id", asset.ID.String()),
		zap.String("content_type", asset.ContentType),
		zap.Int64("size", asset.Size))
	response := ToAssetResponse(asset)
	return &response, nil
}

// Get retrieves an asset
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AssetResponse, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToAssetResponse(asset)
	return &response, nil
}

// List returns a page of assets. Pending uploads are hidden unless asked for.
func (s *Service) List(ctx context.Context, filter AssetListFilter) (*shared.Paginated[AssetResponse], error) {
	orderBy := filter.OrderBy
	if !assetSortFields[orderBy] {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   strings.TrimSpace(filter.Search),
		OrderBy:  orderBy,
		OrderDir: orderDir,
	}.Normalize(100)

	status := filter.Status
	if status == "" {
		status = string(media.StatusUploaded)
	}
	domainFilter.Filters["status"] = status
	if filter.Folder != "" {
		domainFilter.Filters["folder"] = strings.Trim(filter.Folder, "/")
	}
	if filter.ContentType != "" {
		domainFilter.Filters["content_type"] = strings.ToLower(filter.ContentType)
	}

	assets, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]AssetResponse, len(assets))
	for i := range assets {
		items[i] = ToAssetResponse(&assets[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// UpdateMetadata changes alt text, folder and dimensions
func (s *Service) UpdateMetadata(ctx context.Context, id uuid.UUID, req UpdateMetadataRequest) (*AssetResponse, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	alt, folder, width, height := asset.AltText, asset.Folder, asset.Width, asset.Height
	if req.AltText != nil {
		alt = *req.AltText
	}
	if req.Folder != nil {
		folder = *req.Folder
	}
	if req.Width != nil {
		width = req.Width
	}
	if req.Height != nil {
		height = req.Height
	}
	if err := asset.UpdateMetadata(alt, folder, width, height); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		return nil, err
	}
	response := ToAssetResponse(asset)
	return &response, nil
}

// DownloadURL returns a presigned GET URL for an uploaded asset
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (*DownloadURLResponse, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Status != media.StatusUploaded {
		return nil, shared.NewDomainError("UPLOAD_PENDING", "Asset has not been uploaded yet")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, asset.ObjectKey, asset.FileName, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign download", zap.String("key", asset.ObjectKey), zap.Error(err))
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Delete removes the stored object, then the asset row
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, asset.ObjectKey); err != nil {
		s.logger.Error("Failed to delete object", zap.String("key", asset.ObjectKey), zap.Error(err))
		return shared.NewDomainError("STORAGE_DELETE_FAILED", "Failed to delete file from storage")
	}
	return s.repo.Delete(ctx, id)
}

// PurgePendingUploads deletes pending assets older than media.PendingTTL
// together with any partially uploaded object. It returns how many were removed.
func (s *Service) PurgePendingUploads(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-media.PendingTTL)
	stale, err := s.repo.FindStalePending(ctx, cutoff, s.config.CleanupBatchSize)
	if err != nil {
		return 0, err
	}

	purged := 0
	for i := range stale {
		asset := &stale[i]
		if err := s.storage.DeleteObject(ctx, asset.ObjectKey); err != nil {
			s.logger.Warn("Failed to delete stale object", zap.String("key", asset.ObjectKey), zap.Error(err))
			continue
		}
		if err := s.repo.Delete(ctx, asset.ID); err != nil {
			s.logger.Warn("Failed to delete stale asset", zap.String("asset_id", asset.ID.String()), zap.Error(err))
			continue
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("Purged pending uploads", zap.Int("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}
