package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/media"
	domainmedia "github.com/shopfront/backend/internal/domain/media"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// MediaHandler serves the media library
type MediaHandler struct {
	BaseHandler
	mediaService *media.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *media.Service) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// List godoc
// @Summary      List media
// @Description  Pending uploads are hidden unless status=pending is requested
// @Tags         media
// @Produce      json
// @Param        search       query string false "File name or alt text"
// @Param        folder       query string false "Folder"
// @Param        content_type query string false "Content type prefix, e.g. image/"
// @Param        status       query string false "pending or uploaded"
// @Success      200 {object} dto.Response{data=[]media.AssetResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/media [get]
func (h *MediaHandler) List(c *gin.Context) {
	var filter media.AssetListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.mediaService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get a media asset
// @Tags         media
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=media.AssetResponse}
// @Security     BearerAuth
// @Router       /admin/media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "asset")
	if !ok {
		return
	}
	asset, err := h.mediaService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// InitiateUpload godoc
// @Summary      Request a presigned upload URL
// @Description  PUT the file to upload_url, then call confirm
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body media.InitiateUploadRequest true "File"
// @Success      201 {object} dto.Response{data=media.InitiateUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/media/upload-url [post]
func (h *MediaHandler) InitiateUpload(c *gin.Context) {
	uploaderID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req media.InitiateUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.mediaService.InitiateUpload(c.Request.Context(), uploaderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ConfirmUpload godoc
// @Summary      Confirm a presigned upload
// @Tags         media
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=media.AssetResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/media/{id}/confirm [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "asset")
	if !ok {
		return
	}
	asset, err := h.mediaService.ConfirmUpload(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// Upload godoc
// @Summary      Upload a file through the API
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData file   true  "File"
// @Param        folder   formData string false "Folder"
// @Param        alt_text formData string false "Alt text"
// @Success      201 {object} dto.Response{data=media.AssetResponse}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	uploaderID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file field is required")
		return
	}
	if header.Size > domainmedia.MaxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "File exceeds the maximum upload size")
		return
	}
	contentType := header.Header.Get("Content-Type")
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, 0); err != nil {
			h.BadRequest(c, "Failed to read uploaded file")
			return
		}
	}
	if !domainmedia.IsAllowedContentType(contentType) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMediaType, "File type is not allowed")
		return
	}

	asset, err := h.mediaService.Upload(c.Request.Context(), uploaderID, media.UploadInput{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Folder:      c.PostForm("folder"),
		AltText:     c.PostForm("alt_text"),
	}, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, asset)
}

// UpdateMetadata godoc
// @Summary      Update asset metadata
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Asset ID"
// @Param        request body media.UpdateMetadataRequest true "Changes"
// @Success      200 {object} dto.Response{data=media.AssetResponse}
// @Security     BearerAuth
// @Router       /admin/media/{id} [put]
func (h *MediaHandler) UpdateMetadata(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "asset")
	if !ok {
		return
	}
	var req media.UpdateMetadataRequest
	if !h.bindJSON(c, &req) {
		return
	}
	asset, err := h.mediaService.UpdateMetadata(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// DownloadURL godoc
// @Summary      Presigned download URL
// @Tags         media
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=media.DownloadURLResponse}
// @Security     BearerAuth
// @Router       /admin/media/{id}/download-url [get]
func (h *MediaHandler) DownloadURL(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "asset")
	if !ok {
		return
	}
	result, err := h.mediaService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete a media asset and its object
// @Tags         media
// @Param        id path string true "Asset ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "asset")
	if !ok {
		return
	}
	if err := h.mediaService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
